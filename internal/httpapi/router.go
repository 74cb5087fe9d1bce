package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/cors"

	"trekbooking/internal/api"
	"trekbooking/internal/booking"
	"trekbooking/internal/events"
	"trekbooking/internal/payment"
	"trekbooking/internal/trek"
	"trekbooking/internal/webhook"
	"trekbooking/pkg/authtoken"
	"trekbooking/pkg/cache"
	"trekbooking/pkg/config"
	"trekbooking/pkg/notify"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool

	// Optional: nil disables the cache / APM; a nil Mailer only logs.
	Cache    *cache.Cache
	NewRelic *newrelic.Application
	Mailer   notify.Mailer
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !deps.Cfg.IsProd() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(api.Transactions(deps.NewRelic))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mailer := deps.Mailer
	if mailer == nil {
		mailer = notify.LogMailer{}
	}
	notifier := &notify.Notifier{Mailer: mailer}

	verifier := authtoken.Verifier{Secret: deps.Cfg.Auth.JWTSecret, Issuer: deps.Cfg.Auth.Issuer}
	catalog := &trek.Catalog{Repo: trek.NewRepository(deps.DB), Cache: deps.Cache, TTL: deps.Cfg.TrekCacheTTL}
	trekHandlers := trek.Handlers{DB: deps.DB, Catalog: catalog, DefaultCurrency: deps.Cfg.Payments.DefaultCurrency}
	bookingHandlers := booking.Handlers{
		DB:             deps.DB,
		Repo:           booking.NewRepository(deps.DB),
		Payments:       payment.NewRepository(deps.DB),
		Events:         events.NewRepository(deps.DB),
		Treks:          catalog,
		Notifier:       notifier,
		BalanceDueDays: deps.Cfg.Payments.BalanceDueDays,
		PublicBaseURL:  deps.Cfg.PublicBaseURL,
		SupportEmail:   deps.Cfg.SupportEmail,
	}
	webhookHandler := webhook.Handler{
		Cfg:      deps.Cfg,
		DB:       deps.DB,
		Notifier: notifier,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// Public catalog
		r.Get("/treks", trekHandlers.List)
		r.Get("/treks/{id}", trekHandlers.Get)

		// Traveller APIs (bearer token)
		r.Group(func(r chi.Router) {
			r.Use(api.UserAuth(verifier))

			r.Get("/bookings/user/mybookings", bookingHandlers.ListMine)
			r.Get("/bookings/user/summary", bookingHandlers.Summary)
			r.Post("/bookings", bookingHandlers.Create)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Put("/bookings/{id}/participants", bookingHandlers.UpdateParticipants)
			r.Post("/bookings/{id}/cancel", bookingHandlers.Cancel)
			r.Get("/bookings/{id}/invoice", bookingHandlers.Invoice)
		})

		// Admin APIs
		r.Route("/admin", func(r chi.Router) {
			r.Use(api.UserAuth(verifier))
			r.Use(api.RequireAdmin)

			r.Put("/treks/{slug}", trekHandlers.Put)

			r.Get("/bookings", bookingHandlers.AdminList)
			r.Get("/bookings/export", bookingHandlers.AdminExport)
			r.Get("/bookings/{id}", bookingHandlers.AdminGet)
			r.Patch("/bookings/{id}", bookingHandlers.AdminPatch)
			r.Get("/bookings/{id}/events", bookingHandlers.AdminEvents)
		})

		// Webhooks
		r.Post("/webhooks/payments/{topic}", webhookHandler.ServeHTTP)
	})

	return r
}
