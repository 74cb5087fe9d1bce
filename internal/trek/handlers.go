package trek

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"trekbooking/internal/api"
	"trekbooking/internal/audit"
	"trekbooking/internal/payment"
	"trekbooking/pkg/db"
)

type Handlers struct {
	DB              *pgxpool.Pool
	Catalog         *Catalog
	DefaultCurrency string
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Active(r.Context())
	if err != nil {
		log.Printf("[trek] action=list err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "trek not found")
		return
	}
	t, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "trek not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"trek": t})
}

type PutRequest struct {
	Name          string          `json:"name"`
	Region        string          `json:"region"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StartDate     string          `json:"startDate"`
	DurationDays  int             `json:"durationDays"`
	PaymentConfig json.RawMessage `json:"paymentConfig"`
	CustomFields  []CustomField   `json:"customFields"`
	Active        *bool           `json:"active"`
}

// ToTrek validates the request and builds the trek stored under slug.
func (req PutRequest) ToTrek(slug, defaultCurrency string) (Trek, error) {
	t := Trek{
		Slug:         strings.ToLower(strings.TrimSpace(slug)),
		Name:         strings.TrimSpace(req.Name),
		Region:       strings.TrimSpace(req.Region),
		Price:        req.Price,
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		DurationDays: req.DurationDays,
		CustomFields: req.CustomFields,
		Active:       true,
	}
	if t.Slug == "" || t.Name == "" {
		return Trek{}, payment.ValidationError{Code: "VALIDATION_FAILED", Message: "slug and name are required"}
	}
	if !t.Price.GreaterThan(decimal.Zero) {
		return Trek{}, payment.ValidationError{Code: "VALIDATION_FAILED", Message: "price must be > 0"}
	}
	if t.Currency == "" {
		t.Currency = defaultCurrency
	}
	if t.DurationDays <= 0 {
		t.DurationDays = 1
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		return Trek{}, payment.ValidationError{Code: "VALIDATION_FAILED", Message: "startDate must be YYYY-MM-DD"}
	}
	t.StartDate = start
	if req.Active != nil {
		t.Active = *req.Active
	}
	if t.Payment, err = ParseAndValidate(req.PaymentConfig); err != nil {
		return Trek{}, err
	}
	if err := ValidateCustomFields(t.CustomFields); err != nil {
		return Trek{}, err
	}
	return t, nil
}

func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	t, err := req.ToTrek(chi.URLParam(r, "slug"), h.DefaultCurrency)
	if err != nil {
		var verr payment.ValidationError
		if errors.As(err, &verr) {
			api.WriteError(w, http.StatusBadRequest, verr.Code, verr.Message)
			return
		}
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	var saved *Trek
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		saved, err = Upsert(r.Context(), tx, t)
		if err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, id.UserID.String(), nil, audit.ActionTrekUpserted, "admin", map[string]any{
			"trekId": saved.ID,
			"slug":   saved.Slug,
			"price":  saved.Price.StringFixed(2),
		})
	})
	if err != nil {
		log.Printf("[trek] action=upsert slug=%s err=%v", t.Slug, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.Catalog.Invalidate(r.Context(), saved.ID)
	api.WriteJSON(w, http.StatusOK, map[string]any{"trek": saved})
}
