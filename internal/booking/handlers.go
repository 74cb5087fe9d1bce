package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"trekbooking/internal/api"
	"trekbooking/internal/audit"
	"trekbooking/internal/events"
	"trekbooking/internal/invoice"
	"trekbooking/internal/payment"
	"trekbooking/internal/trek"
	"trekbooking/pkg/db"
	"trekbooking/pkg/notify"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Repo     *Repository
	Payments *payment.Repository
	Events   *events.Repository
	Treks    *trek.Catalog
	Notifier *notify.Notifier

	BalanceDueDays int
	PublicBaseURL  string
	SupportEmail   string
}

// Item is how a booking travels over the API: the record plus its rendered state.
type Item struct {
	Booking Booking `json:"booking"`
	View    View    `json:"view"`
}

func itemOf(b Booking) Item {
	if b.Participants == nil {
		b.Participants = []Participant{}
	}
	return Item{Booking: b, View: ViewOf(b)}
}

func itemsOf(list []Booking) []Item {
	out := make([]Item, 0, len(list))
	for _, b := range list {
		out = append(out, itemOf(b))
	}
	return out
}

func parseStatusFilter(r *http.Request) (*Status, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	s, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (h Handlers) notifyStatus(b Booking) {
	h.Notifier.BookingStatusChanged(StatusUpdate(b, h.PublicBaseURL))
}

func (h Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	status, err := parseStatusFilter(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter")
		return
	}

	list, err := h.Repo.ListByUser(r.Context(), id.UserID.String(), status)
	if err != nil {
		writeLifecycleError(w, "list_mine", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": itemsOf(list)})
}

// Summary powers the dashboard: per-status counts plus the bookings still waiting on the traveller.
func (h Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	counts, err := h.Repo.StatusCounts(r.Context(), id.UserID.String())
	if err != nil {
		writeLifecycleError(w, "summary", err)
		return
	}
	list, err := h.Repo.ListByUser(r.Context(), id.UserID.String(), nil)
	if err != nil {
		writeLifecycleError(w, "summary", err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	actionable := []Item{}
	for _, b := range list {
		if ResumeAction(b) != nil {
			actionable = append(actionable, itemOf(b))
		}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"total":      total,
		"counts":     counts,
		"actionable": actionable,
	})
}

// load returns the booking visible to the caller: owners see their own, admins see any.
func (h Handlers) load(w http.ResponseWriter, r *http.Request) (*Booking, bool) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return nil, false
	}
	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return nil, false
	}

	var (
		b   *Booking
		err error
	)
	if id.IsAdmin() {
		b, err = h.Repo.GetByID(r.Context(), bookingID)
	} else {
		b, err = h.Repo.GetForUser(r.Context(), bookingID, id.UserID.String())
	}
	if err != nil {
		writeLifecycleError(w, "get", err)
		return nil, false
	}
	return b, true
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	pays, err := h.Payments.ListByBooking(r.Context(), b.ID)
	if err != nil {
		writeLifecycleError(w, "get_payments", err)
		return
	}
	item := itemOf(*b)
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":  item.Booking,
		"view":     item.View,
		"payments": pays,
	})
}

type CreateRequest struct {
	TrekID           string        `json:"trekId"`
	ParticipantCount int           `json:"participantCount"`
	PaymentMode      string        `json:"paymentMode"`
	Participants     []Participant `json:"participants,omitempty"`
}

func fieldSpecs(t trek.Trek) []FieldSpec {
	out := make([]FieldSpec, 0, len(t.CustomFields))
	for _, f := range t.CustomFields {
		out = append(out, FieldSpec{Key: f.Key, Label: f.Label, Required: f.Required})
	}
	return out
}

// NewBooking prices a fresh booking for t. The result is pending_payment and unpaid.
func NewBooking(t trek.Trek, req CreateRequest, balanceDueDays int, now time.Time) (Booking, error) {
	mode, err := ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return Booking{}, err
	}
	if !t.Active {
		return Booking{}, ValidationError{Code: "VALIDATION_FAILED", Message: "trek is not open for booking"}
	}
	q, err := t.Quote(req.ParticipantCount, mode == PaymentModePartial, balanceDueDays, now)
	if err != nil {
		return Booking{}, err
	}

	b := Booking{
		TrekID:           t.ID,
		TrekName:         t.Name,
		TrekStartDate:    t.StartDate,
		ParticipantCount: req.ParticipantCount,
		TotalPrice:       q.Total,
		AmountPaid:       decimal.Zero,
		Currency:         t.Currency,
		Status:           StatusPendingPayment,
		PaymentMode:      mode,
		PaymentStatus:    PaymentStatusPending,
	}
	if q.Plan != nil {
		b.PartialPaymentDetails = &PartialPaymentDetails{
			InitialAmount:       q.Plan.Initial,
			RemainingAmount:     q.Plan.Remaining,
			FinalPaymentDueDate: q.DueDate,
		}
	}
	if len(req.Participants) > 0 {
		list, err := NormalizeParticipants(req.Participants, req.ParticipantCount, fieldSpecs(t))
		if err != nil {
			return Booking{}, err
		}
		b.Participants = list
	}
	return b, b.Validate()
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if _, err := uuid.Parse(req.TrekID); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "trekId is required")
		return
	}

	t, err := h.Treks.Get(r.Context(), req.TrekID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "trek not found")
			return
		}
		writeLifecycleError(w, "create_trek_lookup", err)
		return
	}

	b, err := NewBooking(*t, req, h.BalanceDueDays, time.Now())
	if err != nil {
		writeLifecycleError(w, "create", err)
		return
	}
	b.UserID = id.UserID.String()
	b.UserEmail = id.Email

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := Insert(r.Context(), tx, &b); err != nil {
			return err
		}
		bookingID := b.ID
		meta := map[string]any{
			"reference":   b.Reference,
			"trekId":      b.TrekID,
			"paymentMode": b.PaymentMode,
			"totalPrice":  b.TotalPrice.StringFixed(2),
		}
		if err := audit.Insert(r.Context(), tx, b.UserID, &bookingID, audit.ActionBookingCreated, "user", meta); err != nil {
			return err
		}
		return events.Insert(r.Context(), tx, b.ID, events.TypeBookingCreated, "Booking created", "user", b.CreatedAt, meta)
	})
	if err != nil {
		writeLifecycleError(w, "create", err)
		return
	}

	log.Printf("[booking] action=create id=%s ref=%s user=%s mode=%s", b.ID, b.Reference, b.UserID, b.PaymentMode)
	h.notifyStatus(b)
	api.WriteJSON(w, http.StatusCreated, itemOf(b))
}

type ParticipantsRequest struct {
	Participants []Participant `json:"participants"`
}

func (h Handlers) UpdateParticipants(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	var req ParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var updated *Booking
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		b, err := GetForUpdate(r.Context(), tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != id.UserID.String() && !id.IsAdmin() {
			return pgx.ErrNoRows
		}
		if !b.ParticipantsEditable() {
			api.WriteError(w, http.StatusConflict, "PARTICIPANTS_LOCKED", fmt.Sprintf("participants cannot change once the booking is %s", b.Status))
			return pgx.ErrTxCommitRollback
		}

		t, err := h.Treks.Get(r.Context(), b.TrekID)
		if err != nil {
			return err
		}
		list, err := NormalizeParticipants(req.Participants, b.ParticipantCount, fieldSpecs(*t))
		if err != nil {
			return err
		}
		if err := ReplaceParticipants(r.Context(), tx, b.ID, list); err != nil {
			return err
		}
		b.Participants = list

		now := time.Now()
		actor := "user"
		if b.UserID != id.UserID.String() {
			actor = "admin"
		}
		meta := map[string]any{"count": len(list)}
		if err := audit.Insert(r.Context(), tx, id.UserID.String(), &b.ID, audit.ActionParticipantsUpdated, actor, meta); err != nil {
			return err
		}
		if err := events.Insert(r.Context(), tx, b.ID, events.TypeParticipantsUpdated, "Participant details updated", actor, now, meta); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) {
			return
		}
		writeLifecycleError(w, "update_participants", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, itemOf(*updated))
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	var cancelled Booking
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		b, err := GetForUpdate(r.Context(), tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != id.UserID.String() && !id.IsAdmin() {
			return pgx.ErrNoRows
		}
		next, tr, err := Cancel(*b)
		if err != nil {
			return err
		}
		if next.UpdatedAt, err = UpdateLifecycle(r.Context(), tx, next); err != nil {
			return err
		}

		actor := "user"
		if b.UserID != id.UserID.String() {
			actor = "admin"
		}
		meta := map[string]any{"from": tr.From, "to": tr.To}
		if err := audit.Insert(r.Context(), tx, id.UserID.String(), &next.ID, audit.ActionBookingCancelled, actor, meta); err != nil {
			return err
		}
		if err := events.Insert(r.Context(), tx, next.ID, events.TypeStatusChanged, "Booking cancelled", actor, next.UpdatedAt, meta); err != nil {
			return err
		}
		cancelled = next
		return nil
	})
	if err != nil {
		writeLifecycleError(w, "cancel", err)
		return
	}

	log.Printf("[booking] action=cancel id=%s ref=%s", cancelled.ID, cancelled.Reference)
	h.notifyStatus(cancelled)
	api.WriteJSON(w, http.StatusOK, itemOf(cancelled))
}

// InvoiceData maps a booking onto the printed invoice.
func InvoiceData(b Booking, supportEmail string, now time.Time) invoice.Data {
	d := invoice.Data{
		Reference:     b.Reference,
		IssuedAt:      now,
		CustomerEmail: b.UserEmail,
		TrekName:      b.TrekName,
		TrekStartDate: b.TrekStartDate,
		Status:        Classify(string(b.Status)).Label,
		Currency:      b.Currency,
		TotalPrice:    b.TotalPrice,
		AmountPaid:    b.AmountPaid,
		SupportEmail:  supportEmail,
	}
	for _, p := range b.Participants {
		d.Participants = append(d.Participants, invoice.Participant{Name: p.Name, Age: p.Age, Gender: p.Gender})
	}
	if pd := b.PartialPaymentDetails; pd != nil {
		d.Partial = &invoice.Partial{
			Initial:   pd.InitialAmount,
			Remaining: pd.RemainingAmount,
			DueDate:   pd.FinalPaymentDueDate,
		}
	}
	return d
}

func (h Handlers) Invoice(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	if b.Status == StatusCancelled {
		api.WriteError(w, http.StatusConflict, "BOOKING_CANCELLED", "cancelled bookings have no invoice")
		return
	}

	pdf, filename, err := invoice.Build(InvoiceData(*b, h.SupportEmail, time.Now()))
	if err != nil {
		writeLifecycleError(w, "invoice", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
