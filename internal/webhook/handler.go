package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"trekbooking/internal/api"
	"trekbooking/internal/audit"
	"trekbooking/internal/booking"
	"trekbooking/internal/events"
	"trekbooking/internal/payment"
	"trekbooking/pkg/config"
	"trekbooking/pkg/db"
	"trekbooking/pkg/notify"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Notifier *notify.Notifier
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Prefer the gateway's topic header; fall back to the route param.
	topic := strings.TrimSpace(r.Header.Get("X-Payment-Topic"))
	if topic == "" {
		topic = chi.URLParam(r, "topic")
	}
	topic = NormalizeTopic(topic)

	signature := strings.TrimSpace(r.Header.Get("X-Payment-Signature"))
	eventID := strings.TrimSpace(r.Header.Get("X-Payment-Event-Id"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if !VerifySignature(body, signature, h.Cfg.Payments.WebhookSecret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature")
		return
	}

	payloadHash := sha256Hex(body)
	if eventID == "" {
		// Fallback idempotency key when the event-id header isn't present.
		eventID = payloadHash
	}

	var changed *booking.Booking

	// Idempotency gate + lifecycle change in one tx.
	if err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := insertWebhookEvent(r.Context(), tx, topic, eventID, payloadHash); err != nil {
			if isUniqueViolation(err) {
				if !h.Cfg.IsProd() {
					log.Printf("[webhook] already processed topic=%s event_id=%s", topic, eventID)
				}
				return nil
			}
			return err
		}

		var err error
		switch topic {
		case TopicPaymentSucceeded:
			changed, err = h.handlePaymentSucceeded(r.Context(), tx, body)
		case TopicPaymentRefunded:
			err = h.handlePaymentRefunded(r.Context(), tx, body)
		default:
			// Unknown topic: accept (no retries).
		}
		return err
	}); err != nil {
		changed = nil
		log.Printf("[webhook] tx error topic=%s event_id=%s err=%v", topic, eventID, err)
	}

	if changed != nil {
		h.Notifier.BookingStatusChanged(booking.StatusUpdate(*changed, h.Cfg.PublicBaseURL))
	}

	// The gateway expects a 200 quickly.
	w.WriteHeader(http.StatusOK)
}

// handlePaymentSucceeded applies a confirmed payment. It returns the booking when its status
// moved. Payloads that cannot apply are recorded and skipped so the gateway stops retrying.
func (h Handler) handlePaymentSucceeded(ctx context.Context, tx pgx.Tx, body []byte) (*booking.Booking, error) {
	var p paymentPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, nil
	}
	bookingID := p.bookingID()
	if bookingID == "" || !p.Amount.GreaterThan(decimal.Zero) {
		if !h.Cfg.IsProd() {
			log.Printf("[webhook] payment_succeeded: missing booking_id or amount payment_id=%s", p.ID)
		}
		return nil, nil
	}

	b, err := booking.GetForUpdate(ctx, tx, bookingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	d := decidePayment(p, b)
	if d.Skip != "" {
		log.Printf("[webhook] payment_succeeded: skipped booking_id=%s payment_id=%s kind=%s reason=%q", bookingID, p.ID, d.Kind, d.Skip)
		return nil, nil
	}
	next, tr, kind := d.Next, d.Transition, d.Kind

	now := time.Now()
	paidAt := p.paidAt(now)
	if err := payment.Insert(ctx, tx, next.ID, kind, p.Amount, p.ID, paidAt); err != nil {
		return nil, err
	}
	if next.UpdatedAt, err = booking.UpdateLifecycle(ctx, tx, next); err != nil {
		return nil, err
	}

	actor := "webhook"
	meta := map[string]any{
		"paymentId": p.ID,
		"kind":      kind,
		"amount":    p.Amount.StringFixed(2),
		"from":      tr.From,
		"to":        tr.To,
	}
	if err := audit.Insert(ctx, tx, "payment-gateway", &next.ID, audit.ActionPaymentApplied, actor, meta); err != nil {
		return nil, err
	}
	if err := events.Insert(ctx, tx, next.ID, events.TypePaymentReceived, "Payment received", actor, paidAt, meta); err != nil {
		return nil, err
	}
	if !tr.Changed() {
		return nil, nil
	}
	if err := events.Insert(ctx, tx, next.ID, events.TypeStatusChanged, "Status changed to "+string(tr.To), actor, now, meta); err != nil {
		return nil, err
	}
	return &next, nil
}

// handlePaymentRefunded marks the booking's payment as refunded. The lifecycle status is
// left for an admin to decide.
func (h Handler) handlePaymentRefunded(ctx context.Context, tx pgx.Tx, body []byte) error {
	var p paymentPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil
	}
	bookingID := p.bookingID()
	if bookingID == "" {
		return nil
	}

	b, err := booking.GetForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if b.PaymentStatus == booking.PaymentStatusRefunded {
		return nil
	}

	b.PaymentStatus = booking.PaymentStatusRefunded
	if b.UpdatedAt, err = booking.UpdateLifecycle(ctx, tx, *b); err != nil {
		return err
	}

	actor := "webhook"
	meta := map[string]any{"paymentId": p.ID, "amount": p.Amount.StringFixed(2)}
	if err := audit.Insert(ctx, tx, "payment-gateway", &b.ID, audit.ActionPaymentRefunded, actor, meta); err != nil {
		return err
	}
	return events.Insert(ctx, tx, b.ID, events.TypePaymentRefunded, "Payment refunded", actor, p.paidAt(time.Now()), meta)
}

func insertWebhookEvent(ctx context.Context, tx pgx.Tx, topic, eventID, payloadHash string) error {
	const q = `
INSERT INTO webhook_events (topic, event_id, payload_hash, processed_at)
VALUES ($1, $2, $3, NOW())
`
	_, err := tx.Exec(ctx, q, topic, eventID, payloadHash)
	return err
}

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if ok := errors.As(err, &pgErr); ok {
		return pgErr.Code == "23505"
	}
	return false
}
