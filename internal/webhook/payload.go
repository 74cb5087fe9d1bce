package webhook

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trekbooking/internal/booking"
	"trekbooking/internal/payment"
)

// paymentPayload is the gateway's payment notification body.
type paymentPayload struct {
	ID        string          `json:"id"`
	BookingID string          `json:"booking_id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Note      string          `json:"note"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// bookingID prefers the explicit field and falls back to a booking_id token in the note.
func (p paymentPayload) bookingID() string {
	id := strings.TrimSpace(p.BookingID)
	if id == "" {
		id = ParseKeyFromNote(p.Note, "booking_id")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// kindFor resolves which installment a payment settles. An explicit kind (field or note)
// wins; otherwise it follows from the booking's state.
func (p paymentPayload) kindFor(b booking.Booking) payment.Kind {
	raw := strings.ToLower(strings.TrimSpace(p.Kind))
	if raw == "" {
		raw = strings.ToLower(ParseKeyFromNote(p.Note, "kind"))
	}
	if k, ok := payment.ParseKind(raw); ok {
		return k
	}
	switch {
	case b.Status == booking.StatusPaymentConfirmedPartial:
		return payment.KindBalance
	case b.PaymentMode == booking.PaymentModePartial:
		return payment.KindInitial
	default:
		return payment.KindFull
	}
}

func (p paymentPayload) paidAt(now time.Time) time.Time {
	if p.PaidAt == nil || p.PaidAt.IsZero() {
		return now
	}
	return *p.PaidAt
}

// paymentDecision is what a payment notification does to the booking it names. A non-empty
// Skip means the event is recorded as processed and nothing else is written.
type paymentDecision struct {
	Kind       payment.Kind
	Next       booking.Booking
	Transition booking.Transition
	Skip       string
}

// decidePayment maps a payment onto b, which is nil when the booking does not exist.
func decidePayment(p paymentPayload, b *booking.Booking) paymentDecision {
	if b == nil {
		return paymentDecision{Skip: "unknown booking"}
	}
	if p.Currency != "" && !strings.EqualFold(p.Currency, b.Currency) {
		return paymentDecision{Skip: "currency mismatch: got " + p.Currency + " want " + b.Currency}
	}
	kind := p.kindFor(*b)
	next, tr, err := booking.ApplyPayment(*b, kind, p.Amount)
	if err != nil {
		return paymentDecision{Kind: kind, Skip: err.Error()}
	}
	return paymentDecision{Kind: kind, Next: next, Transition: tr}
}
