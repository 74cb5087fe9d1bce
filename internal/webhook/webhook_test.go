package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trekbooking/internal/booking"
	"trekbooking/internal/payment"
	"trekbooking/pkg/config"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"pay_1"}`)
	sig := Sign(body, "whsec")
	assert.True(t, VerifySignature(body, sig, "whsec"))
	assert.False(t, VerifySignature(body, sig, "other"))
	assert.False(t, VerifySignature([]byte(`{"id":"pay_2"}`), sig, "whsec"))
	assert.False(t, VerifySignature(body, "", "whsec"))
	assert.False(t, VerifySignature(body, sig, ""))
}

func TestNormalizeTopic(t *testing.T) {
	for in, want := range map[string]string{
		"payment.succeeded":    TopicPaymentSucceeded,
		"Payment/Refunded":     TopicPaymentRefunded,
		" payment--succeeded ": TopicPaymentSucceeded,
		"_payment_refunded_":   TopicPaymentRefunded,
	} {
		assert.Equal(t, want, NormalizeTopic(in), in)
	}
}

func TestPaymentPayload_BookingID(t *testing.T) {
	const id = "3f9a12c4-0000-4000-8000-000000000001"
	assert.Equal(t, id, paymentPayload{BookingID: id}.bookingID())
	assert.Equal(t, id, paymentPayload{Note: "checkout booking_id=" + id}.bookingID())
	assert.Empty(t, paymentPayload{BookingID: "not-a-uuid"}.bookingID())
}

func TestPaymentPayload_KindFor(t *testing.T) {
	partial := booking.Booking{Status: booking.StatusPendingPayment, PaymentMode: booking.PaymentModePartial}
	full := booking.Booking{Status: booking.StatusPendingPayment, PaymentMode: booking.PaymentModeFull}
	half := booking.Booking{Status: booking.StatusPaymentConfirmedPartial, PaymentMode: booking.PaymentModePartial}

	assert.Equal(t, payment.KindInitial, paymentPayload{}.kindFor(partial))
	assert.Equal(t, payment.KindFull, paymentPayload{}.kindFor(full))
	assert.Equal(t, payment.KindBalance, paymentPayload{}.kindFor(half))
	assert.Equal(t, payment.KindFull, paymentPayload{Kind: "FULL"}.kindFor(partial))
	assert.Equal(t, payment.KindBalance, paymentPayload{Note: "kind=balance"}.kindFor(partial))
}

func TestPaymentPayload_Decode(t *testing.T) {
	var p paymentPayload
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pay_9","amount":"3000.50","paid_at":"2026-10-18T10:00:00Z"}`), &p))
	assert.Equal(t, "3000.50", p.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), p.paidAt(time.Now()))

	now := time.Now()
	assert.Equal(t, now, paymentPayload{}.paidAt(now))
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	h := Handler{Cfg: config.Config{Payments: config.PaymentsConfig{WebhookSecret: "whsec"}}}
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/payment_succeeded", bytes.NewBufferString(`{}`))
	req.Header.Set("X-Payment-Signature", "bogus")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func pendingBooking(mode booking.PaymentMode) *booking.Booking {
	b := &booking.Booking{
		ID:               "3f9a12c4-0000-4000-8000-000000000001",
		Status:           booking.StatusPendingPayment,
		PaymentMode:      mode,
		PaymentStatus:    booking.PaymentStatusPending,
		ParticipantCount: 1,
		Currency:         "INR",
		TotalPrice:       decimal.RequireFromString("10000"),
	}
	if mode == booking.PaymentModePartial {
		b.PartialPaymentDetails = &booking.PartialPaymentDetails{
			InitialAmount:   decimal.RequireFromString("3000"),
			RemainingAmount: decimal.RequireFromString("7000"),
		}
	}
	return b
}

func TestDecidePayment(t *testing.T) {
	amount := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	tests := []struct {
		name     string
		payload  paymentPayload
		booking  *booking.Booking
		skip     bool
		kind     payment.Kind
		status   booking.Status
		changed  bool
		paidWant string
	}{
		{name: "unknown booking", payload: paymentPayload{Amount: amount("3000")}, skip: true},
		{name: "currency mismatch", payload: paymentPayload{Amount: amount("3000"), Currency: "USD"}, booking: pendingBooking(booking.PaymentModePartial), skip: true},
		{name: "currency case-insensitive", payload: paymentPayload{Amount: amount("3000"), Currency: "inr"}, booking: pendingBooking(booking.PaymentModePartial),
			kind: payment.KindInitial, status: booking.StatusPaymentConfirmedPartial, changed: true, paidWant: "3000"},
		{name: "full kind underpaid", payload: paymentPayload{Amount: amount("1"), Note: "kind=full"}, booking: pendingBooking(booking.PaymentModeFull),
			kind: payment.KindFull, status: booking.StatusPendingPayment, paidWant: "1"},
		{name: "initial underpaid", payload: paymentPayload{Amount: amount("1")}, booking: pendingBooking(booking.PaymentModePartial),
			kind: payment.KindInitial, status: booking.StatusPendingPayment, paidWant: "1"},
		{name: "full settles", payload: paymentPayload{Amount: amount("10000")}, booking: pendingBooking(booking.PaymentModeFull),
			kind: payment.KindFull, status: booking.StatusPaymentCompleted, changed: true, paidWant: "10000"},
		{name: "balance before initial", payload: paymentPayload{Amount: amount("7000"), Kind: "balance"}, booking: pendingBooking(booking.PaymentModePartial),
			kind: payment.KindBalance, skip: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decidePayment(tt.payload, tt.booking)
			if tt.skip {
				assert.NotEmpty(t, d.Skip)
				assert.Equal(t, tt.kind, d.Kind)
				return
			}
			require.Empty(t, d.Skip)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.status, d.Next.Status)
			assert.Equal(t, tt.changed, d.Transition.Changed())
			assert.True(t, d.Next.AmountPaid.Equal(amount(tt.paidWant)), "paid=%s", d.Next.AmountPaid)
		})
	}
}

func TestDecidePayment_DoesNotMutateLoadedBooking(t *testing.T) {
	b := pendingBooking(booking.PaymentModePartial)
	d := decidePayment(paymentPayload{Amount: decimal.RequireFromString("3000")}, b)
	require.Empty(t, d.Skip)
	assert.Equal(t, booking.StatusPendingPayment, b.Status)
	assert.True(t, b.AmountPaid.IsZero())
}
