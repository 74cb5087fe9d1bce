package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trekbooking/internal/payment"
)

var (
	ErrPaymentNotApplicable = errors.New("payment does not apply to booking in its current state")
	ErrStatusChanged        = errors.New("booking status changed since it was read")
)

type TransitionError struct {
	From Status
	To   Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

type Transition struct {
	From Status
	To   Status
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// ApplyPayment advances b after a confirmed payment and returns the updated copy.
//
// Rules:
//   - full on pending_payment: payment_completed once the total is covered.
//   - initial on a partial pending_payment booking: payment_confirmed_partial once the initial
//     installment is covered, with the balance recomputed from what was actually paid
//     (payment_completed if nothing is left).
//   - balance on payment_confirmed_partial: reduces the balance; confirmed once it reaches 0.
//
// A payment short of its threshold is still counted in AmountPaid but leaves the status,
// paymentStatus and installment plan as they were.
func ApplyPayment(b Booking, kind payment.Kind, amount decimal.Decimal) (Booking, Transition, error) {
	tr := Transition{From: b.Status, To: b.Status}
	if amount.LessThanOrEqual(decimal.Zero) {
		return b, tr, ValidationError{Code: "VALIDATION_FAILED", Message: "payment amount must be > 0"}
	}

	b.AmountPaid = b.AmountPaid.Add(amount)
	remaining := b.TotalPrice.Sub(b.AmountPaid)
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}

	switch kind {
	case payment.KindFull:
		if b.Status != StatusPendingPayment {
			return b, tr, ErrPaymentNotApplicable
		}
		if remaining.IsZero() {
			tr.To = StatusPaymentCompleted
			b.PaymentStatus = PaymentStatusCompleted
			b.settleBalance()
		}

	case payment.KindInitial:
		if b.Status != StatusPendingPayment || b.PaymentMode != PaymentModePartial || b.PartialPaymentDetails == nil {
			return b, tr, ErrPaymentNotApplicable
		}
		switch {
		case remaining.IsZero():
			tr.To = StatusPaymentCompleted
			b.PaymentStatus = PaymentStatusCompleted
			b.settleBalance()
		case b.AmountPaid.GreaterThanOrEqual(b.PartialPaymentDetails.InitialAmount):
			tr.To = StatusPaymentConfirmedPartial
			b.PaymentStatus = PaymentStatusPartial
			details := *b.PartialPaymentDetails
			details.RemainingAmount = remaining
			b.PartialPaymentDetails = &details
		}

	case payment.KindBalance:
		if b.Status != StatusPaymentConfirmedPartial || b.PartialPaymentDetails == nil {
			return b, tr, ErrPaymentNotApplicable
		}
		if remaining.IsZero() {
			tr.To = StatusConfirmed
			b.PaymentStatus = PaymentStatusCompleted
			b.settleBalance()
		} else {
			details := *b.PartialPaymentDetails
			details.RemainingAmount = remaining
			b.PartialPaymentDetails = &details
		}

	default:
		return b, tr, ErrPaymentNotApplicable
	}

	if tr.Changed() && !CanTransition(tr.From, tr.To) {
		return b, tr, TransitionError{From: tr.From, To: tr.To}
	}
	b.Status = tr.To
	return b, tr, b.Validate()
}

func (b *Booking) settleBalance() {
	if b.PartialPaymentDetails == nil {
		return
	}
	details := *b.PartialPaymentDetails
	details.RemainingAmount = decimal.Zero
	b.PartialPaymentDetails = &details
}

// AdminPatch mirrors the admin booking edit form. Nil fields are left untouched.
type AdminPatch struct {
	Status         *string          `json:"status,omitempty"`
	ExpectedStatus *string          `json:"expectedStatus,omitempty"`
	PaymentStatus  *string          `json:"paymentStatus,omitempty"`
	AdminRemarks   *string          `json:"adminRemarks,omitempty"`
	TotalPrice     *decimal.Decimal `json:"totalPrice,omitempty"`
}

func (p AdminPatch) Empty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.AdminRemarks == nil && p.TotalPrice == nil
}

// ApplyAdminPatch applies an admin edit. Status changes must follow the transition table;
// ExpectedStatus, when set, makes the write conditional on the status the admin last saw.
func ApplyAdminPatch(b Booking, p AdminPatch) (Booking, Transition, error) {
	tr := Transition{From: b.Status, To: b.Status}

	if p.ExpectedStatus != nil && Status(*p.ExpectedStatus) != b.Status {
		return b, tr, ErrStatusChanged
	}

	if p.TotalPrice != nil {
		if b.Status.IsTerminal() {
			return b, tr, ValidationError{Code: "BOOKING_LOCKED", Message: "price cannot change after the booking is closed"}
		}
		if p.TotalPrice.LessThan(decimal.Zero) {
			return b, tr, ValidationError{Code: "VALIDATION_FAILED", Message: "totalPrice must be >= 0"}
		}
		b.TotalPrice = p.TotalPrice.Round(int32(payment.DefaultCurrencyScale))
		if b.PartialPaymentDetails != nil {
			remaining := b.TotalPrice.Sub(b.AmountPaid)
			if remaining.LessThan(decimal.Zero) {
				remaining = decimal.Zero
			}
			details := *b.PartialPaymentDetails
			details.RemainingAmount = remaining
			b.PartialPaymentDetails = &details
		}
	}

	if p.Status != nil {
		next, err := ParseStatus(strings.TrimSpace(*p.Status))
		if err != nil {
			return b, tr, ValidationError{Code: "VALIDATION_FAILED", Message: "invalid status"}
		}
		if next != b.Status {
			if !CanTransition(b.Status, next) {
				return b, tr, TransitionError{From: b.Status, To: next}
			}
			tr.To = next
			b.Status = next
		}
	}

	if p.PaymentStatus != nil {
		ps, err := ParsePaymentStatus(strings.TrimSpace(*p.PaymentStatus))
		if err != nil {
			return b, tr, ValidationError{Code: "VALIDATION_FAILED", Message: "invalid paymentStatus"}
		}
		b.PaymentStatus = ps
	}

	if p.AdminRemarks != nil {
		b.AdminRemarks = strings.TrimSpace(*p.AdminRemarks)
	}

	return b, tr, b.Validate()
}

// Cancel moves a booking to cancelled when the table allows it.
func Cancel(b Booking) (Booking, Transition, error) {
	tr := Transition{From: b.Status, To: StatusCancelled}
	if !CanTransition(b.Status, StatusCancelled) {
		return b, Transition{From: b.Status, To: b.Status}, TransitionError{From: b.Status, To: StatusCancelled}
	}
	b.Status = StatusCancelled
	return b, tr, nil
}
