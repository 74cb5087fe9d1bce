package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Plan is the two-part schedule of a partial booking.
type Plan struct {
	Initial   decimal.Decimal
	Remaining decimal.Decimal
}

// SplitPartial computes the upfront and remaining amounts for a partial booking.
//
// Rules:
// - initialPercent is a percentage of total, strictly between 0 and 100.
// - Initial is rounded to scale; the rounding delta stays in Remaining so Initial+Remaining == total.
// - Remaining must be > 0 after rounding, otherwise the booking is effectively a full payment.
func SplitPartial(total, initialPercent decimal.Decimal, scale CurrencyScale) (Plan, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return Plan{}, ValidationError{Code: "BOOKING_TOTAL_INVALID", Message: "booking total must be > 0"}
	}
	if initialPercent.LessThanOrEqual(decimal.Zero) || initialPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return Plan{}, ValidationError{Code: "INITIAL_PERCENT_INVALID", Message: "initial percent must be between 0 and 100"}
	}
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}

	rounded := total.Round(int32(scale))
	initial := rounded.Mul(initialPercent).Div(decimal.NewFromInt(100)).Round(int32(scale))
	remaining := rounded.Sub(initial)

	if initial.LessThanOrEqual(decimal.Zero) || remaining.LessThanOrEqual(decimal.Zero) {
		return Plan{}, ValidationError{Code: "PARTIAL_SPLIT_INVALID", Message: "both installments must be > 0"}
	}
	return Plan{Initial: initial, Remaining: remaining}, nil
}

// DueDate is the date the remaining balance is due: daysBefore days ahead of the trek
// start, but never earlier than today.
func DueDate(trekStart time.Time, daysBefore int, now time.Time) time.Time {
	if daysBefore < 0 {
		daysBefore = 0
	}
	due := dateOnly(trekStart).AddDate(0, 0, -daysBefore)
	today := dateOnly(now)
	if due.Before(today) {
		return today
	}
	return due
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
