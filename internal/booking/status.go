package booking

import "fmt"

type Status string

const (
	StatusPendingPayment          Status = "pending_payment"
	StatusPaymentCompleted        Status = "payment_completed"
	StatusPaymentConfirmedPartial Status = "payment_confirmed_partial"
	StatusConfirmed               Status = "confirmed"
	StatusTrekCompleted           Status = "trek_completed"
	StatusCancelled               Status = "cancelled"
)

// Statuses lists every known status in lifecycle order, cancelled last. The partial
// branch comes before payment_completed.
func Statuses() []Status {
	return []Status{
		StatusPendingPayment,
		StatusPaymentConfirmedPartial,
		StatusPaymentCompleted,
		StatusConfirmed,
		StatusTrekCompleted,
		StatusCancelled,
	}
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingPayment, StatusPaymentCompleted, StatusPaymentConfirmedPartial,
		StatusConfirmed, StatusTrekCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPendingPayment: {
		StatusPaymentCompleted:        true,
		StatusPaymentConfirmedPartial: true,
		StatusCancelled:               true,
	},
	StatusPaymentConfirmedPartial: {StatusConfirmed: true, StatusCancelled: true},
	StatusPaymentCompleted:        {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:               {StatusTrekCompleted: true, StatusCancelled: true},
	StatusTrekCompleted:           {},
	StatusCancelled:               {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// NextStatuses returns the statuses reachable from s, in Statuses() order.
// Admin screens use it to populate the status dropdown.
func NextStatuses(s Status) []Status {
	var out []Status
	for _, next := range Statuses() {
		if CanTransition(s, next) {
			out = append(out, next)
		}
	}
	return out
}

func (s Status) IsTerminal() bool {
	return s == StatusTrekCompleted || s == StatusCancelled
}
