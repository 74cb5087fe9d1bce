package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "full"
	PaymentModePartial PaymentMode = "partial"
)

func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case "", PaymentModeFull:
		return PaymentModeFull, nil
	case PaymentModePartial:
		return PaymentModePartial, nil
	default:
		return "", ValidationError{Code: "VALIDATION_FAILED", Message: "paymentMode must be full or partial"}
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted, PaymentStatusRefunded:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown payment status: %s", s)
	}
}

type PartialPaymentDetails struct {
	InitialAmount       decimal.Decimal `json:"initialAmount"`
	RemainingAmount     decimal.Decimal `json:"remainingAmount"`
	FinalPaymentDueDate time.Time       `json:"finalPaymentDueDate"`
}

type Participant struct {
	Name         string            `json:"name"`
	Age          int               `json:"age"`
	Gender       string            `json:"gender"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

type Booking struct {
	ID                    string                 `json:"id"`
	Reference             string                 `json:"reference"`
	UserID                string                 `json:"userId"`
	UserEmail             string                 `json:"userEmail,omitempty"`
	TrekID                string                 `json:"trekId"`
	TrekName              string                 `json:"trekName,omitempty"`
	TrekStartDate         time.Time              `json:"trekStartDate"`
	ParticipantCount      int                    `json:"participantCount"`
	Participants          []Participant          `json:"participants"`
	TotalPrice            decimal.Decimal        `json:"totalPrice"`
	AmountPaid            decimal.Decimal        `json:"amountPaid"`
	Currency              string                 `json:"currency"`
	Status                Status                 `json:"status"`
	PaymentMode           PaymentMode            `json:"paymentMode"`
	PaymentStatus         PaymentStatus          `json:"paymentStatus"`
	PartialPaymentDetails *PartialPaymentDetails `json:"partialPaymentDetails,omitempty"`
	AdminRemarks          string                 `json:"adminRemarks,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

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

// Validate checks the record-level invariants that must hold before any write.
func (b Booking) Validate() error {
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return ValidationError{Code: "VALIDATION_FAILED", Message: err.Error()}
	}
	if b.PaymentMode == PaymentModeFull && b.PartialPaymentDetails != nil {
		return ValidationError{Code: "VALIDATION_FAILED", Message: "partial payment details require paymentMode partial"}
	}
	if b.Status == StatusPaymentConfirmedPartial {
		if b.PartialPaymentDetails == nil || !b.PartialPaymentDetails.RemainingAmount.GreaterThan(decimal.Zero) {
			return ValidationError{Code: "PARTIAL_BALANCE_INVALID", Message: "partially paid booking must have a remaining amount > 0"}
		}
	}
	if b.ParticipantCount <= 0 {
		return ValidationError{Code: "VALIDATION_FAILED", Message: "participant count must be > 0"}
	}
	if len(b.Participants) > 0 && len(b.Participants) != b.ParticipantCount {
		return ValidationError{Code: "PARTICIPANT_COUNT_MISMATCH", Message: "participant count does not match participants"}
	}
	if b.TotalPrice.LessThan(decimal.Zero) {
		return ValidationError{Code: "VALIDATION_FAILED", Message: "total price must be >= 0"}
	}
	return nil
}

// ParticipantsEditable reports whether the participant list may still be replaced.
func (b Booking) ParticipantsEditable() bool {
	return !b.Status.IsTerminal()
}

// FieldSpec is a trek-specific question every participant answers.
type FieldSpec struct {
	Key      string
	Label    string
	Required bool
}

var genders = map[string]bool{"male": true, "female": true, "other": true}

// NormalizeParticipants trims and validates a replacement participant list.
func NormalizeParticipants(list []Participant, expectedCount int, fields []FieldSpec) ([]Participant, error) {
	if len(list) != expectedCount {
		return nil, ValidationError{
			Code:    "PARTICIPANT_COUNT_MISMATCH",
			Message: fmt.Sprintf("expected %d participants, got %d", expectedCount, len(list)),
		}
	}

	out := make([]Participant, 0, len(list))
	for i, p := range list {
		p.Name = strings.TrimSpace(p.Name)
		p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
		if p.Name == "" {
			return nil, ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("participant %d: name is required", i+1)}
		}
		if p.Age <= 0 || p.Age > 120 {
			return nil, ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("participant %d: age is out of range", i+1)}
		}
		if !genders[p.Gender] {
			return nil, ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("participant %d: gender must be male, female or other", i+1)}
		}

		responses := map[string]string{}
		for _, f := range fields {
			v := strings.TrimSpace(p.CustomFields[f.Key])
			if v == "" {
				if f.Required {
					return nil, ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("participant %d: %s is required", i+1, f.Label)}
				}
				continue
			}
			responses[f.Key] = v
		}
		p.CustomFields = responses
		out = append(out, p)
	}
	return out, nil
}
