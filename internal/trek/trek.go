package trek

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trekbooking/internal/payment"
)

type Trek struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Region       string          `json:"region"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	StartDate    time.Time       `json:"startDate"`
	DurationDays int             `json:"durationDays"`
	Payment      PaymentConfig   `json:"paymentConfig"`
	CustomFields []CustomField   `json:"customFields"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// PaymentConfig is stored as JSONB in `treks.payment_config`.
// Versioned so existing rows keep parsing when fields are added.
type PaymentConfig struct {
	Version        int             `json:"version"`
	AllowPartial   bool            `json:"allowPartial"`
	InitialPercent decimal.Decimal `json:"initialPercent"`
}

type CustomField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

func ParseAndValidate(raw json.RawMessage) (PaymentConfig, error) {
	var cfg PaymentConfig
	if len(raw) == 0 {
		return PaymentConfig{Version: 1}, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return PaymentConfig{}, payment.ValidationError{Code: "VALIDATION_FAILED", Message: "invalid paymentConfig json"}
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if !cfg.AllowPartial {
		cfg.InitialPercent = decimal.Zero
		return cfg, nil
	}
	hundred := decimal.NewFromInt(100)
	if cfg.InitialPercent.LessThanOrEqual(decimal.Zero) || cfg.InitialPercent.GreaterThanOrEqual(hundred) {
		return PaymentConfig{}, payment.ValidationError{Code: "INITIAL_PERCENT_INVALID", Message: "initialPercent must be between 0 and 100"}
	}
	return cfg, nil
}

var fieldKeyRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,39}$`)

func ValidateCustomFields(fields []CustomField) error {
	seen := map[string]bool{}
	for i, f := range fields {
		if !fieldKeyRe.MatchString(f.Key) {
			return payment.ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("customFields[%d]: invalid key", i)}
		}
		if seen[f.Key] {
			return payment.ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("customFields[%d]: duplicate key %s", i, f.Key)}
		}
		if strings.TrimSpace(f.Label) == "" {
			return payment.ValidationError{Code: "VALIDATION_FAILED", Message: fmt.Sprintf("customFields[%d]: label is required", i)}
		}
		seen[f.Key] = true
	}
	return nil
}

// Quote prices a booking of n participants. For partial payment the plan splits the total
// and the balance falls due balanceDueDays before the start date.
type Quote struct {
	Total   decimal.Decimal
	Plan    *payment.Plan
	DueDate time.Time
}

func (t Trek) Quote(participants int, partial bool, balanceDueDays int, now time.Time) (Quote, error) {
	if participants <= 0 {
		return Quote{}, payment.ValidationError{Code: "VALIDATION_FAILED", Message: "participantCount must be > 0"}
	}
	total := t.Price.Mul(decimal.NewFromInt(int64(participants))).Round(int32(payment.DefaultCurrencyScale))
	q := Quote{Total: total}
	if !partial {
		return q, nil
	}
	if !t.Payment.AllowPartial {
		return Quote{}, payment.ValidationError{Code: "PARTIAL_PAYMENT_NOT_ALLOWED", Message: "this trek does not accept partial payment"}
	}
	plan, err := payment.SplitPartial(total, t.Payment.InitialPercent, payment.DefaultCurrencyScale)
	if err != nil {
		return Quote{}, err
	}
	q.Plan = &plan
	q.DueDate = payment.DueDate(t.StartDate, balanceDueDays, now)
	return q, nil
}
