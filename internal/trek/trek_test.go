package trek

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trekbooking/internal/payment"
)

func TestParseAndValidate(t *testing.T) {
	cfg, err := ParseAndValidate(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.False(t, cfg.AllowPartial)

	cfg, err = ParseAndValidate(json.RawMessage(`{"allowPartial":true,"initialPercent":"30"}`))
	require.NoError(t, err)
	assert.True(t, cfg.InitialPercent.Equal(decimal.NewFromInt(30)))

	_, err = ParseAndValidate(json.RawMessage(`{"allowPartial":true,"initialPercent":100}`))
	var verr payment.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "INITIAL_PERCENT_INVALID", verr.Code)

	_, err = ParseAndValidate(json.RawMessage(`{`))
	assert.Error(t, err)
}

func TestValidateCustomFields(t *testing.T) {
	assert.NoError(t, ValidateCustomFields([]CustomField{{Key: "emergencyContact", Label: "Emergency contact", Required: true}}))
	assert.Error(t, ValidateCustomFields([]CustomField{{Key: "1bad", Label: "x"}}))
	assert.Error(t, ValidateCustomFields([]CustomField{{Key: "a", Label: "A"}, {Key: "a", Label: "B"}}))
	assert.Error(t, ValidateCustomFields([]CustomField{{Key: "a", Label: " "}}))
}

func TestQuote(t *testing.T) {
	trek := Trek{
		Price:     decimal.RequireFromString("4999.50"),
		StartDate: time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		Payment:   PaymentConfig{Version: 1, AllowPartial: true, InitialPercent: decimal.NewFromInt(30)},
	}
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	full, err := trek.Quote(2, false, 7, now)
	require.NoError(t, err)
	assert.Equal(t, "9999.00", full.Total.StringFixed(2))
	assert.Nil(t, full.Plan)

	partial, err := trek.Quote(2, true, 7, now)
	require.NoError(t, err)
	require.NotNil(t, partial.Plan)
	assert.Equal(t, "2999.70", partial.Plan.Initial.StringFixed(2))
	assert.Equal(t, "6999.30", partial.Plan.Remaining.StringFixed(2))
	assert.Equal(t, time.Date(2026, 12, 13, 0, 0, 0, 0, time.UTC), partial.DueDate)

	trek.Payment.AllowPartial = false
	_, err = trek.Quote(2, true, 7, now)
	var verr payment.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "PARTIAL_PAYMENT_NOT_ALLOWED", verr.Code)

	_, err = trek.Quote(0, false, 7, now)
	assert.Error(t, err)
}

func TestPutRequest_ToTrek(t *testing.T) {
	req := PutRequest{
		Name:          " Kedarkantha ",
		Price:         decimal.NewFromInt(12000),
		StartDate:     "2026-12-20",
		PaymentConfig: json.RawMessage(`{"allowPartial":true,"initialPercent":25}`),
	}
	got, err := req.ToTrek(" Kedarkantha-Winter ", "INR")
	require.NoError(t, err)
	assert.Equal(t, "kedarkantha-winter", got.Slug)
	assert.Equal(t, "Kedarkantha", got.Name)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, 1, got.DurationDays)
	assert.True(t, got.Active)

	req.StartDate = "20/12/2026"
	_, err = req.ToTrek("kedarkantha", "INR")
	assert.Error(t, err)
}

func TestCatalog_NilCacheFallsThrough(t *testing.T) {
	c := &Catalog{}
	// Invalidate must tolerate a disabled cache.
	c.Invalidate(context.Background(), "x")
}
