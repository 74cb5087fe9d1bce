package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ProducesPDF(t *testing.T) {
	out, name, err := Build(Data{
		Reference:     "TRK-3F9A12C4",
		IssuedAt:      time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
		CustomerEmail: "asha@example.com",
		TrekName:      "Kedarkantha Winter",
		TrekStartDate: time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		Status:        "payment confirmed partial",
		Currency:      "INR",
		Participants:  []Participant{{Name: "Asha", Age: 29, Gender: "female"}, {Name: "José", Age: 31, Gender: "male"}},
		TotalPrice:    decimal.RequireFromString("24000"),
		AmountPaid:    decimal.RequireFromString("7200"),
		Partial: &Partial{
			Initial:   decimal.RequireFromString("7200"),
			Remaining: decimal.RequireFromString("16800"),
			DueDate:   time.Date(2026, 12, 13, 0, 0, 0, 0, time.UTC),
		},
		SupportEmail: "support@example.com",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "invoice-trk-3f9a12c4.pdf", name)
}

func TestBuild_RequiresReference(t *testing.T) {
	_, _, err := Build(Data{})
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "INR 1,234,567.50", FormatMoney("INR", decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "INR 999.00", FormatMoney("INR", decimal.NewFromInt(999)))
	assert.Equal(t, "-1,000.00", FormatMoney("", decimal.NewFromInt(-1000)))
	assert.Equal(t, "0.00", FormatMoney("", decimal.Zero))
}
