package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSplitPartial_RoundingDeltaStaysInRemaining(t *testing.T) {
	total := decimal.RequireFromString("1000.01")
	got, err := SplitPartial(total, decimal.NewFromInt(33), DefaultCurrencyScale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Initial.Equal(decimal.RequireFromString("330.00")) {
		t.Fatalf("expected initial 330.00, got %s", got.Initial)
	}
	if !got.Initial.Add(got.Remaining).Equal(total) {
		t.Fatalf("installments %s + %s do not sum to %s", got.Initial, got.Remaining, total)
	}
}

func TestSplitPartial_RejectsFullPercent(t *testing.T) {
	_, err := SplitPartial(decimal.NewFromInt(500), decimal.NewFromInt(100), DefaultCurrencyScale)
	var verr ValidationError
	if !errors.As(err, &verr) || verr.Code != "INITIAL_PERCENT_INVALID" {
		t.Fatalf("expected INITIAL_PERCENT_INVALID, got %v", err)
	}
}

func TestSplitPartial_RejectsZeroTotal(t *testing.T) {
	if _, err := SplitPartial(decimal.Zero, decimal.NewFromInt(30), DefaultCurrencyScale); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDueDate_NeverBeforeToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if got := DueDate(start, 7, now); !got.Equal(time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %s", got)
	}

	soon := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	if got := DueDate(soon, 7, now); !got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today, got %s", got)
	}
}
