package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KnownStatusesDifferFromFallback(t *testing.T) {
	fallback := Classify("definitely_not_a_status")
	for _, s := range Statuses() {
		b := Classify(string(s))
		assert.NotEmpty(t, b.Label, "label for %s", s)
		assert.NotEqual(t, fallback.BadgeClass, b.BadgeClass, "badge for %s", s)
	}
}

func TestClassify_UnknownIsStable(t *testing.T) {
	want := Classify("")
	for _, s := range []string{"", "refund_pending", "CONFIRMED", "confirmed ", "trek-completed"} {
		assert.Equal(t, want, Classify(s), "fallback for %q", s)
	}
	assert.Equal(t, "bg-gray-100 text-gray-800", want.BadgeClass)
}

func TestClassify_Confirmed(t *testing.T) {
	assert.Equal(t, Badge{BadgeClass: "bg-green-100 text-green-800", Label: "confirmed"}, Classify("confirmed"))
	assert.Equal(t, "payment confirmed partial", Classify("payment_confirmed_partial").Label)
}

func TestResumeAction(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPendingPayment, true},
		{StatusPaymentCompleted, true},
		{StatusPaymentConfirmedPartial, true},
		{StatusConfirmed, false},
		{StatusTrekCompleted, false},
		{StatusCancelled, false},
		{Status("archived"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := ResumeAction(Booking{ID: "b-1", Status: tt.status})
			if tt.want {
				require.NotNil(t, got)
				assert.NotEmpty(t, got.Text)
				assert.NotEmpty(t, got.Link)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestResumeAction_PartialLinksToPayment(t *testing.T) {
	got := ResumeAction(Booking{ID: "abc-123", Status: StatusPaymentConfirmedPartial})
	require.NotNil(t, got)
	assert.Equal(t, "Pay Remaining Balance", got.Text)
	assert.Equal(t, "/payment/abc-123", got.Link)
}

func TestProgress_HappyPathNonDecreasing(t *testing.T) {
	path := []Status{StatusPendingPayment, StatusPaymentCompleted, StatusConfirmed, StatusTrekCompleted}
	prev := -1
	for _, s := range path {
		p := ProgressOf(string(s))
		assert.GreaterOrEqual(t, p.Step, prev, "step for %s", s)
		prev = p.Step
	}

	partialPath := []Status{StatusPendingPayment, StatusPaymentConfirmedPartial, StatusConfirmed, StatusTrekCompleted}
	prev = -1
	for _, s := range partialPath {
		p := ProgressOf(string(s))
		assert.GreaterOrEqual(t, p.Step, prev, "step for %s", s)
		prev = p.Step
	}
}

func TestProgress_TrekCompletedAndUnknown(t *testing.T) {
	assert.Equal(t, Progress{Step: 4, Total: 4, Label: "Trek Completed"}, ProgressOf("trek_completed"))
	assert.Equal(t, Progress{Step: 0, Total: 4, Label: "Unknown"}, ProgressOf("on_hold"))
}

func TestViewOf_TerminalHasNoNextStatuses(t *testing.T) {
	v := ViewOf(Booking{ID: "x", Status: StatusCancelled})
	assert.NotNil(t, v.NextStatuses)
	assert.Empty(t, v.NextStatuses)
	assert.Nil(t, v.ResumeAction)
	assert.Equal(t, "Cancelled", v.Progress.Label)
}
