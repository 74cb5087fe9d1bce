package booking

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Fatalf("expected %s to parse, got %q err=%v", s, got, err)
		}
	}
	if _, err := ParseStatus("Confirmed"); err == nil {
		t.Fatalf("expected error for wrong case")
	}
}

func TestCanTransition_DocumentedEdges(t *testing.T) {
	edges := [][2]Status{
		{StatusPendingPayment, StatusPaymentCompleted},
		{StatusPendingPayment, StatusPaymentConfirmedPartial},
		{StatusPaymentConfirmedPartial, StatusConfirmed},
		{StatusPaymentCompleted, StatusConfirmed},
		{StatusConfirmed, StatusTrekCompleted},
		{StatusPendingPayment, StatusCancelled},
		{StatusPaymentCompleted, StatusCancelled},
		{StatusPaymentConfirmedPartial, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
	}
	for _, e := range edges {
		if !CanTransition(e[0], e[1]) {
			t.Fatalf("expected %s -> %s to be allowed", e[0], e[1])
		}
	}
}

func TestCanTransition_RejectsBackwardsAndTerminal(t *testing.T) {
	illegal := [][2]Status{
		{StatusTrekCompleted, StatusPendingPayment},
		{StatusCancelled, StatusConfirmed},
		{StatusConfirmed, StatusPendingPayment},
		{StatusPaymentCompleted, StatusPaymentConfirmedPartial},
		{StatusPendingPayment, StatusConfirmed},
		{StatusTrekCompleted, StatusCancelled},
		{Status("unknown"), StatusCancelled},
	}
	for _, e := range illegal {
		if CanTransition(e[0], e[1]) {
			t.Fatalf("expected %s -> %s to be rejected", e[0], e[1])
		}
	}
}

func TestParticipantsEditable(t *testing.T) {
	want := map[Status]bool{
		StatusPendingPayment:          true,
		StatusPaymentConfirmedPartial: true,
		StatusPaymentCompleted:        true,
		StatusConfirmed:               true,
		StatusTrekCompleted:           false,
		StatusCancelled:               false,
	}
	for _, s := range Statuses() {
		if got := (Booking{Status: s}).ParticipantsEditable(); got != want[s] {
			t.Fatalf("ParticipantsEditable(%s) = %v, want %v", s, got, want[s])
		}
	}
}

func TestNextStatuses(t *testing.T) {
	got := NextStatuses(StatusPendingPayment)
	want := []Status{StatusPaymentConfirmedPartial, StatusPaymentCompleted, StatusCancelled}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if n := NextStatuses(StatusTrekCompleted); len(n) != 0 {
		t.Fatalf("expected no next statuses, got %v", n)
	}
}
