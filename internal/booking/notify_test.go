package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusUpdate(t *testing.T) {
	b := Booking{ID: "b-9", Reference: "TRK-1", UserEmail: "a@example.com", TrekName: "Hampta Pass", Status: StatusPaymentConfirmedPartial}

	u := StatusUpdate(b, "https://treks.example.com/")
	assert.Equal(t, "payment confirmed partial", u.StatusLabel)
	assert.Equal(t, "Pay Remaining Balance", u.ActionText)
	assert.Equal(t, "https://treks.example.com/payment/b-9", u.ActionURL)

	b.Status = StatusConfirmed
	u = StatusUpdate(b, "https://treks.example.com")
	assert.Empty(t, u.ActionText)
	assert.Empty(t, u.ActionURL)
}
