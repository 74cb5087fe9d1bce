package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWorkbook(t *testing.T) {
	created := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	items := []Booking{
		{Reference: "TRK-AAAA0001", TrekName: "Hampta Pass", UserEmail: "a@example.com", ParticipantCount: 2,
			Status: StatusConfirmed, PaymentMode: PaymentModeFull, PaymentStatus: PaymentStatusCompleted,
			Currency: "INR", TotalPrice: dec("18000"), AmountPaid: dec("18000"), CreatedAt: created},
		{Reference: "TRK-AAAA0002", TrekName: "Kedarkantha", UserEmail: "b@example.com", ParticipantCount: 1,
			Status: StatusPaymentConfirmedPartial, PaymentMode: PaymentModePartial, PaymentStatus: PaymentStatusPartial,
			Currency: "INR", TotalPrice: dec("10000"), AmountPaid: dec("3000"), CreatedAt: created,
			PartialPaymentDetails: &PartialPaymentDetails{InitialAmount: dec("3000"), RemainingAmount: dec("7000"),
				FinalPaymentDueDate: time.Date(2026, 12, 13, 0, 0, 0, 0, time.UTC)}},
	}

	f, err := ExportWorkbook(items)
	require.NoError(t, err)
	defer f.Close()

	ref, err := f.GetCellValue(exportSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "TRK-AAAA0002", ref)

	status, _ := f.GetCellValue(exportSheet, "F3")
	assert.Equal(t, "payment confirmed partial", status)

	due, _ := f.GetCellValue(exportSheet, "M3")
	assert.Equal(t, "2026-12-13", due)

	// Summary rows follow Statuses() order; confirmed is the fourth status.
	label, _ := f.GetCellValue(summarySheet, "A5")
	count, _ := f.GetCellValue(summarySheet, "B5")
	assert.Equal(t, "confirmed", label)
	assert.Equal(t, "1", count)
}
