package booking

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet  = "Bookings"
	summarySheet = "Summary"
)

var exportHeaders = []string{
	"Reference", "Trek", "Start date", "Customer", "Participants", "Status", "Payment mode",
	"Payment status", "Currency", "Total", "Paid", "Remaining", "Balance due", "Created",
}

// ExportWorkbook builds the admin spreadsheet: one row per booking plus a per-status summary sheet.
func ExportWorkbook(items []Booking) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(exportSheet, "A1", last, headerStyle)

	counts := map[Status]int{}
	for i, b := range items {
		counts[b.Status]++
		var remaining, due any
		if d := b.PartialPaymentDetails; d != nil {
			remaining = d.RemainingAmount.InexactFloat64()
			if !d.FinalPaymentDueDate.IsZero() {
				due = d.FinalPaymentDueDate.Format("2006-01-02")
			}
		}
		row := []any{
			b.Reference,
			b.TrekName,
			b.TrekStartDate.Format("2006-01-02"),
			b.UserEmail,
			b.ParticipantCount,
			Classify(string(b.Status)).Label,
			string(b.PaymentMode),
			string(b.PaymentStatus),
			b.Currency,
			b.TotalPrice.InexactFloat64(),
			b.AmountPaid.InexactFloat64(),
			remaining,
			due,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "N", 16)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(summarySheet, "A1", "Status")
	_ = f.SetCellValue(summarySheet, "B1", "Bookings")
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, s := range Statuses() {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), Classify(string(s)).Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), counts[s])
	}
	_ = f.SetColWidth(summarySheet, "A", "B", 24)

	return f, nil
}
