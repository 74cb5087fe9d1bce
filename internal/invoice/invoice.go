package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

type Participant struct {
	Name   string
	Age    int
	Gender string
}

type Partial struct {
	Initial   decimal.Decimal
	Remaining decimal.Decimal
	DueDate   time.Time
}

// Data is everything printed on a booking invoice.
type Data struct {
	Reference     string
	IssuedAt      time.Time
	CustomerEmail string
	TrekName      string
	TrekStartDate time.Time
	Status        string
	Currency      string
	Participants  []Participant
	TotalPrice    decimal.Decimal
	AmountPaid    decimal.Decimal
	Partial       *Partial
	SupportEmail  string
}

func Filename(reference string) string {
	return "invoice-" + strings.ToLower(reference) + ".pdf"
}

// Build renders the invoice as an A4 PDF.
func Build(d Data) ([]byte, string, error) {
	if strings.TrimSpace(d.Reference) == "" {
		return nil, "", fmt.Errorf("invoice: missing booking reference")
	}
	if d.IssuedAt.IsZero() {
		d.IssuedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+d.Reference, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Booking reference", d.Reference)
	line("Issued", d.IssuedAt.Format("2006-01-02 15:04"))
	line("Billed to", safe(d.CustomerEmail, "-"))
	line("Trek", safe(d.TrekName, "-"))
	if !d.TrekStartDate.IsZero() {
		line("Start date", d.TrekStartDate.Format("2006-01-02"))
	}
	line("Status", safe(d.Status, "-"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Participants")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(100, 7, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Age", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Gender", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(d.Participants) == 0 {
		pdf.CellFormat(170, 7, "Participant details not submitted yet", "1", 1, "L", false, 0, "")
	}
	for i, p := range d.Participants {
		pdf.CellFormat(10, 7, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(100, 7, tr(p.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(p.Age), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, p.Gender, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	amount := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(110, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 7, FormatMoney(d.Currency, v), "", 1, "R", false, 0, "")
	}
	amount("Total", d.TotalPrice, true)
	amount("Paid", d.AmountPaid, false)
	if d.Partial != nil {
		amount("Initial payment", d.Partial.Initial, false)
		amount("Balance due", d.Partial.Remaining, true)
		if !d.Partial.DueDate.IsZero() && d.Partial.Remaining.GreaterThan(decimal.Zero) {
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(170, 7, "Balance due by "+d.Partial.DueDate.Format("2006-01-02"), "", 1, "R", false, 0, "")
		}
	} else {
		due := d.TotalPrice.Sub(d.AmountPaid)
		if due.LessThan(decimal.Zero) {
			due = decimal.Zero
		}
		amount("Balance due", due, true)
	}

	if d.SupportEmail != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Questions about this invoice? Write to "+d.SupportEmail+".", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("invoice: render: %w", err)
	}
	return buf.Bytes(), Filename(d.Reference), nil
}

// FormatMoney renders v as "INR 12,345.00".
func FormatMoney(currency string, v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
