package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trekbooking/internal/booking"
	"trekbooking/internal/trek"
	"trekbooking/internal/webhook"
	"trekbooking/pkg/authtoken"
	"trekbooking/pkg/client"
	"trekbooking/pkg/config"
)

// devflow drives one partial-payment booking through the running API:
// seed a trek, book it as a fresh user, pay the initial installment via the webhook,
// then print what the traveller's screens would render.
func main() {
	var (
		baseURL = flag.String("base-url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		slug    = flag.String("slug", "devflow-kedarkantha", "trek slug to seed")
		people  = flag.Int("participants", 2, "participant count")
		pay     = flag.String("pay", "", "amount for the initial payment webhook (defaults to the booking's initial amount)")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" || cfg.Payments.WebhookSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET and PAYMENT_WEBHOOK_SECRET must be set (env or .env)")
		os.Exit(2)
	}
	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}

	ctx := context.Background()
	api := client.New(*baseURL)
	minter := authtoken.Verifier{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}

	adminToken, err := minter.Issue(uuid.New(), "admin@example.com", authtoken.RoleAdmin, time.Hour, time.Now())
	must("mint admin token", err)
	userToken, err := minter.Issue(uuid.New(), "traveller@example.com", authtoken.RoleUser, time.Hour, time.Now())
	must("mint user token", err)

	t, err := api.UpsertTrek(ctx, adminToken, *slug, trek.PutRequest{
		Name:          "Kedarkantha Winter (devflow)",
		Region:        "Uttarakhand",
		Price:         decimal.NewFromInt(12000),
		StartDate:     time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
		DurationDays:  6,
		PaymentConfig: json.RawMessage(`{"version":1,"allowPartial":true,"initialPercent":30}`),
		CustomFields:  []trek.CustomField{{Key: "emergencyContact", Label: "Emergency contact", Required: true}},
	})
	must("seed trek", err)
	fmt.Printf("trek id=%s slug=%s price=%s\n", t.ID, t.Slug, t.Price.StringFixed(2))

	created, err := api.CreateBooking(ctx, userToken, booking.CreateRequest{
		TrekID:           t.ID,
		ParticipantCount: *people,
		PaymentMode:      string(booking.PaymentModePartial),
	})
	must("create booking", err)
	b := created.Booking
	fmt.Printf("booking id=%s ref=%s status=%s total=%s\n", b.ID, b.Reference, b.Status, b.TotalPrice.StringFixed(2))
	printView(created.View)

	if b.PartialPaymentDetails == nil {
		fmt.Fprintln(os.Stderr, "booking came back without a partial payment plan")
		os.Exit(1)
	}
	amount := b.PartialPaymentDetails.InitialAmount
	if *pay != "" {
		amount, err = decimal.NewFromString(*pay)
		must("parse -pay", err)
	}
	body, _ := json.Marshal(map[string]any{
		"id":         "devflow-" + uuid.NewString()[:8],
		"booking_id": b.ID,
		"kind":       "initial",
		"amount":     amount.StringFixed(2),
		"currency":   b.Currency,
	})
	postWebhook(*baseURL, cfg.Payments.WebhookSecret, body)

	detail, err := api.Booking(ctx, userToken, b.ID)
	must("reload booking", err)
	fmt.Printf("after payment: status=%s paid=%s\n", detail.Booking.Status, detail.Booking.AmountPaid.StringFixed(2))
	if d := detail.Booking.PartialPaymentDetails; d != nil {
		fmt.Printf("  remaining=%s due=%s\n", d.RemainingAmount.StringFixed(2), d.FinalPaymentDueDate.Format("2006-01-02"))
	}
	printView(detail.View)
}

func printView(v booking.View) {
	fmt.Printf("  badge=%q (%s)\n", v.Badge.Label, v.Badge.BadgeClass)
	fmt.Printf("  progress=%d/%d %s\n", v.Progress.Step, v.Progress.Total, v.Progress.Label)
	if v.ResumeAction != nil {
		fmt.Printf("  next: %s -> %s\n", v.ResumeAction.Text, v.ResumeAction.Link)
	}
	fmt.Printf("  admin can move to: %v\n", v.NextStatuses)
}

func postWebhook(baseURL, secret string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/webhooks/payments/payment_succeeded", bytes.NewReader(body))
	must("new webhook request", err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Payment-Signature", webhook.Sign(body, secret))
	req.Header.Set("X-Payment-Event-Id", "devflow-"+uuid.NewString())

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post webhook: %v\n", err)
		fmt.Fprintf(os.Stderr, "tip: is the API running, and is HTTP_ADDR set correctly? base_url=%s\n", baseURL)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "webhook status=%d body=%s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
}

func defaultBaseURL(httpAddr string) string {
	// httpAddr is typically ":8081" or "0.0.0.0:8081".
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "http://localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr
}

func must(step string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
		os.Exit(1)
	}
}
