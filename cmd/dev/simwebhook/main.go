package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"trekbooking/internal/webhook"
	"trekbooking/pkg/config"
)

func main() {
	cfg := config.Load()

	var (
		url     = flag.String("url", "", "webhook endpoint url (defaults to http://localhost<HTTP_ADDR>/v1/webhooks/payments/<topic>)")
		topic   = flag.String("topic", "payment.succeeded", "X-Payment-Topic header value")
		secret  = flag.String("secret", cfg.Payments.WebhookSecret, "PAYMENT_WEBHOOK_SECRET")
		payload = flag.String("payload", "", "path to json payload file")
		eventID = flag.String("id", "", "optional X-Payment-Event-Id header value")
	)
	flag.Parse()

	if *url == "" {
		addr := cfg.HTTPAddr
		if !strings.HasPrefix(addr, ":") {
			addr = ":8081"
		}
		*url = "http://localhost" + addr + "/v1/webhooks/payments/" + webhook.NormalizeTopic(*topic)
	}

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret")
		os.Exit(2)
	}
	if *payload == "" {
		fmt.Fprintln(os.Stderr, "missing -payload")
		os.Exit(2)
	}

	b, err := os.ReadFile(*payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
		os.Exit(2)
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(b))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Payment-Topic", *topic)
	req.Header.Set("X-Payment-Signature", webhook.Sign(b, *secret))
	if *eventID != "" {
		req.Header.Set("X-Payment-Event-Id", *eventID)
	}

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(body))
}
