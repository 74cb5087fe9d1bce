package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trekbooking/internal/booking"
	"trekbooking/internal/events"
	"trekbooking/internal/payment"
	"trekbooking/internal/trek"
)

// Client calls the booking API. It holds no credentials; every authenticated call takes the
// caller's bearer token.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusQuery(status string) string {
	if status == "" {
		return ""
	}
	return "?status=" + url.QueryEscape(status)
}

func (c *Client) MyBookings(ctx context.Context, token, status string) ([]booking.Item, error) {
	var out struct {
		Items []booking.Item `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/bookings/user/mybookings"+statusQuery(status), token, nil, &out)
	return out.Items, err
}

type Summary struct {
	Total      int                    `json:"total"`
	Counts     map[booking.Status]int `json:"counts"`
	Actionable []booking.Item         `json:"actionable"`
}

func (c *Client) Summary(ctx context.Context, token string) (Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/v1/bookings/user/summary", token, nil, &out)
	return out, err
}

type BookingDetail struct {
	Booking  booking.Booking  `json:"booking"`
	View     booking.View     `json:"view"`
	Payments []payment.Record `json:"payments"`
	Events   []events.Event   `json:"events,omitempty"`
}

func (c *Client) Booking(ctx context.Context, token, id string) (BookingDetail, error) {
	var out BookingDetail
	err := c.do(ctx, http.MethodGet, "/v1/bookings/"+url.PathEscape(id), token, nil, &out)
	return out, err
}

func (c *Client) CreateBooking(ctx context.Context, token string, req booking.CreateRequest) (booking.Item, error) {
	var out booking.Item
	err := c.do(ctx, http.MethodPost, "/v1/bookings", token, req, &out)
	return out, err
}

func (c *Client) UpdateParticipants(ctx context.Context, token, id string, list []booking.Participant) (booking.Item, error) {
	var out booking.Item
	err := c.do(ctx, http.MethodPut, "/v1/bookings/"+url.PathEscape(id)+"/participants", token, booking.ParticipantsRequest{Participants: list}, &out)
	return out, err
}

func (c *Client) CancelBooking(ctx context.Context, token, id string) (booking.Item, error) {
	var out booking.Item
	err := c.do(ctx, http.MethodPost, "/v1/bookings/"+url.PathEscape(id)+"/cancel", token, nil, &out)
	return out, err
}

// Invoice downloads the booking's PDF invoice and the filename the server suggests.
func (c *Client) Invoice(ctx context.Context, token, id string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/bookings/"+url.PathEscape(id)+"/invoice", token, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := c.send(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	filename := "invoice.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return b, filename, nil
}

func (c *Client) Treks(ctx context.Context) ([]trek.Trek, error) {
	var out struct {
		Items []trek.Trek `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/treks", "", nil, &out)
	return out.Items, err
}

func (c *Client) UpsertTrek(ctx context.Context, token, slug string, req trek.PutRequest) (trek.Trek, error) {
	var out struct {
		Trek trek.Trek `json:"trek"`
	}
	err := c.do(ctx, http.MethodPut, "/v1/admin/treks/"+url.PathEscape(slug), token, req, &out)
	return out.Trek, err
}

func (c *Client) AdminBookings(ctx context.Context, token, status string) ([]booking.Item, error) {
	var out struct {
		Items []booking.Item `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/admin/bookings"+statusQuery(status), token, nil, &out)
	return out.Items, err
}

func (c *Client) AdminBooking(ctx context.Context, token, id string) (BookingDetail, error) {
	var out BookingDetail
	err := c.do(ctx, http.MethodGet, "/v1/admin/bookings/"+url.PathEscape(id), token, nil, &out)
	return out, err
}

// AdminUpdateBooking applies an admin edit. Set patch.ExpectedStatus to make the write
// conditional on the status last shown to the admin.
func (c *Client) AdminUpdateBooking(ctx context.Context, token, id string, patch booking.AdminPatch) (booking.Item, error) {
	var out booking.Item
	err := c.do(ctx, http.MethodPatch, "/v1/admin/bookings/"+url.PathEscape(id), token, patch, &out)
	return out, err
}
