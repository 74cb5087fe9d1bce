package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trekbooking/internal/api"
	"trekbooking/internal/booking"
)

func TestClient_SendsTokenPerCall(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/bookings/user/mybookings", r.URL.Path)
		assert.Equal(t, "confirmed", r.URL.Query().Get("status"))
		b := booking.Booking{ID: "b-1", Status: booking.StatusConfirmed}
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": []booking.Item{{Booking: b, View: booking.ViewOf(b)}}})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	items, err := c.MyBookings(context.Background(), "tok-a", "confirmed")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bg-green-100 text-green-800", items[0].View.Badge.BadgeClass)

	_, err = c.MyBookings(context.Background(), "tok-b", "confirmed")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer tok-a", "Bearer tok-b"}, seen)
}

func TestClient_DecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var p booking.AdminPatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		require.NotNil(t, p.ExpectedStatus)
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", "invalid state transition: trek_completed -> pending_payment")
	}))
	defer srv.Close()

	status, expected := "pending_payment", "trek_completed"
	_, err := New(srv.URL).AdminUpdateBooking(context.Background(), "admin", "b-1", booking.AdminPatch{Status: &status, ExpectedStatus: &expected})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", apiErr.Code)
}

func TestClient_Invoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="invoice-trk-1.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.3 test"))
	}))
	defer srv.Close()

	b, name, err := New(srv.URL).Invoice(context.Background(), "tok", "b-1")
	require.NoError(t, err)
	assert.Equal(t, "invoice-trk-1.pdf", name)
	assert.Equal(t, "%PDF-1.3 test", string(b))
}

func TestClient_NoTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	treks, err := New(srv.URL).Treks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, treks)
}
