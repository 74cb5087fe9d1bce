package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trekbooking/pkg/authtoken"
	"trekbooking/pkg/config"
)

func testRouter() http.Handler {
	return NewRouter(Dependencies{Cfg: config.Config{
		AppEnv:             "test",
		CORSAllowedOrigins: []string{"https://treks.example.com"},
		Auth:               config.AuthConfig{JWTSecret: "router_secret"},
		Payments:           config.PaymentsConfig{WebhookSecret: "whsec"},
	}})
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_BookingsRequireToken(t *testing.T) {
	for _, path := range []string{"/v1/bookings/user/mybookings", "/v1/bookings/user/summary", "/v1/admin/bookings"} {
		rec := httptest.NewRecorder()
		testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	tok, err := authtoken.Verifier{Secret: "router_secret"}.Issue(uuid.New(), "u@example.com", authtoken.RoleUser, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/bookings/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_WebhookRejectsUnsigned(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/payment_succeeded", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/bookings/user/mybookings", nil)
	req.Header.Set("Origin", "https://treks.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, "https://treks.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
