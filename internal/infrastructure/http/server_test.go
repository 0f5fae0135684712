package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cadencehttp "github.com/cadencehq/cadence/internal/infrastructure/http"
)

func newTestServer(t *testing.T, cfg cadencehttp.ServerConfig) http.Handler {
	t.Helper()

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	return cadencehttp.NewAPIServer(echo, "secret-token", cfg).Handler()
}

func TestHealthEndpoint_NoAuthRequired(t *testing.T) {
	h := newTestServer(t, cadencehttp.ServerConfig{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRoutes_RejectMissingToken(t *testing.T) {
	h := newTestServer(t, cadencehttp.ServerConfig{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIRoutes_RejectWrongToken(t *testing.T) {
	h := newTestServer(t, cadencehttp.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer wrong")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIRoutes_AcceptValidToken(t *testing.T) {
	h := newTestServer(t, cadencehttp.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer secret-token")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestBody_OverLimitReturns413(t *testing.T) {
	h := newTestServer(t, cadencehttp.ServerConfig{MaxBodyBytes: 64})

	body := strings.NewReader(strings.Repeat("x", 128))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", body)
	req.Header.Set("Authorization", "Bearer secret-token")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
