package httpserver

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/paid-events-service/internal/config"
	"github.com/PratikDhanave/paid-events-service/internal/models"
	"github.com/PratikDhanave/paid-events-service/internal/store"
)

type stubStore struct {
	store.Store
	records []models.Record
}

func (s stubStore) Scan(context.Context, string) ([]models.Record, error) { return s.records, nil }
func (s stubStore) Ping(context.Context) error                            { return nil }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "RUN_ENVIRONMENT", "PORT", "LOG_LEVEL", "STORE_BACKEND",
		"AWS_REGION", "DYNAMO_ENDPOINT", "TICKET_EVENTS_TABLE", "MERCH_EVENTS_TABLE", "VALID_CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Setenv("RUN_ENVIRONMENT", "dev")
	t.Setenv("API_KEYS", "alice:k1")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func newServer(t *testing.T, logs io.Writer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := stubStore{records: []models.Record{{"event_id": models.String("a")}}}
	r, err := NewRouter(testConfig(t), st, slog.New(slog.NewJSONHandler(logs, nil)))
	require.NoError(t, err)
	return r
}

func TestRouterServesCollections(t *testing.T) {
	var logs bytes.Buffer
	r := newServer(t, &logs)

	for _, path := range []string{"/ticketevents", "/merchevents"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[{"event_id":"a"}]`, w.Body.String())
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.JSONEq(t, `{"message":"UP"}`, w.Body.String())
}

func TestRouterLogsCaller(t *testing.T) {
	var logs bytes.Buffer
	r := newServer(t, &logs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set("X-API-Key", "k1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, logs.String(), `"caller":"alice"`)

	logs.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Contains(t, logs.String(), `"caller":"`+config.AnonymousUser+`"`)
}

func TestRouterRecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	r := newServer(t, &logs)
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"message":"An internal server error occurred."}`, w.Body.String())
	assert.Contains(t, logs.String(), "kaboom")
}

func TestCORS(t *testing.T) {
	var logs bytes.Buffer
	r := newServer(t, &logs)

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{name: "exact origin", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllow: "http://localhost:3000"},
		{name: "pattern origin", method: http.MethodGet, origin: "https://preview-1.acmuiuc.pages.dev", wantStatus: http.StatusOK, wantAllow: "https://preview-1.acmuiuc.pages.dev"},
		{name: "unknown origin passes without headers", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "allowed preflight", method: http.MethodOptions, origin: "http://localhost:3000", preflight: true, wantStatus: http.StatusNoContent, wantAllow: "http://localhost:3000"},
		{name: "refused preflight", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/ticketevents", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
			if tc.preflight && tc.wantAllow != "" {
				assert.Equal(t, "GET, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "300", w.Header().Get("Access-Control-Max-Age"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
