package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/restql/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys pass through", nil, "/types", "", http.StatusOK},
		{"empty string keys pass through", []string{"", ""}, "/types", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/types", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/types", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/types", "Bearer wrong-key", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/types", "Bearer secret", http.StatusOK},
		{"second key", []string{"key1", "key2"}, "/types", "Bearer key2", http.StatusOK},
		{"exempt health", []string{"secret"}, "/health", "", http.StatusOK},
		{"exempt metrics", []string{"secret"}, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if resp := decodeError(t, rr); resp.Code != CodeUnauthorized {
					t.Errorf("code = %s", resp.Code)
				}
			}
		})
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()
	JSONRecoverer(zap.NewNop())(panicking).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var fromCtx bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
		fromCtx = true
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/types?x=1", http.NoBody))

	if !fromCtx || rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing: %v", rr.Header())
	}
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 canonical line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["query"] != "x=1" {
		t.Errorf("fields = %v", fields)
	}
	if logs.FilterMessage("inside").FilterFieldKey("request_id").Len() != 1 {
		t.Error("request logger should carry request_id")
	}
}
