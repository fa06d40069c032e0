package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/types/{type}/query", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/types/{type}/fields", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/types", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()

	for _, name := range []string{"user", "order", "invoice"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/types/"+name+"/query", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/types/{type}/query", "200"))
	if got < 3 {
		t.Errorf("requests_total = %f, want >= 3", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, target, pattern, status string
	}{
		{"GET", "/types/user/fields", "/types/{type}/fields", "404"},
		{"POST", "/types", "/types", "405"},
		{"GET", "/missing", "unknown", "404"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, http.NoBody))
			got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.pattern, tt.status))
			if got < 1 {
				t.Errorf("requests_total{%s %s %s} = %f", tt.method, tt.pattern, tt.status, got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":                    "unknown",
		"/":                   "/",
		"/types/":             "/types",
		"/types/{type}/query": "/types/{type}/query",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterHTTPMetrics(reg)
	RegisterHTTPMetrics(reg)
	RegisterCompilerMetrics(reg)
	RegisterCompilerMetrics(reg)

	CompileTotal.WithLabelValues("user", "ok").Inc()
	if n, err := testutil.GatherAndCount(reg, "restql_compile_total"); err != nil || n == 0 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}
