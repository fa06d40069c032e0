package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restql/internal/metrics"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	Logger  *zap.Logger
	APIKeys []string
}

// NewRouter mounts the server endpoints behind the standard middleware stack.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(log))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/types", func(r chi.Router) {
		r.Get("/", s.ListTypes)
		r.Route("/{type}", func(r chi.Router) {
			r.Get("/fields", s.ListFields)
			r.Get("/query", s.CompileQuery)
			r.Get("/search", s.SearchDocuments)
			r.Get("/count", s.CountDocuments)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}
