// Package chi serves the query inspection HTTP surface.
package chi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restql/internal/domain/query/clause"
	"github.com/kailas-cloud/restql/internal/domain/query/request"
	"github.com/kailas-cloud/restql/internal/logger"
	"github.com/kailas-cloud/restql/internal/render/elastic"
	compileuc "github.com/kailas-cloud/restql/internal/usecase/compile"
	healthuc "github.com/kailas-cloud/restql/internal/usecase/health"
)

// Limits bound list requests.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	// Separators must match the compiler's clause separators.
	Separators string
}

// Server handles the inspection endpoints.
type Server struct {
	compiler      *compileuc.Service
	health        *healthuc.Service
	limits        Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(compiler *compileuc.Service, health *healthuc.Service, limits Limits) *Server {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = request.DefaultLimit
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = request.MaxLimit
	}
	if limits.Separators == "" {
		limits.Separators = clause.DefaultSeparators
	}
	return &Server{
		compiler:      compiler,
		health:        health,
		limits:        limits,
		errorHandlers: defaultErrorHandlers(),
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TypesResponse{Items: s.compiler.Types()})
}

// ListFields handles GET /types/{type}/fields.
func (s *Server) ListFields(w http.ResponseWriter, r *http.Request) {
	typeName, err := bindTypeName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	params, err := bindFieldsParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	depth := -1
	if params.Depth != nil {
		depth = *params.Depth
	}
	paths, err := s.compiler.Fields(typeName, depth)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Type: typeName, Depth: depth, Items: fieldsToItems(paths)})
}

// CompileQuery handles GET /types/{type}/query. It returns the compiled tree and the
// Elasticsearch request body without executing anything.
func (s *Server) CompileQuery(w http.ResponseWriter, r *http.Request) {
	typeName, req, ok := s.listRequest(w, r)
	if !ok {
		return
	}
	ctx := logger.With(r.Context(), zap.String("type", typeName))

	c, err := s.compiler.Compile(ctx, typeName, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	body, err := elastic.Body(c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Type:  c.Type(),
		Index: c.Index(),
		Query: c.Query().String(),
		Limit: c.Limit(),
		Body:  body,
	})
}

// SearchDocuments handles GET /types/{type}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	typeName, req, ok := s.listRequest(w, r)
	if !ok {
		return
	}
	ctx := logger.With(r.Context(), zap.String("type", typeName))

	rs, err := s.compiler.Search(ctx, typeName, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if rs.Hits == nil {
		rs.Hits = []compileuc.Hit{}
	}
	writeJSON(w, http.StatusOK, rs)
}

// CountDocuments handles GET /types/{type}/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request) {
	typeName, req, ok := s.listRequest(w, r)
	if !ok {
		return
	}
	ctx := logger.With(r.Context(), zap.String("type", typeName))

	n, err := s.compiler.Count(ctx, typeName, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (s *Server) listRequest(w http.ResponseWriter, r *http.Request) (string, request.Request, bool) {
	typeName, err := bindTypeName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return "", request.Request{}, false
	}
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return "", request.Request{}, false
	}
	req, err := params.toRequest(r.URL.Query(), s.limits.Separators, s.limits.DefaultPageSize, s.limits.MaxPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request: "+err.Error())
		return "", request.Request{}, false
	}
	return typeName, req, true
}
