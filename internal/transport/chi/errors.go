package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/restql/internal/domain"
	"github.com/kailas-cloud/restql/internal/domain/violation"
	"github.com/kailas-cloud/restql/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		violationHandler,
		sentinelHandler(domain.ErrTypeNotFound, http.StatusNotFound, CodeTypeNotFound),
		sentinelHandler(domain.ErrUnknownField, http.StatusNotFound, CodeUnknownField),
		sentinelHandler(domain.ErrExecutorNotConfigured, http.StatusNotImplemented, CodeNotImplemented),
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrTypeNotFound,
		domain.ErrUnknownField,
		domain.ErrExecutorNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, _ *http.Request, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// violationHandler replies 400 with every violation, localized by Accept-Language.
func violationHandler(w http.ResponseWriter, r *http.Request, err error, msg string) bool {
	vs, ok := violation.From(err)
	if !ok {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:       CodeInvalidQuery,
		Message:    msg,
		Violations: violationsToItems(vs, violation.Language(r.Header.Get("Accept-Language"))),
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, r, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
