package chi

import (
	"encoding/json"
	"net/http"

	"github.com/kailas-cloud/restql/internal/domain/schema"
	"github.com/kailas-cloud/restql/internal/domain/violation"
)

// ErrorCode is the machine readable error class of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest     ErrorCode = "bad_request"
	CodeInvalidQuery   ErrorCode = "invalid_query"
	CodeTypeNotFound   ErrorCode = "type_not_found"
	CodeUnknownField   ErrorCode = "unknown_field"
	CodeUnauthorized   ErrorCode = "unauthorized"
	CodeNotImplemented ErrorCode = "not_implemented"
	CodeInternalError  ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code       ErrorCode       `json:"code"`
	Message    string          `json:"message"`
	Violations []ViolationItem `json:"violations,omitempty"`
}

// ViolationItem is one localized violation.
type ViolationItem struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	Rule    string `json:"rule"`
	Clause  string `json:"clause,omitempty"`
}

// TypesResponse lists registered record types.
type TypesResponse struct {
	Items []string `json:"items"`
}

// FieldItem describes one resolvable path.
type FieldItem struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Container string   `json:"container"`
	Keyword   string   `json:"keyword,omitempty"`
	Scopes    []string `json:"scopes,omitempty"`
}

// FieldsResponse lists the paths of one type.
type FieldsResponse struct {
	Type  string      `json:"type"`
	Depth int         `json:"depth"`
	Items []FieldItem `json:"items"`
}

// QueryResponse shows a compiled request.
type QueryResponse struct {
	Type  string          `json:"type"`
	Index string          `json:"index"`
	Query string          `json:"query"`
	Limit int             `json:"limit"`
	Body  json.RawMessage `json:"body"`
}

// CountResponse carries the number of matches.
type CountResponse struct {
	Count int64 `json:"count"`
}

func fieldsToItems(paths []schema.Path) []FieldItem {
	items := make([]FieldItem, len(paths))
	for i, p := range paths {
		items[i] = FieldItem{
			Name:      p.Name,
			Kind:      string(p.Kind),
			Container: p.Container.String(),
			Keyword:   p.Keyword,
			Scopes:    p.Scopes,
		}
	}
	return items
}

func violationsToItems(vs []violation.Violation, lang string) []ViolationItem {
	items := make([]ViolationItem, len(vs))
	for i, v := range vs {
		items[i] = ViolationItem{
			Key:     v.Key(),
			Message: v.Message(lang),
			Rule:    string(v.Rule),
			Clause:  v.Clause,
		}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
