package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/restql/internal/domain/query/request"
)

// filtersPrefix marks qs-style filter params: filters[name][$eq]=John.
const filtersPrefix = "filters"

// ListParams are the query parameters of the query, search and count endpoints.
type ListParams struct {
	Filter *string
	Sort   *string
	Search *string
	Fields *[]string
	Before *string
	After  *string
	Limit  *int
}

// FieldsParams are the query parameters of the fields endpoint.
type FieldsParams struct {
	Depth *int
}

type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

func bindQuery(q url.Values, name string, explode bool, dest any) error {
	if err := runtime.BindQueryParameter("form", explode, false, name, q, dest); err != nil {
		return &paramError{name: name, err: err}
	}
	return nil
}

func bindTypeName(r *http.Request) (string, error) {
	var typeName string
	err := runtime.BindStyledParameterWithOptions("simple", "type", chi.URLParam(r, "type"), &typeName,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", &paramError{name: "type", err: err}
	}
	return typeName, nil
}

func bindListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	var p ListParams
	binds := []struct {
		name    string
		explode bool
		dest    any
	}{
		{"filter", true, &p.Filter},
		{"sort", true, &p.Sort},
		{"search", true, &p.Search},
		{"fields", false, &p.Fields},
		{"before", true, &p.Before},
		{"after", true, &p.After},
		{"limit", true, &p.Limit},
	}
	for _, b := range binds {
		if err := bindQuery(q, b.name, b.explode, b.dest); err != nil {
			return ListParams{}, err
		}
	}
	return p, nil
}

func bindFieldsParams(r *http.Request) (FieldsParams, error) {
	var p FieldsParams
	if err := bindQuery(r.URL.Query(), "depth", true, &p.Depth); err != nil {
		return FieldsParams{}, err
	}
	return p, nil
}

// toRequest merges the filter string with qs-style filters and normalizes limits.
// The first separator joins clauses.
func (p ListParams) toRequest(q url.Values, separators string, defaultLimit, maxLimit int) (request.Request, error) {
	filters := bracketFilters(q, separators)
	if p.Filter != nil && strings.TrimSpace(*p.Filter) != "" {
		filters = append([]string{*p.Filter}, filters...)
	}
	params := request.Params{
		Filter: strings.Join(filters, separators[:1]),
		Sort:   deref(p.Sort),
		Search: deref(p.Search),
		Before: deref(p.Before),
		After:  deref(p.After),
	}
	if p.Fields != nil {
		params.SearchFields = *p.Fields
	}
	if p.Limit != nil {
		params.Limit = *p.Limit
	}
	return request.New(params, defaultLimit, maxLimit)
}

// bracketFilters rewrites filters[a][$eq]=v params into bracket-form clauses. Keys are
// sorted so the compiled output is stable; values are escaped against separators.
func bracketFilters(q url.Values, separators string) []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if strings.HasPrefix(k, filtersPrefix+"[") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	escaper := escaperFor(separators)
	var out []string
	for _, k := range keys {
		key := strings.TrimPrefix(k, filtersPrefix)
		for _, v := range q[k] {
			out = append(out, key+"="+escaper.Replace(v))
		}
	}
	return out
}

func escaperFor(separators string) *strings.Replacer {
	pairs := []string{`\`, `\\`}
	for _, r := range separators {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
