// Package request holds the raw query parameters of one list request.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/cursor"
)

// Request parameter limits.
const (
	// MaxKeywordLength is the maximum allowed search keyword length.
	MaxKeywordLength = 1024
	DefaultLimit     = 20
	MaxLimit         = 100
)

// Request is a normalized list request: filter, sort, search and cursor strings.
type Request struct {
	filter       string
	sort         string
	search       string
	searchFields []string
	cursor       cursor.Pair
	limit        int
}

// Params are the raw inputs of New.
type Params struct {
	Filter       string
	Sort         string
	Search       string
	SearchFields []string
	Before       string
	After        string
	Limit        int
}

// New normalizes request parameters. Limit defaults to defaultLimit and is clamped to
// maxLimit (package defaults when <= 0).
func New(p Params, defaultLimit, maxLimit int) (Request, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	search := strings.TrimSpace(p.Search)
	if len(search) > MaxKeywordLength {
		return Request{}, fmt.Errorf("search keyword too long (max %d chars)", MaxKeywordLength)
	}
	if p.Limit < 0 {
		return Request{}, fmt.Errorf("limit must not be negative")
	}
	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var fields []string
	for _, f := range p.SearchFields {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				fields = append(fields, part)
			}
		}
	}

	return Request{
		filter:       strings.TrimSpace(p.Filter),
		sort:         strings.TrimSpace(p.Sort),
		search:       search,
		searchFields: fields,
		cursor:       cursor.Pair{Before: p.Before, After: p.After},
		limit:        limit,
	}, nil
}

// Filter returns the raw filter string.
func (r Request) Filter() string { return r.filter }

// Sort returns the raw sort string.
func (r Request) Sort() string { return r.sort }

// Search returns the trimmed full-text keyword.
func (r Request) Search() string { return r.search }

// SearchFields returns explicit search fields (empty means every text field).
func (r Request) SearchFields() []string { return append([]string(nil), r.searchFields...) }

// Cursor returns the before/after pair.
func (r Request) Cursor() cursor.Pair { return r.cursor }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }
