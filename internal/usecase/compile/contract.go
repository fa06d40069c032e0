package compile

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/restql/internal/domain/schema"
)

// SchemaSource looks record shapes up by type name.
type SchemaSource interface {
	Lookup(name string) (schema.Shape, error)
	Names() []string
}

// Executor runs compiled queries against a search backend.
type Executor interface {
	Search(ctx context.Context, q *Compiled) (ResultSet, error)
	Count(ctx context.Context, q *Compiled) (int64, error)
}

// Hit is one matched document.
type Hit struct {
	ID     string          `json:"id"`
	Source json.RawMessage `json:"source"`
	// Sort holds the hit's sort values; the page cursors are built from them.
	Sort []any `json:"sort,omitempty"`
}

// ResultSet is one page of matches.
type ResultSet struct {
	Hits  []Hit  `json:"hits"`
	Total int64  `json:"total"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}
