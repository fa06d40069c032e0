package compile

import (
	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/query/sortkey"
)

// Compiled is a validated, backend-neutral list query.
type Compiled struct {
	typeName    string
	index       string
	filter      node.Node
	search      node.Node
	query       node.Node
	sort        []sortkey.Key
	limit       int
	searchAfter []any
	backward    bool
	clauses     int
}

// Type returns the record type name.
func (c *Compiled) Type() string { return c.typeName }

// Index returns the backend index of the type, "" when the shape declares none.
func (c *Compiled) Index() string { return c.index }

// Filter returns the compiled filter tree.
func (c *Compiled) Filter() node.Node { return c.filter }

// SearchNode returns the compiled full-text tree.
func (c *Compiled) SearchNode() node.Node { return c.search }

// Query returns filter AND search, simplified.
func (c *Compiled) Query() node.Node { return c.query }

// Sort returns a copy of the sort keys.
func (c *Compiled) Sort() []sortkey.Key { return append([]sortkey.Key(nil), c.sort...) }

// Limit returns the page size.
func (c *Compiled) Limit() int { return c.limit }

// SearchAfter returns the decoded cursor values.
func (c *Compiled) SearchAfter() []any { return append([]any(nil), c.searchAfter...) }

// Backward reports paging with a before-cursor.
func (c *Compiled) Backward() bool { return c.backward }

// Clauses returns the number of filter clauses compiled.
func (c *Compiled) Clauses() int { return c.clauses }
