// Package clause holds tokenized filter clauses and the lexer that produces them.
package clause

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/operator"
)

// Clause is one filter expression split into ordered tokens. The last token is the
// literal operand.
type Clause struct {
	raw    string
	tokens []string
}

// New creates a Clause from already split tokens.
func New(raw string, tokens []string) Clause {
	return Clause{raw: raw, tokens: append([]string(nil), tokens...)}
}

// Raw returns the clause as written.
func (c Clause) Raw() string { return c.raw }

// Len returns the number of tokens including the operand.
func (c Clause) Len() int { return len(c.tokens) }

// Tokens returns every token in source order.
func (c Clause) Tokens() []string { return append([]string(nil), c.tokens...) }

// Value returns the literal operand (the final token).
func (c Clause) Value() string {
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[len(c.tokens)-1]
}

// CleanKey returns the tokens without the literal operand. Positional indices stay.
func (c Clause) CleanKey() []string {
	if len(c.tokens) == 0 {
		return nil
	}
	return append([]string(nil), c.tokens[:len(c.tokens)-1]...)
}

// NormalizedKey joins the clean key with dots, lowercased. Field and operator
// lookups ignore case, so two clauses with the same normalized key filter the same slot.
func (c Clause) NormalizedKey() string {
	return strings.ToLower(strings.Join(c.CleanKey(), "."))
}

// FieldPath returns the clean key without operators and their positional indices.
func (c Clause) FieldPath() []string {
	key := c.CleanKey()
	out := make([]string, 0, len(key))
	for i := 0; i < len(key); i++ {
		op, ok := operator.Parse(key[i])
		if !ok {
			out = append(out, key[i])
			continue
		}
		if (op.IsArray() || op.IsLogical()) && i+1 < len(key) && IsPosition(key[i+1]) {
			i++
		}
	}
	return out
}

// Field returns FieldPath joined with dots.
func (c Clause) Field() string { return strings.Join(c.FieldPath(), ".") }

// IsPosition reports whether tok is a non-negative integer literal.
func IsPosition(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Position parses a positional index token. ok is false for non-positions.
func Position(tok string) (int, bool) {
	if !IsPosition(tok) {
		return 0, false
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}
