package clause

import (
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/operator"
)

// DefaultSeparators split a filter string into clauses.
const DefaultSeparators = ";,"

const escape = '\\'

type lexer struct {
	separators string
}

// Option configures Tokenize.
type Option func(*lexer)

// WithSeparators overrides the clause separators.
func WithSeparators(seps string) Option {
	return func(l *lexer) {
		if seps != "" {
			l.separators = seps
		}
	}
}

// Tokenize splits a raw filter string into clauses. It accepts the dotted form
// (name.$eq.John) and the bracket form (name[$eq]=John), in any mix.
// No semantic validation happens here: malformed input still yields clauses.
func Tokenize(raw string, opts ...Option) []Clause {
	l := lexer{separators: DefaultSeparators}
	for _, opt := range opts {
		opt(&l)
	}

	var out []Clause
	for _, part := range l.splitClauses(raw) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, New(unescape(part), l.tokens(part)))
	}
	return out
}

// splitClauses cuts at unescaped separators outside brackets. Escapes are kept.
// Brackets only nest while the key is scanned: the key ends at a bracket-form '='
// or after a dotted comparison or array operator, and the literal that follows
// may hold any bracket.
func (l *lexer) splitClauses(raw string) []string {
	var (
		parts []string
		cur   strings.Builder
		seg   strings.Builder
		depth int
		inKey = true
	)
	reset := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		seg.Reset()
		depth = 0
		inKey = true
	}
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == escape && i+1 < len(runes):
			cur.WriteRune(r)
			cur.WriteRune(runes[i+1])
			seg.WriteRune(r)
			seg.WriteRune(runes[i+1])
			i++
			continue
		case inKey && r == '[':
			depth++
		case inKey && r == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.ContainsRune(l.separators, r):
			reset()
			continue
		case inKey && depth == 0 && r == '=':
			inKey = false
		case inKey && depth == 0 && r == '.':
			if op, ok := operator.Parse(unescape(seg.String())); ok && !op.IsLogical() {
				inKey = false
			}
			seg.Reset()
			cur.WriteRune(r)
			continue
		}
		cur.WriteRune(r)
		seg.WriteRune(r)
	}
	return append(parts, cur.String())
}

func (l *lexer) tokens(part string) []string {
	if key, value, ok := cutUnescaped(part, '='); ok && strings.ContainsRune(key, '[') {
		return append(splitBracketKey(key), unescape(value))
	}
	return splitDotted(part)
}

// splitDotted splits on unescaped dots until the operand starts: the remainder after a
// comparison operator (or after an array operator's index) is one token.
func splitDotted(part string) []string {
	var tokens []string
	rest := part
	for {
		seg, tail, more := cutUnescaped(rest, '.')
		tok := unescape(seg)
		tokens = append(tokens, tok)
		if !more {
			return tokens
		}
		op, isOp := operator.Parse(tok)
		switch {
		case isOp && op.IsArray():
			idx, after, hasAfter := cutUnescaped(tail, '.')
			if IsPosition(idx) && hasAfter {
				return append(tokens, idx, unescape(after))
			}
			return append(tokens, unescape(tail))
		case isOp && op.IsComparison():
			return append(tokens, unescape(tail))
		}
		rest = tail
	}
}

// splitBracketKey turns name[a][$eq] or [$or][0][name] into segments. Dots inside the key
// separate segments too.
func splitBracketKey(key string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(key)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == escape && i+1 < len(runes):
			cur.WriteRune(runes[i+1])
			i++
		case r == '[' || r == ']' || r == '.':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// cutUnescaped splits s around the first unescaped sep.
func cutUnescaped(s string, sep rune) (before, after string, found bool) {
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == escape:
			escaped = true
		case r == sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func unescape(s string) string {
	if !strings.ContainsRune(s, escape) {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == escape && i+1 < len(runes) {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
