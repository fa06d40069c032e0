// Package cursor holds opaque pagination cursors.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Pair carries the mutually exclusive before/after cursors of one request.
type Pair struct {
	Before string
	After  string
}

// IsEmpty reports whether neither direction is set.
func (p Pair) IsEmpty() bool {
	return strings.TrimSpace(p.Before) == "" && strings.TrimSpace(p.After) == ""
}

// Conflicting reports whether both directions are set.
func (p Pair) Conflicting() bool {
	return strings.TrimSpace(p.Before) != "" && strings.TrimSpace(p.After) != ""
}

// Token returns the set cursor and whether it pages backwards.
func (p Pair) Token() (token string, backward bool) {
	if b := strings.TrimSpace(p.Before); b != "" {
		return b, true
	}
	return strings.TrimSpace(p.After), false
}

// Encode turns the sort values of the last returned hit into a cursor token.
func Encode(values []any) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode.
func Decode(token string) ([]any, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var values []any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("cursor carries no sort values")
	}
	return values, nil
}
