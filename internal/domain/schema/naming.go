package schema

import "github.com/huandu/xstrings"

// WireName converts a declared property name to the camelCase wire convention.
func WireName(name string) string {
	return xstrings.FirstRuneToLower(xstrings.ToCamelCase(name))
}
