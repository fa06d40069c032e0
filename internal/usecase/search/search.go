// Package search compiles a free-text keyword into a query over every searchable text
// field of a shape, scoping nested collections.
package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/schema"
)

// DefaultDepth is the schema depth searched when none is configured.
const DefaultDepth = 1

// PathResolver lists the string-valued paths of a shape.
type PathResolver interface {
	Resolve(shape schema.Shape, maxDepth int) []schema.Path
}

// Translator compiles search keywords.
type Translator struct {
	paths PathResolver
}

// New creates a Translator.
func New(paths PathResolver) *Translator {
	return &Translator{paths: paths}
}

// Compile searches keyword across every text path of root within maxDepth.
func (t *Translator) Compile(keyword string, root schema.Shape, maxDepth int) (node.Node, error) {
	if strings.TrimSpace(keyword) == "" {
		return node.MatchAll(), nil
	}
	return CompileFields(keyword, t.paths.Resolve(root, maxDepth))
}

// CompileFields searches keyword across the given paths. Non-text paths are ignored.
//
// Top-level paths form one OR of a multi-field match and a prefix per field. Nested
// paths are grouped by parent; each group forms the same OR, wrapped in one nested scope
// per collection crossed. The result ORs the top-level group with every nested group.
func CompileFields(keyword string, paths []schema.Path) (node.Node, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return node.MatchAll(), nil
	}

	text := lo.Filter(paths, func(p schema.Path, _ int) bool { return p.Kind.IsText() })
	if len(text) == 0 {
		return node.MatchAll(), nil
	}

	var alternatives []node.Node
	top := lo.Filter(text, func(p schema.Path, _ int) bool { return p.IsTopLevel() })
	if len(top) > 0 {
		alternatives = append(alternatives, match(keyword, top))
	}

	groups := lo.GroupBy(
		lo.Filter(text, func(p schema.Path, _ int) bool { return !p.IsTopLevel() }),
		func(p schema.Path) string { return p.Parent() },
	)
	prefixes := lo.Keys(groups)
	slices.Sort(prefixes)

	for _, prefix := range prefixes {
		group := groups[prefix]
		scoped, err := node.Wrap(match(keyword, group), group[0].ScopesFor(prefix))
		if err != nil {
			return nil, fmt.Errorf("scope search group %s: %w", prefix, err)
		}
		alternatives = append(alternatives, scoped)
	}

	return node.Or(alternatives...), nil
}

func match(keyword string, paths []schema.Path) node.Node {
	names := lo.Map(paths, func(p schema.Path, _ int) string { return p.Name })
	children := make([]node.Node, 0, len(names)+1)
	children = append(children, node.NewMultiMatch(names, keyword))
	for _, name := range names {
		children = append(children, node.NewPrefix(name, keyword))
	}
	return node.Or(children...)
}
