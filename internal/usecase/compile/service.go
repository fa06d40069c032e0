// Package compile turns raw list request parameters into validated, compiled queries
// and hands them to a search executor.
package compile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/restql/internal/domain"
	"github.com/kailas-cloud/restql/internal/domain/query/clause"
	"github.com/kailas-cloud/restql/internal/domain/query/cursor"
	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/query/request"
	"github.com/kailas-cloud/restql/internal/domain/query/sortkey"
	"github.com/kailas-cloud/restql/internal/domain/schema"
	"github.com/kailas-cloud/restql/internal/domain/violation"
	"github.com/kailas-cloud/restql/internal/logger"
	"github.com/kailas-cloud/restql/internal/metrics"
	"github.com/kailas-cloud/restql/internal/usecase/filter"
	"github.com/kailas-cloud/restql/internal/usecase/resolve"
	"github.com/kailas-cloud/restql/internal/usecase/search"
	"github.com/kailas-cloud/restql/internal/usecase/sorting"
	"github.com/kailas-cloud/restql/internal/usecase/validate"
)

// Options tune compilation. Non-positive values select the defaults.
type Options struct {
	SearchDepth int
	FilterDepth int
	MaxClauses  int
	// Separators are the clause delimiters of the filter string.
	Separators string
}

// DefaultOptions returns the stock compilation options.
func DefaultOptions() Options {
	return Options{
		SearchDepth: search.DefaultDepth,
		FilterDepth: filter.DefaultDepth,
		MaxClauses:  validate.DefaultMaxClauses,
		Separators:  clause.DefaultSeparators,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SearchDepth <= 0 {
		o.SearchDepth = d.SearchDepth
	}
	if o.FilterDepth <= 0 {
		o.FilterDepth = d.FilterDepth
	}
	if o.MaxClauses <= 0 {
		o.MaxClauses = d.MaxClauses
	}
	if o.Separators == "" {
		o.Separators = d.Separators
	}
	return o
}

// Service compiles list requests.
type Service struct {
	schemas   SchemaSource
	exec      Executor
	resolver  *resolve.Resolver
	validator *validate.Validator
	filters   *filter.Translator
	sorts     *sorting.Translator
	search    *search.Translator
	opts      Options
}

// New creates a compile service. exec may be nil when only compilation is needed.
func New(schemas SchemaSource, exec Executor, resolver *resolve.Resolver, opts Options) *Service {
	if resolver == nil {
		resolver = resolve.New()
	}
	opts = opts.withDefaults()
	return &Service{
		schemas:  schemas,
		exec:     exec,
		resolver: resolver,
		validator: validate.New(resolver,
			validate.WithDepth(opts.FilterDepth),
			validate.WithMaxClauses(opts.MaxClauses),
		),
		filters: filter.New(resolver, opts.FilterDepth),
		sorts:   sorting.New(resolver, opts.FilterDepth),
		search:  search.New(resolver),
		opts:    opts,
	}
}

// Types lists the registered type names.
func (s *Service) Types() []string { return s.schemas.Names() }

// Fields lists every path of typeName within depth (the filter depth when depth < 0).
func (s *Service) Fields(typeName string, depth int) ([]schema.Path, error) {
	shape, err := s.schemas.Lookup(typeName)
	if err != nil {
		return nil, fmt.Errorf("lookup type: %w", err)
	}
	if depth < 0 {
		depth = s.opts.FilterDepth
	}
	return s.resolver.Fields(shape, depth), nil
}

// Compile validates req against typeName and compiles it. Validation failures are
// returned together as one *violation.Error.
func (s *Service) Compile(ctx context.Context, typeName string, req request.Request) (*Compiled, error) {
	start := time.Now()
	log := logger.FromContext(ctx).With(zap.String("type", typeName))

	c, err := s.compile(typeName, req)
	metrics.CompileDuration.WithLabelValues(typeName).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CompileTotal.WithLabelValues(typeName, "ok").Inc()
		log.Debug("Query compiled",
			zap.Int("clauses", c.clauses),
			zap.Int("sort_keys", len(c.sort)),
			zap.Stringer("query", c.query),
			zap.Duration("duration", time.Since(start)),
		)
		return c, nil
	case errors.Is(err, domain.ErrInvalidQuery):
		vs, _ := violation.From(err)
		for _, v := range vs {
			metrics.ViolationsTotal.WithLabelValues(string(v.Rule)).Inc()
		}
		metrics.CompileTotal.WithLabelValues(typeName, "invalid").Inc()
		log.Info("Query rejected",
			zap.Int("violations", len(vs)),
			zap.Strings("keys", violationKeys(vs)),
		)
	default:
		metrics.CompileTotal.WithLabelValues(typeName, "error").Inc()
		log.Warn("Query compilation failed", zap.Error(err))
	}
	return nil, err
}

func (s *Service) compile(typeName string, req request.Request) (*Compiled, error) {
	shape, err := s.schemas.Lookup(typeName)
	if err != nil {
		return nil, fmt.Errorf("lookup type: %w", err)
	}

	var set violation.Set
	if err := set.Merge(s.validator.Cursor(req.Cursor())); err != nil {
		return nil, err
	}

	clauses := clause.Tokenize(req.Filter(), clause.WithSeparators(s.opts.Separators))
	if err := set.Merge(s.validator.Filters(clauses, shape)); err != nil {
		return nil, err
	}

	keys, err := s.sorts.Compile(req.Sort(), shape)
	if err := set.Merge(err); err != nil {
		return nil, err
	}

	var (
		searchAfter []any
		backward    bool
	)
	if p := req.Cursor(); !p.IsEmpty() && !p.Conflicting() {
		var token string
		token, backward = p.Token()
		searchAfter, err = s.decodeCursor(token, req.Sort(), keys)
		if err != nil {
			set.Add(cursorViolation(err))
		}
	}

	searchPaths, explicit := s.searchPaths(shape, req.SearchFields(), &set)

	if err := set.Err(); err != nil {
		return nil, err
	}

	filterNode, err := s.filters.Compile(clauses, shape)
	if err != nil {
		return nil, err
	}
	var searchNode node.Node
	if explicit {
		searchNode, err = search.CompileFields(req.Search(), searchPaths)
	} else {
		searchNode, err = s.search.Compile(req.Search(), shape, s.opts.SearchDepth)
	}
	if err != nil {
		return nil, err
	}

	c := &Compiled{
		typeName:    typeName,
		filter:      filterNode,
		search:      searchNode,
		query:       node.Simplify(node.And(filterNode, searchNode)),
		sort:        keys,
		limit:       req.Limit(),
		searchAfter: searchAfter,
		backward:    backward,
		clauses:     len(clauses),
	}
	if indexed, ok := shape.(interface{ Index() string }); ok {
		c.index = indexed.Index()
	}
	return c, nil
}

type cursorError struct {
	rule violation.Rule
	msg  string
}

func (e *cursorError) Error() string { return e.msg }

func (s *Service) decodeCursor(token, rawSort string, keys []sortkey.Key) ([]any, error) {
	if rawSort == "" {
		return nil, &cursorError{rule: violation.RuleCursorNoSort, msg: "cursor requires a sort"}
	}
	if len(keys) == 0 {
		// sort itself was rejected; its violations already cover the request
		return nil, nil
	}
	values, err := cursor.Decode(token)
	if err != nil {
		return nil, &cursorError{rule: violation.RuleCursorMalformed, msg: err.Error()}
	}
	if len(values) != len(keys) {
		return nil, &cursorError{
			rule: violation.RuleCursorMalformed,
			msg:  fmt.Sprintf("cursor has %d values for %d sort keys", len(values), len(keys)),
		}
	}
	return values, nil
}

func cursorViolation(err error) violation.Violation {
	rule := violation.RuleCursorMalformed
	var ce *cursorError
	if errors.As(err, &ce) {
		rule = ce.rule
	}
	return violation.Violation{
		Field:    violation.FieldCursor,
		Kind:     violation.ValidFormat,
		Negative: true,
		Rule:     rule,
	}
}

// searchPaths resolves explicitly requested search fields. explicit is false when the
// request names none and every text path of the type is searched.
func (s *Service) searchPaths(shape schema.Shape, fields []string, set *violation.Set) ([]schema.Path, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	paths := make([]schema.Path, 0, len(fields))
	for _, f := range fields {
		resolved, err := s.resolver.ResolveGiven(shape, []string{f})
		if err != nil {
			set.Add(violation.Violation{
				Field:    violation.FieldSearch,
				Kind:     violation.Existence,
				Negative: true,
				Rule:     violation.RuleSearchField,
				Clause:   f,
			})
			continue
		}
		p := resolved[0]
		if !p.Kind.IsText() {
			set.Add(violation.Violation{
				Field:    violation.FieldSearch,
				Kind:     violation.ValidFormat,
				Negative: true,
				Rule:     violation.RuleSearchField,
				Clause:   f,
			})
			continue
		}
		paths = append(paths, p)
	}
	return paths, true
}

// Search compiles req and runs it on the executor. Hits come back in requested order
// and carry next/prev cursors when the query is sorted.
func (s *Service) Search(ctx context.Context, typeName string, req request.Request) (ResultSet, error) {
	if s.exec == nil {
		return ResultSet{}, domain.ErrExecutorNotConfigured
	}
	c, err := s.Compile(ctx, typeName, req)
	if err != nil {
		return ResultSet{}, err
	}
	rs, err := s.exec.Search(ctx, c)
	if err != nil {
		return ResultSet{}, fmt.Errorf("execute search: %w", err)
	}
	if c.Backward() {
		slices.Reverse(rs.Hits)
	}
	if len(c.sort) > 0 && len(rs.Hits) > 0 {
		if rs.Prev, err = cursor.Encode(rs.Hits[0].Sort); err != nil {
			return ResultSet{}, err
		}
		if rs.Next, err = cursor.Encode(rs.Hits[len(rs.Hits)-1].Sort); err != nil {
			return ResultSet{}, err
		}
	}
	return rs, nil
}

// Count compiles req and counts its matches.
func (s *Service) Count(ctx context.Context, typeName string, req request.Request) (int64, error) {
	if s.exec == nil {
		return 0, domain.ErrExecutorNotConfigured
	}
	c, err := s.Compile(ctx, typeName, req)
	if err != nil {
		return 0, err
	}
	n, err := s.exec.Count(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("execute count: %w", err)
	}
	return n, nil
}

func violationKeys(vs []violation.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Key()
	}
	return out
}
