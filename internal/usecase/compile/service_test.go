package compile

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/restql/internal/domain"
	"github.com/kailas-cloud/restql/internal/domain/query/cursor"
	"github.com/kailas-cloud/restql/internal/domain/query/request"
	"github.com/kailas-cloud/restql/internal/domain/schema/schematest"
	"github.com/kailas-cloud/restql/internal/domain/violation"
	"github.com/kailas-cloud/restql/internal/logger"
	"github.com/kailas-cloud/restql/internal/metrics"
)

// --- Mocks ---

type mockExec struct {
	rs       ResultSet
	count    int64
	err      error
	searched *Compiled
	counted  *Compiled
}

func (m *mockExec) Search(_ context.Context, q *Compiled) (ResultSet, error) {
	m.searched = q
	return m.rs, m.err
}

func (m *mockExec) Count(_ context.Context, q *Compiled) (int64, error) {
	m.counted = q
	return m.count, m.err
}

func newService(exec Executor) *Service {
	return New(schematest.Registry(), exec, nil, DefaultOptions())
}

func mustRequest(t *testing.T, p request.Params) request.Request {
	t.Helper()
	r, err := request.New(p, 0, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func rulesOf(t *testing.T, err error) []violation.Rule {
	t.Helper()
	vs, ok := violation.From(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	out := make([]violation.Rule, len(vs))
	for i, v := range vs {
		out[i] = v.Rule
	}
	return out
}

func token(t *testing.T, values ...any) string {
	t.Helper()
	tok, err := cursor.Encode(values)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return tok
}

// --- Tests ---

func TestCompile_FilterSearchSort(t *testing.T) {
	svc := newService(nil)
	c, err := svc.Compile(context.Background(), "article", mustRequest(t, request.Params{
		Filter: "title.$startswith.Go",
		Search: "foo",
		Sort:   "title desc",
		Limit:  5,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "AND($startswith(title.titleRaw):Go, OR(" +
		"OR(multi_match(title):foo, prefix(title):foo), " +
		"nested(tags, OR(multi_match(tags.label):foo, prefix(tags.label):foo))))"
	if c.Query().String() != want {
		t.Errorf("query:\n got %s\nwant %s", c.Query(), want)
	}
	if len(c.Sort()) != 1 || c.Sort()[0].Field() != "title.titleRaw" {
		t.Errorf("sort = %v", c.Sort())
	}
	if c.Limit() != 5 || c.Clauses() != 1 || c.Type() != "article" {
		t.Errorf("limit=%d clauses=%d type=%q", c.Limit(), c.Clauses(), c.Type())
	}
}

func TestCompile_EmptyRequestMatchesAll(t *testing.T) {
	c, err := newService(nil).Compile(context.Background(), "User", mustRequest(t, request.Params{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Query().String() != "match_all" {
		t.Errorf("query = %s", c.Query())
	}
	if c.Index() != "users" {
		t.Errorf("Index() = %q", c.Index())
	}
}

func TestCompile_UnknownType(t *testing.T) {
	_, err := newService(nil).Compile(context.Background(), "Ghost", mustRequest(t, request.Params{}))
	if !errors.Is(err, domain.ErrTypeNotFound) {
		t.Errorf("expected ErrTypeNotFound, got %v", err)
	}
}

func TestCompile_FieldCaseDuplicates(t *testing.T) {
	for _, raw := range []string{"age.$eq.1;Age.$eq.2", "status.$in.0.1;Status.$in.0.2"} {
		t.Run(raw, func(t *testing.T) {
			_, err := newService(nil).Compile(context.Background(), "User", mustRequest(t, request.Params{Filter: raw}))
			got := rulesOf(t, err)
			if len(got) != 1 || got[0] != violation.RuleDuplicate {
				t.Errorf("rules = %v", got)
			}
		})
	}
}

func TestCompile_AggregatesEveryStage(t *testing.T) {
	before := testutil.ToFloat64(metrics.CompileTotal.WithLabelValues("User", "invalid"))

	_, err := newService(nil).Compile(context.Background(), "User", mustRequest(t, request.Params{
		Filter:       "age.$in.x;status.$eq.1;status.$eq.2",
		Sort:         "nickname",
		SearchFields: []string{"ghost", "age"},
		Before:       "abc",
		After:        "xyz",
	}))
	got := rulesOf(t, err)
	want := []violation.Rule{
		violation.RuleCursorBoth,
		violation.RuleArrayIndex,
		violation.RuleDuplicate,
		violation.RuleUnknownField,
		violation.RuleSearchField,
		violation.RuleSearchField,
	}
	if len(got) != len(want) {
		t.Fatalf("rules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rules[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	after := testutil.ToFloat64(metrics.CompileTotal.WithLabelValues("User", "invalid"))
	if after-before != 1 {
		t.Errorf("compile_total{invalid} delta = %f", after-before)
	}
}

func TestCompile_Cursor(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	c, err := svc.Compile(ctx, "User", mustRequest(t, request.Params{
		Sort: "lastName", After: token(t, "smith"),
	}))
	if err != nil {
		t.Fatalf("after: %v", err)
	}
	if c.Backward() || len(c.SearchAfter()) != 1 || c.SearchAfter()[0] != "smith" {
		t.Errorf("after cursor: backward=%v values=%v", c.Backward(), c.SearchAfter())
	}

	c, err = svc.Compile(ctx, "User", mustRequest(t, request.Params{
		Sort: "lastName", Before: token(t, "smith"),
	}))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if !c.Backward() {
		t.Error("before cursor should page backwards")
	}
}

func TestCompile_CursorViolations(t *testing.T) {
	tests := []struct {
		name   string
		params request.Params
		rule   violation.Rule
	}{
		{"no sort", request.Params{After: "xyz"}, violation.RuleCursorNoSort},
		{"garbage", request.Params{Sort: "age", After: "%%%"}, violation.RuleCursorMalformed},
		{"arity", request.Params{Sort: "age", After: "WzEsMl0"}, violation.RuleCursorMalformed}, // [1,2]
	}
	svc := newService(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compile(context.Background(), "User", mustRequest(t, tt.params))
			got := rulesOf(t, err)
			if len(got) != 1 || got[0] != tt.rule {
				t.Errorf("rules = %v, want [%s]", got, tt.rule)
			}
		})
	}
}

func TestCompile_ExplicitSearchFields(t *testing.T) {
	c, err := newService(nil).Compile(context.Background(), "User", mustRequest(t, request.Params{
		Search:       "ha",
		SearchFields: []string{"address.city"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "OR(OR(multi_match(address.city):ha, prefix(address.city):ha))"
	if c.SearchNode().String() != want {
		t.Errorf("search = %s", c.SearchNode())
	}
}

func TestCompile_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	svc := newService(nil)
	if _, err := svc.Compile(ctx, "User", mustRequest(t, request.Params{Filter: "age.$gt.1"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = svc.Compile(ctx, "User", mustRequest(t, request.Params{Filter: "age.$gt.x"}))

	if n := logs.FilterMessage("Query compiled").Len(); n != 1 {
		t.Errorf("compiled logs = %d", n)
	}
	rejected := logs.FilterMessage("Query rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("rejected logs = %d", len(rejected))
	}
	if rejected[0].ContextMap()["violations"] != int64(1) {
		t.Errorf("fields = %v", rejected[0].ContextMap())
	}
}

func TestSearch_BackwardPage(t *testing.T) {
	exec := &mockExec{rs: ResultSet{
		Hits: []Hit{
			{ID: "3", Sort: []any{"c"}},
			{ID: "2", Sort: []any{"b"}},
		},
		Total: 10,
	}}
	svc := newService(exec)
	rs, err := svc.Search(context.Background(), "User", mustRequest(t, request.Params{
		Sort: "lastName", Before: token(t, "d"),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.searched == nil || !exec.searched.Backward() {
		t.Fatal("executor should receive the backward query")
	}
	if rs.Hits[0].ID != "2" || rs.Hits[1].ID != "3" {
		t.Errorf("hits not restored to requested order: %+v", rs.Hits)
	}
	if rs.Prev != token(t, "b") || rs.Next != token(t, "c") {
		t.Errorf("cursors = prev %q next %q", rs.Prev, rs.Next)
	}
}

func TestSearch_Errors(t *testing.T) {
	ctx := context.Background()
	req := mustRequest(t, request.Params{})

	if _, err := newService(nil).Search(ctx, "User", req); !errors.Is(err, domain.ErrExecutorNotConfigured) {
		t.Errorf("nil executor: %v", err)
	}
	boom := errors.New("boom")
	if _, err := newService(&mockExec{err: boom}).Search(ctx, "User", req); !errors.Is(err, boom) {
		t.Errorf("executor error: %v", err)
	}
	exec := &mockExec{}
	if _, err := newService(exec).Search(ctx, "User", mustRequest(t, request.Params{Filter: "x"})); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("invalid query: %v", err)
	}
	if exec.searched != nil {
		t.Error("executor must not run for invalid queries")
	}
}

func TestCount(t *testing.T) {
	exec := &mockExec{count: 7}
	n, err := newService(exec).Count(context.Background(), "User", mustRequest(t, request.Params{Filter: "active.$eq.true"}))
	if err != nil || n != 7 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	if exec.counted.Query().String() != "$eq(active):true" {
		t.Errorf("counted query = %s", exec.counted.Query())
	}
	if _, err := newService(nil).Count(context.Background(), "User", mustRequest(t, request.Params{})); !errors.Is(err, domain.ErrExecutorNotConfigured) {
		t.Errorf("nil executor: %v", err)
	}
}

func TestFieldsAndTypes(t *testing.T) {
	svc := newService(nil)
	if got := svc.Types(); len(got) != 2 {
		t.Errorf("Types() = %v", got)
	}
	paths, err := svc.Fields("User", 0)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(paths) != 10 {
		t.Errorf("len(Fields(User, 0)) = %d, want 10", len(paths))
	}
	if _, err := svc.Fields("Ghost", 0); !errors.Is(err, domain.ErrTypeNotFound) {
		t.Errorf("unknown type: %v", err)
	}
}
