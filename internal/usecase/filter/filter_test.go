package filter

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/restql/internal/domain"
	"github.com/kailas-cloud/restql/internal/domain/query/clause"
	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/schema/schematest"
	"github.com/kailas-cloud/restql/internal/usecase/resolve"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"text uses keyword", "firstName.$eq.John", "$eq(firstName.firstNameRaw):John"},
		{"keyword override", "email.$eqi.A@B.io", "$eqi(email.keyword):A@B.io"},
		{"siblings are ANDed", "age.$gte.18;age.$lte.65", "AND($gte(age):18, $lte(age):65)"},
		{"in collects positions", "age.$in.1.21;age.$in.0.18", "$in(age):[18 21]"},
		{"between bounds", "age.$between.1.65;age.$between.0.18", "$between(age):[18 65]"},
		{"bool typed", "active.$eq.true", "$eq(active):true"},
		{"object is not scoped", "address.city.$eq.Hanoi", "$eq(address.city.cityRaw):Hanoi"},
		{"collection scoped", "tags.label.$eq.go", "nested(tags, $eq(tags.label.labelRaw):go)"},
		{
			"nested scopes stack",
			"comments.replies.reactions.emoji.$eq.x",
			"nested(comments, nested(comments.replies, nested(comments.replies.reactions, " +
				"$eq(comments.replies.reactions.emoji.emojiRaw):x)))",
		},
		{
			"or junction next to a sibling",
			"$or.0.firstName.$eq.a;$or.1.lastName.$eq.b;age.$gt.1",
			"AND($gt(age):1, OR($eq(firstName.firstNameRaw):a, $eq(lastName.lastNameRaw):b))",
		},
		{
			"branch is an implicit AND",
			"$or.0.firstName.$eq.a;$or.0.age.$lt.5;$or.1.lastName.$eq.b",
			"OR(AND($eq(firstName.firstNameRaw):a, $lt(age):5), $eq(lastName.lastNameRaw):b)",
		},
		{
			"junctions nest",
			"$and.0.$or.0.age.$lt.10;$and.0.$or.1.age.$gt.60;$and.1.active.$eq.false",
			"AND(OR($lt(age):10, $gt(age):60), $eq(active):false)",
		},
		{"bracket form", "address[city][$containsi]=ha", "$containsi(address.city.cityRaw):ha"},
	}
	tr := New(resolve.New(), 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tr.Compile(clause.Tokenize(tt.raw), schematest.User())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.String() != tt.want {
				t.Errorf("got  %s\nwant %s", n, tt.want)
			}
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	n, err := New(resolve.New(), 0).Compile(nil, schematest.User())
	if err != nil || !node.IsMatchAll(n) {
		t.Errorf("Compile(nil) = %v, %v", n, err)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		raw    string
		target error
	}{
		{"nickname.$eq.x", domain.ErrUnknownField},
		{"age.$eq.abc", nil},
		{"age.$between.0.1", nil},
		{"$or.x.age.$eq.1", nil},
		{"age", nil},
	}
	tr := New(resolve.New(), 0)
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := tr.Compile(clause.Tokenize(tt.raw), schematest.User())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestCompile_ValuesAreTyped(t *testing.T) {
	n, err := New(resolve.New(), 0).Compile(clause.Tokenize("status.$eq.2"), schematest.User())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaf, ok := n.(node.Leaf)
	if !ok {
		t.Fatalf("node = %T", n)
	}
	if v, ok := leaf.Value().(float64); !ok || v != 2 {
		t.Errorf("Value() = %#v", leaf.Value())
	}
}
