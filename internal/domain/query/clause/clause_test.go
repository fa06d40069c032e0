package clause

import (
	"reflect"
	"testing"
)

func TestTokenize_Dotted(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		tokens []string
	}{
		{"simple", "name.$eq.John", []string{"name", "$eq", "John"}},
		{"nested field", "agent.firstName.$containsi.an", []string{"agent", "firstName", "$containsi", "an"}},
		{"value with dots", "email.$eq.anna.kim@gmail.com", []string{"email", "$eq", "anna.kim@gmail.com"}},
		{"decimal value", "price.$gt.10.5", []string{"price", "$gt", "10.5"}},
		{"array operator", "age.$in.1.18", []string{"age", "$in", "1", "18"}},
		{"array operator without index", "age.$in.Active", []string{"age", "$in", "Active"}},
		{"logical prefix", "$or.0.name.$eq.x", []string{"$or", "0", "name", "$eq", "x"}},
		{"upper case operator", "name.$EQ.x", []string{"name", "$EQ", "x"}},
		{"escaped dot in value", `name.$eq.a\.b`, []string{"name", "$eq", "a.b"}},
		{"no operator", "name.John", []string{"name", "John"}},
		{"single token", "name", []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if len(got) != 1 {
				t.Fatalf("expected 1 clause, got %d", len(got))
			}
			if !reflect.DeepEqual(got[0].Tokens(), tt.tokens) {
				t.Errorf("tokens = %q, want %q", got[0].Tokens(), tt.tokens)
			}
		})
	}
}

func TestTokenize_Bracket(t *testing.T) {
	tests := []struct {
		raw    string
		tokens []string
	}{
		{"name[$eq]=John", []string{"name", "$eq", "John"}},
		{"[$or][0][name][$eq]=x", []string{"$or", "0", "name", "$eq", "x"}},
		{"tags[label][$in][0]=go", []string{"tags", "label", "$in", "0", "go"}},
		{"agent.firstName[$eq]=a=b", []string{"agent", "firstName", "$eq", "a=b"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if len(got) != 1 {
				t.Fatalf("expected 1 clause, got %d", len(got))
			}
			if !reflect.DeepEqual(got[0].Tokens(), tt.tokens) {
				t.Errorf("tokens = %q, want %q", got[0].Tokens(), tt.tokens)
			}
		})
	}
}

func TestTokenize_MultipleClauses(t *testing.T) {
	got := Tokenize("name.$eq.John; age.$gt.3,status.$eq.1;;")
	if len(got) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(got))
	}
	want := []string{"name.$eq.John", "age.$gt.3", "status.$eq.1"}
	for i, c := range got {
		if c.Raw() != want[i] {
			t.Errorf("clause %d raw = %q, want %q", i, c.Raw(), want[i])
		}
	}
}

func TestTokenize_SeparatorInsideBrackets(t *testing.T) {
	got := Tokenize("a[b;c][$eq]=x")
	if len(got) != 1 {
		t.Fatalf("separator inside brackets must not split, got %d clauses", len(got))
	}
}

func TestTokenize_BracketInValue(t *testing.T) {
	tests := []struct {
		raw    string
		values []string
	}{
		{"title.$eq.[draft;age.$gt.5", []string{"[draft", "5"}},
		{"title.$eq.a]b;age.$gt.5", []string{"a]b", "5"}},
		{"tags.$in.0.[x,age.$gt.5", []string{"[x", "5"}},
		{"name[$eq]=[open;age.$gt.5", []string{"[open", "5"}},
		{"$or.0.name.$eq.[x;age.$lt.2", []string{"[x", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if len(got) != len(tt.values) {
				t.Fatalf("expected %d clauses, got %d", len(tt.values), len(got))
			}
			for i, c := range got {
				if c.Value() != tt.values[i] {
					t.Errorf("clause %d value = %q, want %q", i, c.Value(), tt.values[i])
				}
			}
		})
	}
}

func TestTokenize_EscapedSeparator(t *testing.T) {
	got := Tokenize(`name.$eq.Smith\, John;age.$gt.3`)
	if len(got) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(got))
	}
	if got[0].Value() != "Smith, John" {
		t.Errorf("value = %q", got[0].Value())
	}
}

func TestTokenize_CustomSeparators(t *testing.T) {
	got := Tokenize("name.$eq.a,b;age.$gt.3", WithSeparators(";"))
	if len(got) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(got))
	}
	if got[0].Value() != "a,b" {
		t.Errorf("value = %q", got[0].Value())
	}
}

func TestTokenize_PreservesOrder(t *testing.T) {
	got := Tokenize("b.$eq.1;a.$eq.2;c.$eq.3")
	order := []string{"b", "a", "c"}
	for i, c := range got {
		if c.Field() != order[i] {
			t.Errorf("clause %d field = %q, want %q", i, c.Field(), order[i])
		}
	}
}

func TestClause_CleanKey(t *testing.T) {
	c := Tokenize("name.$eq.John")[0]
	if !reflect.DeepEqual(c.CleanKey(), []string{"name", "$eq"}) {
		t.Errorf("CleanKey = %q", c.CleanKey())
	}
	if c.Value() != "John" {
		t.Errorf("Value = %q", c.Value())
	}
	for _, tok := range c.CleanKey() {
		if tok == c.Value() {
			t.Error("clean key must not contain the literal value")
		}
	}
}

func TestClause_NormalizedKey(t *testing.T) {
	a := Tokenize("status.$EQ.1")[0]
	b := Tokenize("status.$eq.2")[0]
	if a.NormalizedKey() != b.NormalizedKey() {
		t.Errorf("%q != %q", a.NormalizedKey(), b.NormalizedKey())
	}
	if a.NormalizedKey() != "status.$eq" {
		t.Errorf("NormalizedKey = %q", a.NormalizedKey())
	}
}

func TestClause_FieldPath(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"name.$eq.x", []string{"name"}},
		{"$or.0.agent.firstName.$eq.x", []string{"agent", "firstName"}},
		{"$and.1.$or.0.age.$in.2.5", []string{"age"}},
		{"age.$between.0.5", []string{"age"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Tokenize(tt.raw)[0].FieldPath()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FieldPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClause_Immutable(t *testing.T) {
	c := Tokenize("name.$eq.John")[0]
	toks := c.Tokens()
	toks[0] = "changed"
	key := c.CleanKey()
	key[0] = "changed"
	if c.Tokens()[0] != "name" {
		t.Error("clause tokens were mutated through an accessor")
	}
}

func TestPosition(t *testing.T) {
	if n, ok := Position("12"); !ok || n != 12 {
		t.Errorf("Position(12) = %d, %v", n, ok)
	}
	for _, tok := range []string{"", "-1", "1.5", "a", "1a"} {
		if _, ok := Position(tok); ok {
			t.Errorf("Position(%q) should fail", tok)
		}
	}
}
