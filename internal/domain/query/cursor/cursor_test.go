package cursor

import "testing"

func TestPair(t *testing.T) {
	tests := []struct {
		name        string
		pair        Pair
		empty       bool
		conflicting bool
	}{
		{"none", Pair{}, true, false},
		{"blank", Pair{Before: "  ", After: "\t"}, true, false},
		{"after", Pair{After: "xyz"}, false, false},
		{"before", Pair{Before: "abc"}, false, false},
		{"both", Pair{Before: "abc", After: "xyz"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.pair.IsEmpty() != tt.empty {
				t.Errorf("IsEmpty() = %v", tt.pair.IsEmpty())
			}
			if tt.pair.Conflicting() != tt.conflicting {
				t.Errorf("Conflicting() = %v", tt.pair.Conflicting())
			}
		})
	}
}

func TestPair_Token(t *testing.T) {
	tok, back := Pair{Before: " abc "}.Token()
	if tok != "abc" || !back {
		t.Errorf("Token() = %q, %v", tok, back)
	}
	tok, back = Pair{After: "xyz"}.Token()
	if tok != "xyz" || back {
		t.Errorf("Token() = %q, %v", tok, back)
	}
}

func TestEncodeDecode(t *testing.T) {
	tok, err := Encode([]any{"anna", 42.0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, err := Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(values) != 2 || values[0] != "anna" || values[1] != 42.0 {
		t.Errorf("values = %v", values)
	}
}

func TestEncode_Empty(t *testing.T) {
	tok, err := Encode(nil)
	if err != nil || tok != "" {
		t.Errorf("Encode(nil) = %q, %v", tok, err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, tok := range []string{"%%%", "bm90LWpzb24", "W10"} { // garbage, "not-json", "[]"
		if _, err := Decode(tok); err == nil {
			t.Errorf("Decode(%q) should fail", tok)
		}
	}
}
