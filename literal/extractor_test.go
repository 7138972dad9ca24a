package literal

import (
	"testing"

	"github.com/backrex/backrex/syntax"
)

func parse(t *testing.T, pattern string) *syntax.Graph {
	t.Helper()
	g, err := syntax.Parse(pattern, 0)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return g
}

func TestPrefixSingleLiteral(t *testing.T) {
	got := Prefix(parse(t, "foo.*"))
	if got.IsEmpty() || !got.Exact {
		t.Fatalf("Prefix = %+v, want exact literal", got)
	}
	if string(got.Literals[0]) != "foo" {
		t.Errorf("literal = %q, want %q", got.Literals[0], "foo")
	}
}

func TestPrefixSingleChar(t *testing.T) {
	got := Prefix(parse(t, `x\d+`))
	if got.IsEmpty() || string(got.Literals[0]) != "x" {
		t.Fatalf("Prefix = %+v, want [x]", got)
	}
}

func TestPrefixAlternation(t *testing.T) {
	got := Prefix(parse(t, "foo|bar|baz"))
	if len(got.Literals) != 3 {
		t.Fatalf("Prefix = %+v, want three literals", got)
	}
}

func TestPrefixAbsent(t *testing.T) {
	for _, pat := range []string{`\d+`, "a*b", "(x|y*)z", "日x"} {
		if got := Prefix(parse(t, pat)); !got.IsEmpty() {
			t.Errorf("Prefix(%q) = %+v, want empty", pat, got)
		}
	}
}
