package syntax

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mustParse(t *testing.T, pattern string, flags Flags) *Graph {
	t.Helper()
	g, err := Parse(pattern, flags)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return g
}

// TestParseDeterministic checks the invariant that the same pattern and
// flags produce a structurally identical graph.
func TestParseDeterministic(t *testing.T) {
	patterns := []string{
		`^(a+)+$`,
		`(foo|bar(baz)?)*qux`,
		`[a-z&&[^aeiou]]{2,5}?`,
		`(?<name>\d+)-\k<name>`,
		`(?i)x(?-i:Y)z`,
	}
	opts := []cmp.Option{
		cmpopts.IgnoreUnexported(Graph{}),
		cmpopts.IgnoreFields(Graph{}, "DirectNext", "SubNext", "DirectPrev", "DirectParent"),
	}
	for _, pat := range patterns {
		g1 := mustParse(t, pat, 0)
		g2 := mustParse(t, pat, 0)
		if g1.Len() != g2.Len() {
			t.Errorf("%q: arena sizes differ: %d vs %d", pat, g1.Len(), g2.Len())
			continue
		}
		if diff := cmp.Diff(exportNodes(g1), exportNodes(g2)); diff != "" {
			t.Errorf("%q: graphs differ (-first +second):\n%s", pat, diff)
		}
		if diff := cmp.Diff(g1, g2, opts...); diff != "" {
			t.Errorf("%q: metadata differs:\n%s", pat, diff)
		}
	}
}

// exportNodes renders the arena in a comparable form: sets compare by
// identity-irrelevant fields only.
func exportNodes(g *Graph) []string {
	out := make([]string, g.Len())
	for i := 0; i < g.Len(); i++ {
		n := g.Node(NodeID(i))
		out[i] = n.Op.String() + "/" + n.Mode.String() + "/" + n.Self
	}
	return out
}

// TestGroupMetadata checks capture indexing and the name table.
func TestGroupMetadata(t *testing.T) {
	g := mustParse(t, `(a)(?:b)(?<x>c)(d)`, 0)
	if g.GroupCount != 4 {
		t.Errorf("GroupCount = %d, want 4 (three captures plus group 0)", g.GroupCount)
	}
	if idx, ok := g.GroupNames["x"]; !ok || idx != 2 {
		t.Errorf("GroupNames[x] = %d,%v, want 2,true", idx, ok)
	}
}

// TestErrorPositions checks the error taxonomy and cursor reporting.
func TestErrorPositions(t *testing.T) {
	tests := []struct {
		pattern string
		kind    ErrorKind
	}{
		{"ab(cd", ErrSyntax},
		{"a{1,", ErrSyntax},
		{`\k<missing>`, ErrNoSuchGroup},
		{`(a)\5`, ErrNoSuchGroup},
		{`(?<=x*)y`, ErrUnsupported},
		{`[\R]`, ErrSyntax},
	}
	for _, tt := range tests {
		_, err := Parse(tt.pattern, 0)
		if err == nil {
			t.Errorf("Parse(%q): expected error", tt.pattern)
			continue
		}
		var pe *PatternError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q): error type %T", tt.pattern, err)
			continue
		}
		if pe.Kind != tt.kind {
			t.Errorf("Parse(%q): kind = %v, want %v", tt.pattern, pe.Kind, tt.kind)
		}
		if pe.Pattern == "" {
			t.Errorf("Parse(%q): error lost the pattern text", tt.pattern)
		}
	}
}

// TestSliceCollapsing checks literal runs collapse and long ones become
// Boyer-Moore roots.
func TestSliceCollapsing(t *testing.T) {
	g := mustParse(t, "abcde", 0)
	if op := g.Node(g.MatchRoot).Op; op != OpSlice {
		t.Fatalf("match root = %v, want Slice", op)
	}
	root := g.Node(g.Root)
	if root.Op != OpSliceBM {
		t.Fatalf("search root = %v, want SliceBM", root.Op)
	}
	if len(root.OptoSft) != 5 {
		t.Errorf("good-suffix table length = %d", len(root.OptoSft))
	}
	if root.LastOcc['a'] != 1 || root.LastOcc['e'] != 5 {
		t.Errorf("bad-character table wrong: a=%d e=%d", root.LastOcc['a'], root.LastOcc['e'])
	}

	short := mustParse(t, "abc", 0)
	if op := short.Node(short.Root).Op; op != OpStart {
		t.Errorf("short literal root = %v, want Start", op)
	}
}

// TestQuantifierModes checks mode suffix parsing.
func TestQuantifierModes(t *testing.T) {
	tests := []struct {
		pattern string
		mode    QuantMode
	}{
		{"a*", Greedy},
		{"a*?", Lazy},
		{"a*+", Possessive},
		{"a{2,7}?", Lazy},
	}
	for _, tt := range tests {
		g := mustParse(t, tt.pattern, 0)
		found := false
		for i := 0; i < g.Len(); i++ {
			id := NodeID(i)
			if g.IsRepetition(id) {
				_, _, mode := g.RepetitionBounds(id)
				if mode != tt.mode {
					t.Errorf("%q: mode = %v, want %v", tt.pattern, mode, tt.mode)
				}
				found = true
			}
		}
		if !found {
			t.Errorf("%q: no repetition node", tt.pattern)
		}
	}
}

// TestNonDeterministicGroupsUseLoops checks the Prolog/Loop selection for
// backtracking group bodies and GroupCurly for deterministic ones.
func TestNonDeterministicGroupsUseLoops(t *testing.T) {
	g := mustParse(t, `(a+)+`, 0)
	var hasLoop bool
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).Op == OpLoop {
			hasLoop = true
		}
	}
	if !hasLoop {
		t.Error("(a+)+ should compile its outer quantifier to Prolog/Loop")
	}

	det := mustParse(t, `(ab){2,3}`, 0)
	var hasGC bool
	for i := 0; i < det.Len(); i++ {
		if det.Node(NodeID(i)).Op == OpGroupCurly {
			hasGC = true
		}
	}
	if !hasGC {
		t.Error("(ab){2,3} should compile to GroupCurly")
	}
}

// TestWiring checks the analyzer side tables: direct chains skip into
// continuations and sub edges descend into bodies.
func TestWiring(t *testing.T) {
	g := mustParse(t, `x(a+)+y`, 0)

	var loop NodeID = InvalidNode
	for i := 0; i < g.Len(); i++ {
		if g.Node(NodeID(i)).Op == OpLoop {
			loop = NodeID(i)
		}
	}
	if loop == InvalidNode {
		t.Fatal("no loop node")
	}

	// The loop's direct successor is the literal y.
	next := g.DirectNext[loop]
	if next == InvalidNode || g.Node(next).Cp != 'y' {
		t.Errorf("DirectNext[loop] should reach 'y'")
	}
	// The loop's sub edge enters the group body.
	sub := g.SubNext[loop]
	if sub == InvalidNode || g.Node(sub).Op != OpGroupHead {
		t.Errorf("SubNext[loop] = %v, want GroupHead", g.Node(sub).Op)
	}
	// Nodes in the body have the loop as direct parent.
	if g.DirectParent[sub] != loop {
		t.Errorf("DirectParent of body head should be the loop")
	}
}

// TestStudy checks min-length computation feeding the starter.
func TestStudy(t *testing.T) {
	tests := []struct {
		pattern string
		min     int
	}{
		{"abc", 3},
		{"a|bc", 1},
		{"a?bc", 2},
		{"a{3}b", 4},
		{"(ab)+", 2},
		{`\d\w\s`, 3},
	}
	for _, tt := range tests {
		g := mustParse(t, tt.pattern, 0)
		info := g.Study(g.MatchRoot, InvalidNode)
		if info.MinLength != tt.min {
			t.Errorf("%q: MinLength = %d, want %d", tt.pattern, info.MinLength, tt.min)
		}
	}
}

// TestInlineFlagScoping checks (?flags:...) restores on group exit.
func TestInlineFlagScoping(t *testing.T) {
	// (?i:a)b: 'a' case-blind, 'b' exact.
	g := mustParse(t, `(?i:a)b`, 0)
	var sawCI, sawExactB bool
	for i := 0; i < g.Len(); i++ {
		n := g.Node(NodeID(i))
		if n.Op == OpCharI && n.Cp == 'a' {
			sawCI = true
		}
		if n.Op == OpChar && n.Cp == 'b' {
			sawExactB = true
		}
	}
	if !sawCI || !sawExactB {
		t.Errorf("flag scoping wrong: CI(a)=%v exact(b)=%v", sawCI, sawExactB)
	}
}

// TestLookBehindBounds checks the study-driven window on Behind nodes.
func TestLookBehindBounds(t *testing.T) {
	g := mustParse(t, `(?<=ab|a)c`, 0)
	for i := 0; i < g.Len(); i++ {
		n := g.Node(NodeID(i))
		if n.Op == OpBehind {
			if n.Min != 1 || n.Max != 2 {
				t.Errorf("behind window = [%d,%d], want [1,2]", n.Min, n.Max)
			}
			return
		}
	}
	t.Fatal("no Behind node")
}
