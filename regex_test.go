package backrex

import (
	"errors"
	"strings"
	"testing"
)

// TestCompile tests basic compilation and error reporting.
func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"digit class", `\d+`, false},
		{"alternation", "foo|bar", false},
		{"groups", `(a)(?:b)(?<name>c)`, false},
		{"lookaround", `(?=a)(?!b)(?<=c)(?<!d)x`, false},
		{"atomic", `(?>ab|a)c`, false},
		{"possessive", `a*+b++c?+`, false},
		{"inline flags", `(?i)abc(?-i:d)`, false},
		{"empty", "", false},
		{"anchor only", "^", false},
		{"unmatched paren", "(", true},
		{"unmatched close", ")", true},
		{"unmatched bracket", "[a", true},
		{"dangling star", "*a", true},
		{"double quantifier", "a**", true},
		{"reversed range", "a{3,1}", true},
		{"bad escape", `\q`, true},
		{"unknown property", `\p{Bogus}`, true},
		{"unclosed property", `\p{Lu`, true},
		{"unbounded lookbehind", `(?<=a*)b`, true},
		{"backref to later group", `\1(a)`, true},
		{"backref to open group", `(a\1)`, true},
		{"named backref missing", `\k<nope>a`, true},
		{"duplicate group name", `(?<x>a)(?<x>b)`, true},
		{"class range reversed", `[z-a]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
				return
			}
			if !tt.wantErr && re == nil {
				t.Error("Compile() returned nil pattern")
			}
		})
	}
}

// TestMatches tests anchored whole-input matching.
func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"hello", "hello", true},
		{"hello", "hello world", false},
		{"", "", true},
		{"", "x", false},
		{`\d+`, "12345", true},
		{`\d+`, "12a45", false},
		{"a*", "", true},
		{"a+", "", false},
		{"a?b", "b", true},
		{"a?b", "ab", true},
		{"a{2,4}", "aaa", true},
		{"a{2,4}", "aaaaa", false},
		{"foo|bar", "bar", true},
		{"foo|bar", "baz", false},
		{"(a|b)*c", "ababc", true},
		{"a.c", "abc", true},
		{"a.c", "a\nc", false},
		{`(?s)a.c`, "a\nc", true},
		{"[a-f]+", "cafe", true},
		{"[^a-f]+", "xyz", true},
		{"[^a-f]+", "xyaz", false},
		{`[a-z&&[^aeiou]]+`, "bcd", true},
		{`[a-z&&[^aeiou]]+`, "bce", false},
		{`(a)\1`, "aa", true},
		{`(a)\1`, "ab", false},
		{`(?<d>\d)x\k<d>`, "1x1", true},
		{`(?<d>\d)x\k<d>`, "1x2", false},
		{"a(?=b)b", "ab", true},
		{"a(?!b)c", "ac", true},
		{"a(?!b)b", "ab", false},
		{`a(?<=a)b`, "ab", true},
		{`a(?<!a)b`, "ab", false},
		{`ab(?<!a)c`, "abc", true},
		{`(?i)HeLLo`, "hello", true},
		{`(?i)[a-f]+`, "CAFE", true},
		{"a|", "", true},
		{"a|", "a", true},
		{`\Qa+b\E`, "a+b", true},
		{`\Qa+b\E`, "aab", false},
		{`^a$`, "a", true},
		{`(?>ab|a)c`, "abc", true},
		{`(?>a|ab)c`, "abc", false},
		{`a\x{62}c`, "abc", true},
		{`\x61bc`, "abc", true},
		{`a\tb`, "a\tb", true},
		{`a{2}`, "aa", true},
		{`(ab){2,}`, "ababab", true},
		{`(ab){2,}`, "ab", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.pattern, err)
			}
			got, err := p.Matches(tt.input, 0)
			if err != nil {
				t.Fatalf("Matches: %v", err)
			}
			if got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}

// TestFind tests unanchored search spans.
func TestFind(t *testing.T) {
	tests := []struct {
		pattern    string
		input      string
		wantStart  int
		wantEnd    int
		wantNoHit  bool
		wantGroups []string
	}{
		{pattern: `\d+`, input: "age: 42!", wantStart: 5, wantEnd: 7},
		{pattern: "hello", input: "say hello", wantStart: 4, wantEnd: 9},
		{pattern: "x", input: "abc", wantNoHit: true},
		{pattern: "^b", input: "abc", wantNoHit: true},
		{pattern: "c$", input: "abc", wantStart: 2, wantEnd: 3},
		{pattern: `(\w+)@(\w+)`, input: "mail me: bob@host ok", wantStart: 9, wantEnd: 17,
			wantGroups: []string{"bob@host", "bob", "host"}},
		{pattern: "a*", input: "bbb", wantStart: 0, wantEnd: 0},
		{pattern: "longliteral", input: "xx longliteral yy", wantStart: 3, wantEnd: 14},
		{pattern: "(?m)^b.c$", input: "abc\nbxc", wantStart: 4, wantEnd: 7},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p := MustCompile(tt.pattern)
			m, err := p.Find(tt.input, 0)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if tt.wantNoHit {
				if m != nil {
					t.Fatalf("Find = [%d,%d), want no match", m.Start(), m.End())
				}
				return
			}
			if m == nil {
				t.Fatal("Find = nil, want match")
			}
			if m.Start() != tt.wantStart || m.End() != tt.wantEnd {
				t.Errorf("span = [%d,%d), want [%d,%d)", m.Start(), m.End(), tt.wantStart, tt.wantEnd)
			}
			for i, want := range tt.wantGroups {
				if got := m.Group(i); got != want {
					t.Errorf("group %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

// TestMatchesFindAgreement checks the invariant that an anchored pattern
// matches iff find succeeds over the whole input.
func TestMatchesFindAgreement(t *testing.T) {
	patterns := []string{`\w+`, "a(b|c)*d", `\d{2,4}`, "x?y+z*"}
	inputs := []string{"", "abd", "acbd", "12", "12345", "yyy", "xz"}

	for _, pat := range patterns {
		anchored := MustCompile("^(?:" + pat + ")$")
		plain := MustCompile(pat)
		for _, in := range inputs {
			got, err := plain.Matches(in, 0)
			if err != nil {
				t.Fatal(err)
			}
			m, err := anchored.Find(in, 0)
			if err != nil {
				t.Fatal(err)
			}
			want := m != nil && m.Start() == 0 && m.End() == len([]rune(in))
			if got != want {
				t.Errorf("pattern %q input %q: Matches=%v anchored Find=%v", pat, in, got, want)
			}
		}
	}
}

// TestGreedyLazyPossessive pins down quantifier mode semantics.
func TestGreedyLazyPossessive(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    string
	}{
		{`<.+>`, "<a><b>", "<a><b>"},
		{`<.+?>`, "<a><b>", "<a>"},
		{`a+a`, "aaaa", "aaaa"},
		{`a+?a`, "aaaa", "aa"},
		{`".*"`, `"x" and "y"`, `"x" and "y"`},
		{`".*?"`, `"x" and "y"`, `"x"`},
	}
	for _, tt := range tests {
		p := MustCompile(tt.pattern)
		m, err := p.Find(tt.input, 0)
		if err != nil {
			t.Fatal(err)
		}
		if m == nil {
			t.Fatalf("%q on %q: no match", tt.pattern, tt.input)
		}
		if m.Text() != tt.want {
			t.Errorf("%q on %q = %q, want %q", tt.pattern, tt.input, m.Text(), tt.want)
		}
	}

	// A possessive quantifier never gives back.
	p := MustCompile(`a++a`)
	ok, err := p.Matches("aaaa", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("a++a should not match aaaa")
	}
}

// TestPossessiveLinearSteps checks that possessive repetition does no
// backtracking: the step count stays linear in the input.
func TestPossessiveLinearSteps(t *testing.T) {
	p := MustCompile(`^a*+b$`)
	input := strings.Repeat("a", 100) + "c"
	trace := &Trace{}
	_, err := p.FindTraced(input, trace)
	if err != nil {
		t.Fatal(err)
	}
	// One step per consumed character plus constant bookkeeping.
	if trace.Steps > uint64(3*len(input)+20) {
		t.Errorf("possessive match took %d steps for %d chars", trace.Steps, len(input))
	}
}

// TestBudget checks that catastrophic patterns surface ErrBudgetExceeded
// with the partial step count observable.
func TestBudget(t *testing.T) {
	p := MustCompile(`^(a+)+$`)
	input := strings.Repeat("a", 30) + "!"

	_, err := p.Find(input, 100000)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("want ErrBudgetExceeded, got %v", err)
	}
	var be *BudgetError
	if !errors.As(err, &be) {
		t.Fatal("want *BudgetError")
	}
	if be.Steps <= be.Budget {
		t.Errorf("steps %d should exceed budget %d", be.Steps, be.Budget)
	}

	// The same input with an unlimited budget is just a long non-match for
	// a smaller prefix; with a tiny input it must terminate.
	small := "aaa!"
	m, err := p.Find(small, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Error("should not match")
	}
}

// TestBudgetRecoverable checks that the same pattern succeeds under a
// larger budget.
func TestBudgetRecoverable(t *testing.T) {
	p := MustCompile(`^(a+)+$`)
	ok, err := p.Matches("aaaa", 50)
	if err == nil && !ok {
		t.Error("expected match or budget error")
	}
	ok, err = p.Matches("aaaa", 0)
	if err != nil || !ok {
		t.Errorf("unlimited budget: ok=%v err=%v", ok, err)
	}
}

// TestAlternationOrder checks earlier branches win.
func TestAlternationOrder(t *testing.T) {
	p := MustCompile("a|ab")
	m, err := p.Find("ab", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Text() != "a" {
		t.Errorf("first-branch preference violated: got %q", m.Text())
	}
}

// TestWordBoundary exercises \b and \B.
func TestWordBoundary(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`\bcat\b`, "a cat sat", true},
		{`\bcat\b`, "concatenate", false},
		{`\Bcat\B`, "concatenate", true},
		{`\Bcat\B`, "a cat sat", false},
		{`\bword`, "word", true},
		{`word\b`, "word", true},
	}
	for _, tt := range tests {
		p := MustCompile(tt.pattern)
		m, err := p.Find(tt.input, 0)
		if err != nil {
			t.Fatal(err)
		}
		if (m != nil) != tt.want {
			t.Errorf("%q on %q: match=%v, want %v", tt.pattern, tt.input, m != nil, tt.want)
		}
	}
}

// TestSplit tests the split contract including limit semantics.
func TestSplit(t *testing.T) {
	p := MustCompile(",")

	got, err := p.Split("a,b,c", -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !equalStrings(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}

	got, _ = p.Split("a,b,c", 2, 0)
	if want := []string{"a", "b,c"}; !equalStrings(got, want) {
		t.Errorf("Split limit 2 = %v, want %v", got, want)
	}

	got, _ = p.Split("a,b,,,", 0, 0)
	if want := []string{"a", "b"}; !equalStrings(got, want) {
		t.Errorf("Split limit 0 = %v, want %v", got, want)
	}

	got, _ = p.Split("a,b,,,", -1, 0)
	if want := []string{"a", "b", "", "", ""}; !equalStrings(got, want) {
		t.Errorf("Split limit -1 = %v, want %v", got, want)
	}

	got, _ = p.Split("nocomma", -1, 0)
	if want := []string{"nocomma"}; !equalStrings(got, want) {
		t.Errorf("Split no-match = %v, want %v", got, want)
	}
}

// TestSplitRoundTrip checks that pieces and separators reassemble the
// input.
func TestSplitRoundTrip(t *testing.T) {
	p := MustCompile(`\d+`)
	input := "ab12cd345ef6"

	pieces, err := p.Split(input, -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := p.FindAll(input, -1, 0)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	for i, piece := range pieces {
		b.WriteString(piece)
		if i < len(matches) {
			b.WriteString(matches[i].Text())
		}
	}
	if b.String() != input {
		t.Errorf("round trip = %q, want %q", b.String(), input)
	}
}

// TestReplace tests $-expansion.
func TestReplace(t *testing.T) {
	p := MustCompile(`(\w+)@(\w+)`)
	got, err := p.ReplaceAll("bob@host carol@box", "$2:$1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := "host:bob box:carol"; got != want {
		t.Errorf("ReplaceAll = %q, want %q", got, want)
	}

	named := MustCompile(`(?<user>\w+)@\w+`)
	got, _ = named.ReplaceAll("bob@host", "${user}", 0)
	if got != "bob" {
		t.Errorf("named expansion = %q, want %q", got, "bob")
	}

	got, _ = p.ReplaceFirst("a@b c@d", "X", 0)
	if got != "X c@d" {
		t.Errorf("ReplaceFirst = %q", got)
	}

	got, _ = p.ReplaceAll("a@b", "$$", 0)
	if got != "$" {
		t.Errorf("dollar escape = %q", got)
	}
}

// TestFindAllEmptyMatch checks the empty-match advance rule.
func TestFindAllEmptyMatch(t *testing.T) {
	p := MustCompile("a*")
	ms, err := p.FindAll("ab", -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, m := range ms {
		texts = append(texts, m.Text())
	}
	// "a" at 0, "" at 1 (before b), "" at 2.
	if want := []string{"a", "", ""}; !equalStrings(texts, want) {
		t.Errorf("FindAll = %q, want %q", texts, want)
	}
}

// TestAsPredicate tests the derived predicate.
func TestAsPredicate(t *testing.T) {
	pred := MustCompile(`\d`).AsPredicate(0)
	if !pred("a1") || pred("ab") {
		t.Error("predicate misbehaved")
	}
}

// TestHitEnd exercises the hit-end / require-end observability.
func TestHitEnd(t *testing.T) {
	p := MustCompile("abc$")
	m, err := p.Find("abc", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("no match")
	}
	if !m.RequireEnd {
		t.Error("$-anchored match should require end")
	}
}

// TestUnicode exercises rune-indexed matching.
func TestUnicode(t *testing.T) {
	p := MustCompile("^.{3}$")
	ok, err := p.Matches("日本語", 0)
	if err != nil || !ok {
		t.Errorf("three runes should match .{3}: ok=%v err=%v", ok, err)
	}

	ci := MustCompile(`(?iu)^σ+$`)
	ok, err = ci.Matches("Σσ", 0)
	if err != nil || !ok {
		t.Errorf("unicode fold: ok=%v err=%v", ok, err)
	}
}

// TestQuote checks the literalizer.
func TestQuote(t *testing.T) {
	p := MustCompile(Quote("a.+b"))
	ok, _ := p.Matches("a.+b", 0)
	if !ok {
		t.Error("quoted literal should match itself")
	}
	ok, _ = p.Matches("axxb", 0)
	if ok {
		t.Error("quoted metacharacters must not stay active")
	}
}

// TestCompileCached checks the pattern cache returns shared instances.
func TestCompileCached(t *testing.T) {
	PurgeCache()
	p1, err := CompileCached(`\d+`, 0)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := CompileCached(`\d+`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("cache should return the same compiled pattern")
	}
	if _, err := CompileCached("(", 0); err == nil {
		t.Error("errors must not be cached away")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
