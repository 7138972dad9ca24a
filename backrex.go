// Package backrex is a backtracking regular-expression engine with
// step-budget instrumentation.
//
// Unlike RE2-style engines, backrex deliberately implements the classic
// recursive backtracking search — including back-references, lookaround and
// possessive quantifiers — and counts every matcher step against a caller
// supplied budget. That combination is what the redos subpackage builds on:
// it statically locates backtracking repetitions in the compiled graph and
// uses the instrumented matcher to confirm synthesized attack strings
// actually blow up.
//
// Basic usage:
//
//	p, err := backrex.Compile(`^(\w+)@(\w+)$`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := p.Find("user@example", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if m != nil {
//	    fmt.Println(m.Group(1)) // "user"
//	}
//
// A zero budget means unlimited. A finite budget turns pathological
// backtracking into ErrBudgetExceeded instead of unbounded CPU time:
//
//	p := backrex.MustCompile(`^(a+)+$`)
//	_, err := p.Find(strings.Repeat("a", 40)+"!", 100000)
//	// errors.Is(err, backrex.ErrBudgetExceeded) == true
//
// A compiled Pattern is immutable and safe for concurrent use; every match
// call owns its own scratch state.
package backrex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backrex/backrex/syntax"
)

// Pattern is a compiled regular expression.
type Pattern struct {
	graph   *syntax.Graph
	pattern string
	flags   syntax.Flags
	scanner *scanner
}

// ErrBudgetExceeded reports that a match call ran out of steps. It is
// recoverable: the caller chooses between retrying with a larger budget
// and treating the pattern as likely pathological.
var ErrBudgetExceeded = errors.New("backrex: step budget exceeded")

// BudgetError carries the observable partial step count of an aborted
// match. It matches ErrBudgetExceeded under errors.Is.
type BudgetError struct {
	Steps  uint64
	Budget uint64
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	return fmt.Sprintf("backrex: step budget exceeded (%d steps, budget %d)", e.Steps, e.Budget)
}

// Is reports whether target is ErrBudgetExceeded.
func (e *BudgetError) Is(target error) bool { return target == ErrBudgetExceeded }

// Compile compiles a pattern with no flags.
func Compile(pattern string) (*Pattern, error) {
	return CompileFlags(pattern, 0)
}

// CompileFlags compiles a pattern with the given flag mask. Flags may also
// be embedded inline with (?flags); embedded flags override the mask from
// their position onward.
func CompileFlags(pattern string, flags syntax.Flags) (*Pattern, error) {
	g, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, err
	}
	p := &Pattern{
		graph:   g,
		pattern: pattern,
		flags:   flags,
	}
	p.scanner = newScanner(g)
	return p, nil
}

// MustCompile compiles a pattern and panics if it fails.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic("backrex: Compile(`" + pattern + "`): " + err.Error())
	}
	return p
}

// String returns the source text of the pattern.
func (p *Pattern) String() string { return p.pattern }

// Flags returns the compile-time flag mask.
func (p *Pattern) Flags() syntax.Flags { return p.flags }

// Graph exposes the compiled match graph for the analyzer.
func (p *Pattern) Graph() *syntax.Graph { return p.graph }

// GroupCount returns the number of capture groups plus one for the whole
// match.
func (p *Pattern) GroupCount() int { return p.graph.GroupCount }

// GroupNames returns the named-group table. The map is shared and must not
// be modified.
func (p *Pattern) GroupNames() map[string]int { return p.graph.GroupNames }

// Matches reports whether the pattern matches the entire input. A budget
// of 0 is unlimited; exhausting a finite budget returns a *BudgetError.
func (p *Pattern) Matches(input string, budget uint64) (bool, error) {
	m := p.newMatcher(input, &Trace{Budget: budget})
	return m.matches()
}

// Find searches for the first match at or after the start of input.
// It returns nil with a nil error when there is no match.
func (p *Pattern) Find(input string, budget uint64) (*Match, error) {
	m := p.newMatcher(input, &Trace{Budget: budget})
	return m.find(0)
}

// FindTraced runs Find against a caller-owned Trace, which carries the
// budget in and the step count (and optional step log) out. The analyzer
// scores candidate attacks through this entry point.
func (p *Pattern) FindTraced(input string, trace *Trace) (*Match, error) {
	m := p.newMatcher(input, trace)
	return m.find(0)
}

// Quote returns a literal pattern string that matches s exactly, quoting
// any embedded \E so the \Q...\E wrapping cannot be escaped.
func Quote(s string) string {
	if !strings.Contains(s, `\E`) {
		return `\Q` + s + `\E`
	}
	var b strings.Builder
	b.WriteString(`\Q`)
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) && s[i] == '\\' && s[i+1] == 'E' {
			b.WriteString(`\E\\E\Q`)
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	b.WriteString(`\E`)
	return b.String()
}
