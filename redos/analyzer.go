// Package redos statically analyzes a compiled pattern for catastrophic
// backtracking and synthesizes concrete attack strings.
//
// For every backtracking repetition in the match graph the analyzer
// derives candidate pump strings from the repetition's body, builds a
// prefix that drives the matcher to the repetition and a suffix that
// forbids the continuation, then confirms the attack empirically: the
// instrumented matcher is run on prefix·pump^k·suffix with the step budget
// set to the caller's threshold, and only candidates that exhaust the
// budget become findings.
//
//	p := backrex.MustCompile(`^(a+)+$`)
//	findings := redos.Analyze(p, 100000)
//	for _, f := range findings {
//	    fmt.Printf("pump %q suffix %q (%d steps)\n", f.Pump, f.Suffix, f.Steps)
//	}
//
// A pattern with no vulnerable repetition yields an empty list; the
// analyzer never fails on a valid pattern.
package redos

import (
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/backrex/backrex"
	"github.com/backrex/backrex/charset"
	"github.com/backrex/backrex/syntax"
)

// Config tunes an analysis.
type Config struct {
	// Threshold is the matcher step budget an attack must exhaust to be
	// confirmed.
	Threshold uint64

	// PumpCount is how many times the pump is repeated during validation.
	PumpCount int

	// MaxCandidates caps the pumps tried per repetition.
	MaxCandidates int

	// Alphabet is the witness universe; nil selects the fixed 90-character
	// reference alphabet.
	Alphabet *charset.Alphabet

	// Logger receives structured diagnostics; nil disables them.
	Logger *zap.Logger

	// CrossValidate replays confirmed attacks through the regexp2
	// backtracking engine with a wall-clock timeout as an independent
	// oracle. Findings the oracle dismisses are kept but logged.
	CrossValidate        bool
	CrossValidateTimeout time.Duration
}

// DefaultConfig returns the analysis defaults: the reference pump count of
// 7 and the fixed reference alphabet.
func DefaultConfig() Config {
	return Config{
		PumpCount:            7,
		MaxCandidates:        8,
		CrossValidateTimeout: 100 * time.Millisecond,
	}
}

// Finding is one confirmed attack: matching Prefix + repeat(Pump, k) +
// Suffix forces super-linear work in the repetition spanning Span in the
// pattern.
type Finding struct {
	Prefix string
	Pump   string
	Suffix string

	// Steps is the observed step count of the validating run.
	Steps uint64

	// Span is the [begin, end) rune span of the vulnerable repetition in
	// the pattern text.
	Span [2]int

	// Exponential marks attacks derived from overlapping alternatives or
	// nested repetitions, whose cost doubles per added pump.
	Exponential bool
}

// Analyze scans the pattern with default configuration and the given step
// threshold.
func Analyze(p *backrex.Pattern, threshold uint64) []Finding {
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	return AnalyzeWithConfig(p, cfg)
}

// AnalyzeWithConfig scans the pattern for vulnerable repetitions. The
// result is ordered by pattern position, one finding at most per
// repetition; a safe pattern yields nil.
func AnalyzeWithConfig(p *backrex.Pattern, cfg Config) []Finding {
	if cfg.PumpCount <= 0 {
		cfg.PumpCount = 7
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 8
	}
	if cfg.Alphabet == nil {
		cfg.Alphabet = charset.DefaultAlphabet()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	a := &analysis{g: p.Graph(), alphabet: cfg.Alphabet}
	reps := a.repetitions()

	var findings []Finding
	for _, rep := range reps {
		if f, ok := a.analyzeRepetition(p, cfg, log, rep); ok {
			findings = append(findings, f)
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Span[0] < findings[j].Span[0]
	})
	return findings
}

// repetitions collects the backtracking repetition nodes: everything
// quantified that can give back and iterate more than once.
func (a *analysis) repetitions() []syntax.NodeID {
	var out []syntax.NodeID
	for i := 0; i < a.g.Len(); i++ {
		id := syntax.NodeID(i)
		if !a.g.IsRepetition(id) {
			continue
		}
		_, max, mode := a.g.RepetitionBounds(id)
		if mode == syntax.Possessive || mode == syntax.Atomic {
			continue
		}
		if max < 2 {
			continue
		}
		out = append(out, id)
	}
	return out
}

// candidate is one pump hypothesis.
type candidate struct {
	pump        []rune
	exponential bool
}

// analyzeRepetition derives candidates for one repetition and validates
// them in preference order, returning the first confirmed attack.
func (a *analysis) analyzeRepetition(p *backrex.Pattern, cfg Config, log *zap.Logger, rep syntax.NodeID) (Finding, bool) {
	n := a.g.Node(rep)
	body := a.g.SubNext[rep]
	if body == syntax.InvalidNode {
		return Finding{}, false
	}

	first := a.firstSet(body, 0)
	follow := a.followSet(rep)

	candidates := a.buildCandidates(rep, body, first, cfg.MaxCandidates)
	if len(candidates) == 0 {
		return Finding{}, false
	}

	prefix := string(a.prefixString(rep))
	suffix := ""
	if cp, ok := a.unmatchRune(first, follow); ok {
		suffix = string(cp)
	}

	for _, cand := range candidates {
		pump := string(cand.pump)
		if pump == "" {
			continue
		}
		trace, confirmed := a.validate(p, cfg, prefix, pump, suffix)
		if !confirmed {
			continue
		}

		f := Finding{
			Prefix:      prefix,
			Pump:        pump,
			Suffix:      suffix,
			Steps:       trace.Steps,
			Span:        [2]int{n.PatBegin, n.PatEnd},
			Exponential: cand.exponential,
		}
		attack := prefix + strings.Repeat(pump, cfg.PumpCount) + suffix
		log.Debug("confirmed backtracking attack",
			zap.String("pattern", p.String()),
			zap.String("pump", pump),
			zap.Uint64("steps", trace.Steps),
			zap.Bool("exponential", cand.exponential))

		if cfg.CrossValidate && !a.crossValidate(p, cfg, attack) {
			log.Warn("external engine completed the attack quickly; keeping finding",
				zap.String("pattern", p.String()),
				zap.String("pump", pump))
		}
		return f, true
	}
	return Finding{}, false
}

// validate scores one pump hypothesis against the instrumented matcher.
// The pump is repeated PumpCount times first; if the budget survives, the
// count escalates by doubling a few times so slow-growing blowups whose
// curve has not yet crossed the threshold at the seed count still
// register. A true blowup exhausts the budget at some doubling; anything
// linear never does.
func (a *analysis) validate(p *backrex.Pattern, cfg Config, prefix, pump, suffix string) (*backrex.Trace, bool) {
	const escalations = 4
	k := cfg.PumpCount
	for attempt := 0; attempt < escalations; attempt++ {
		attack := prefix + strings.Repeat(pump, k) + suffix
		trace := &backrex.Trace{Budget: cfg.Threshold}
		_, err := p.FindTraced(attack, trace)
		if err != nil && errors.Is(err, backrex.ErrBudgetExceeded) {
			return trace, true
		}
		k *= 2
	}
	return nil, false
}

// buildCandidates enumerates pump hypotheses for a repetition, cheapest
// and most deterministic first: single code points witnessing overlap
// (exponential), then representative body walks of increasing generosity.
func (a *analysis) buildCandidates(rep, body syntax.NodeID, first *charset.Set, limit int) []candidate {
	var out []candidate
	seen := make(map[string]bool)
	add := func(pump []rune, exponential bool) {
		if len(pump) == 0 || len(out) >= limit {
			return
		}
		key := string(pump)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate{pump: pump, exponential: exponential})
	}

	// Overlapping alternatives inside the body: the (a|a)* shape.
	for _, d := range a.descendants(rep) {
		dn := a.g.Node(d)
		if dn.Op != syntax.OpBranch {
			continue
		}
		if cp, ok := a.branchOverlap(dn); ok {
			add([]rune{cp}, true)
		}
	}

	// A nested backtracking repetition inside the body: the (a+)* shape.
	if a.hasNestedLoop(rep) {
		if cp, ok := a.minRune(first); ok {
			add([]rune{cp}, true)
		}
	}

	// Representative strings matched by one body iteration.
	add(a.walkString(body, optNone, 0), false)
	add(a.walkString(body, optShort, 0), false)
	add(a.walkString(body, optAll, 0), false)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].exponential != out[j].exponential {
			return out[i].exponential
		}
		return len(out[i].pump) < len(out[j].pump)
	})
	return out
}

// branchOverlap reports a code point two alternatives of the branch can
// both start with.
func (a *analysis) branchOverlap(n *syntax.Node) (rune, bool) {
	sets := make([]*charset.Set, 0, len(n.Atoms))
	for _, atom := range n.Atoms {
		if atom == syntax.InvalidNode {
			continue
		}
		if s := a.firstSet(atom, 0); s != nil {
			sets = append(sets, s)
		}
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			overlap := charset.Intersect(sets[i], sets[j])
			if cp, ok := overlap.Min(a.alphabet); ok {
				return cp, true
			}
		}
	}
	return 0, false
}

// hasNestedLoop reports whether the repetition contains another
// backtracking repetition, the classic exponential nesting.
func (a *analysis) hasNestedLoop(rep syntax.NodeID) bool {
	for _, d := range a.descendants(rep) {
		if d == rep || !a.g.IsRepetition(d) {
			continue
		}
		_, max, mode := a.g.RepetitionBounds(d)
		if mode == syntax.Possessive || mode == syntax.Atomic {
			continue
		}
		if max >= 2 {
			return true
		}
	}
	return false
}
