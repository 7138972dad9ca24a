package backrex

import "github.com/backrex/backrex/syntax"

// Trace is the per-call instrumentation object threaded through every
// matcher step: the budget in, the observed step count out, and an
// optional (node, position) log when Record is set. One Trace belongs to
// exactly one match call.
type Trace struct {
	// Budget caps the number of matcher steps; 0 means unlimited.
	Budget uint64

	// Steps is the number of match-node entries so far.
	Steps uint64

	// Record enables the step log.
	Record bool

	// Log holds one entry per step when Record is set.
	Log []TracePoint
}

// TracePoint is one logged matcher step.
type TracePoint struct {
	Node syntax.NodeID
	Pos  int
}

// Match holds the result of a successful find: the overall span and every
// group capture.
type Match struct {
	input  []rune
	groups []int
	names  map[string]int

	// HitEnd reports whether the search hit the end of input; RequireEnd
	// whether more input could turn this match into a non-match.
	HitEnd, RequireEnd bool
}

// Start returns the rune index where the match begins.
func (m *Match) Start() int { return m.groups[0] }

// End returns the rune index just past the match.
func (m *Match) End() int { return m.groups[1] }

// Text returns the matched text.
func (m *Match) Text() string { return string(m.input[m.groups[0]:m.groups[1]]) }

// GroupCount returns the number of groups including group zero.
func (m *Match) GroupCount() int { return len(m.groups) / 2 }

// GroupIndex returns the [start, end) span of group i, or (-1, -1) if the
// group did not participate in the match.
func (m *Match) GroupIndex(i int) (int, int) {
	if i < 0 || i*2+1 >= len(m.groups) {
		return -1, -1
	}
	return m.groups[i*2], m.groups[i*2+1]
}

// Group returns the text of group i, or "" if it did not participate.
func (m *Match) Group(i int) string {
	lo, hi := m.GroupIndex(i)
	if lo < 0 || hi < 0 {
		return ""
	}
	return string(m.input[lo:hi])
}

// GroupByName returns the text captured by a named group.
func (m *Match) GroupByName(name string) string {
	idx, ok := m.names[name]
	if !ok {
		return ""
	}
	return m.Group(idx)
}

// acceptMode selects terminal behavior: a plain search accepts anywhere,
// whole-input matching requires the region end.
const (
	noAnchor = iota
	endAnchor
)

// matcher is the scratch state of one match call. It is never shared.
type matcher struct {
	p     *Pattern
	g     *syntax.Graph
	trace *Trace

	input    []rune
	from, to int

	first, last int
	oldLast     int

	groups []int
	locals []int

	hitEnd, requireEnd bool

	// lookbehindTo anchors the end of an in-flight look-behind condition.
	lookbehindTo int

	acceptMode int

	// exceeded latches once the budget runs out so the recursion unwinds
	// without further work.
	exceeded bool

	// Lazily built byte view for the prefilter scanner.
	scanReady bool
	sbytes    []byte
	byteAt    []int
	runeAt    []int
}

func (p *Pattern) newMatcher(input string, trace *Trace) *matcher {
	runes := []rune(input)
	m := &matcher{
		p:       p,
		g:       p.graph,
		trace:   trace,
		input:   runes,
		from:    0,
		to:      len(runes),
		first:   -1,
		last:    0,
		oldLast: -1,
		groups:  make([]int, p.graph.GroupCount*2),
		locals:  make([]int, p.graph.LocalCount),
	}
	m.reset()
	return m
}

func (m *matcher) reset() {
	for i := range m.groups {
		m.groups[i] = -1
	}
	for i := range m.locals {
		m.locals[i] = -1
	}
	m.hitEnd = false
	m.requireEnd = false
	m.exceeded = false
}

// matches runs the anchored whole-input match.
func (m *matcher) matches() (bool, error) {
	m.reset()
	m.acceptMode = endAnchor
	m.first = m.from
	ok := m.exec(m.g.MatchRoot, m.from)
	if m.exceeded {
		return false, &BudgetError{Steps: m.trace.Steps, Budget: m.trace.Budget}
	}
	if !ok {
		m.first = -1
	}
	return ok, nil
}

// find runs the unanchored search from the given position.
func (m *matcher) find(from int) (*Match, error) {
	m.reset()
	m.acceptMode = noAnchor
	if from < 0 {
		from = 0
	}
	if from > m.to {
		m.hitEnd = true
		return nil, nil
	}
	m.first = from
	ok := m.exec(m.g.Root, from)
	if m.exceeded {
		return nil, &BudgetError{Steps: m.trace.Steps, Budget: m.trace.Budget}
	}
	if !ok {
		m.first = -1
		return nil, nil
	}
	return m.toMatch(), nil
}

// findNext continues the search after a previous match, advancing one
// position past an empty match.
func (m *matcher) findNext(prev *Match) (*Match, error) {
	from := prev.End()
	m.oldLast = prev.End()
	if prev.Start() == prev.End() {
		from++
	}
	if from > m.to {
		m.hitEnd = true
		return nil, nil
	}
	return m.find(from)
}

func (m *matcher) toMatch() *Match {
	groups := make([]int, len(m.groups))
	copy(groups, m.groups)
	return &Match{
		input:      m.input,
		groups:     groups,
		names:      m.g.GroupNames,
		HitEnd:     m.hitEnd,
		RequireEnd: m.requireEnd,
	}
}

// step counts one node entry against the budget, logging it when the trace
// records. It reports false when the budget is exhausted.
func (m *matcher) step(id syntax.NodeID, i int) bool {
	m.trace.Steps++
	if m.trace.Record {
		m.trace.Log = append(m.trace.Log, TracePoint{Node: id, Pos: i})
	}
	if m.trace.Budget > 0 && m.trace.Steps > m.trace.Budget {
		m.exceeded = true
		return false
	}
	return true
}
