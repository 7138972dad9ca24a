package backrex

import (
	"github.com/backrex/backrex/literal"
	"github.com/backrex/backrex/prefilter"
	"github.com/backrex/backrex/syntax"
)

// scanner accelerates the unanchored starter by skipping positions that
// cannot begin a match, based on the pattern's required leading literals.
type scanner struct {
	pf prefilter.Prefilter
}

func newScanner(g *syntax.Graph) *scanner {
	pf := prefilter.New(literal.Prefix(g))
	if pf == nil {
		return nil
	}
	return &scanner{pf: pf}
}

// prepareScan lazily builds the byte view of the rune input together with
// the offset maps the prefilter needs. Extracted literals are ASCII, so
// every candidate byte offset lands on a rune boundary.
func (m *matcher) prepareScan() {
	if m.scanReady {
		return
	}
	m.scanReady = true
	m.byteAt = make([]int, len(m.input)+1)
	m.sbytes = []byte(string(m.input))
	m.runeAt = make([]int, len(m.sbytes)+1)
	b := 0
	for r, cp := range m.input {
		m.byteAt[r] = b
		m.runeAt[b] = r
		b += len(string(cp))
	}
	m.byteAt[len(m.input)] = b
	m.runeAt[len(m.sbytes)] = len(m.input)
}
