// Package prefilter selects a candidate-position scanner for the
// unanchored starter from the pattern's extracted leading literals.
//
// Strategy selection, cheapest first:
//   - one single-byte literal        -> SWAR memchr
//   - two single-byte literals      -> SWAR memchr2
//   - one multi-byte literal        -> bytes.Index
//   - several literals              -> Aho-Corasick automaton
//
// A prefilter is only ever an accelerator: it may return positions that do
// not start a match, but never skips one that does.
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/backrex/backrex/literal"
	"github.com/backrex/backrex/simd"
)

// Prefilter finds candidate match start positions in a byte haystack.
type Prefilter interface {
	// Next returns the first candidate position at or after 'at', or
	// (-1, false) when no candidate remains.
	Next(haystack []byte, at int) (int, bool)
}

// New builds the cheapest prefilter able to serve the literal sequence.
// Returns nil when the sequence is empty or not exact.
func New(seq literal.Seq) Prefilter {
	if seq.IsEmpty() || !seq.Exact {
		return nil
	}
	if len(seq.Literals) == 1 {
		lit := seq.Literals[0]
		if len(lit) == 1 {
			return &memchrFilter{needle: lit[0]}
		}
		return &memmemFilter{needle: lit}
	}
	if allSingleBytes(seq.Literals) && len(seq.Literals) == 2 {
		return &memchr2Filter{n1: seq.Literals[0][0], n2: seq.Literals[1][0]}
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range seq.Literals {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoFilter{auto: auto}
}

func allSingleBytes(lits [][]byte) bool {
	for _, l := range lits {
		if len(l) != 1 {
			return false
		}
	}
	return true
}

type memchrFilter struct{ needle byte }

func (f *memchrFilter) Next(haystack []byte, at int) (int, bool) {
	if at >= len(haystack) {
		return -1, false
	}
	idx := simd.Memchr(haystack[at:], f.needle)
	if idx < 0 {
		return -1, false
	}
	return at + idx, true
}

type memchr2Filter struct{ n1, n2 byte }

func (f *memchr2Filter) Next(haystack []byte, at int) (int, bool) {
	if at >= len(haystack) {
		return -1, false
	}
	idx := simd.Memchr2(haystack[at:], f.n1, f.n2)
	if idx < 0 {
		return -1, false
	}
	return at + idx, true
}

type memmemFilter struct{ needle []byte }

func (f *memmemFilter) Next(haystack []byte, at int) (int, bool) {
	if at >= len(haystack) {
		return -1, false
	}
	idx := bytes.Index(haystack[at:], f.needle)
	if idx < 0 {
		return -1, false
	}
	return at + idx, true
}

type ahoFilter struct{ auto *ahocorasick.Automaton }

func (f *ahoFilter) Next(haystack []byte, at int) (int, bool) {
	if at >= len(haystack) {
		return -1, false
	}
	m := f.auto.Find(haystack, at)
	if m == nil {
		return -1, false
	}
	return m.Start, true
}
