// Package charset provides the code-point set algebra shared by the parser,
// the matcher and the vulnerability analyzer.
//
// A Set is a predicate over code points with three backing layers:
//   - a 256-bit bitmap for Latin-1 code points (O(1) membership),
//   - a sorted list of inclusive ranges for everything above Latin-1
//     (O(log n) membership),
//   - an optional categorical predicate (Unicode category, script, block,
//     POSIX class) that is only enumerated when a caller needs the concrete
//     characters, and then only against a bounded alphabet.
//
// The combinators (Union, Intersect, Difference, Complement) are pure: they
// never mutate their operands.
package charset

import (
	"errors"
	"sort"
)

// MaxCodePoint is the largest code point a Set can hold.
const MaxCodePoint rune = 0x10FFFF

// ErrInvalidRange is returned by AddRange when lo > hi.
var ErrInvalidRange = errors.New("charset: invalid range (lo > hi)")

// Range is an inclusive code-point range.
type Range struct {
	Lo, Hi rune
}

// Set is a set of code points.
//
// The zero value is an empty set. Sets built by the parser are treated as
// immutable once the pattern graph is published; the analyzer only adds
// materialized categorical contents, which is idempotent.
type Set struct {
	// latin is the bitmap fast path for code points < 256.
	latin [4]uint64

	// ranges covers code points >= 256, sorted by Lo, non-overlapping.
	ranges []Range

	// pred is the categorical predicate, nil for literal sets. A set with a
	// predicate answers Contains through it for code points not already in
	// the literal layers.
	pred func(rune) bool

	// Complemented marks the set as negated. Membership and enumeration
	// honor it. An empty set with Complemented true is the "no literal
	// character satisfies me" sentinel; callers fall back to Default.
	Complemented bool

	// Default is the representative element hint used when the set cannot
	// enumerate anything from the alphabet (for example a Unicode category
	// with no ASCII members).
	Default rune
}

// Empty reports whether the set has no literal members and no predicate.
func (s *Set) Empty() bool {
	if s.pred != nil {
		return false
	}
	for _, w := range s.latin {
		if w != 0 {
			return false
		}
	}
	return len(s.ranges) == 0
}

// Add inserts a single code point.
func (s *Set) Add(cp rune) {
	if cp < 256 {
		s.latin[cp>>6] |= 1 << uint(cp&63)
		return
	}
	s.insertRange(Range{cp, cp})
}

// AddRange inserts an inclusive range. Reversed ranges are rejected.
func (s *Set) AddRange(lo, hi rune) error {
	if lo > hi {
		return ErrInvalidRange
	}
	if hi > MaxCodePoint {
		hi = MaxCodePoint
	}
	for cp := lo; cp < 256 && cp <= hi; cp++ {
		s.latin[cp>>6] |= 1 << uint(cp&63)
	}
	if hi >= 256 {
		rlo := lo
		if rlo < 256 {
			rlo = 256
		}
		s.insertRange(Range{rlo, hi})
	}
	return nil
}

// insertRange merges r into the sorted range list.
func (s *Set) insertRange(r Range) {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Lo > r.Lo
	})
	s.ranges = append(s.ranges, Range{})
	copy(s.ranges[i+1:], s.ranges[i:])
	s.ranges[i] = r
	s.coalesce()
}

// coalesce merges adjacent and overlapping ranges in place.
func (s *Set) coalesce() {
	if len(s.ranges) < 2 {
		return
	}
	out := s.ranges[:1]
	for _, r := range s.ranges[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	s.ranges = out
}

// Contains reports whether cp is in the set, honoring Complemented.
func (s *Set) Contains(cp rune) bool {
	return s.containsRaw(cp) != s.Complemented
}

// containsRaw ignores the Complemented flag.
func (s *Set) containsRaw(cp rune) bool {
	if cp >= 0 && cp < 256 {
		if s.latin[cp>>6]&(1<<uint(cp&63)) != 0 {
			return true
		}
	} else {
		i := sort.Search(len(s.ranges), func(i int) bool {
			return s.ranges[i].Hi >= cp
		})
		if i < len(s.ranges) && s.ranges[i].Lo <= cp {
			return true
		}
	}
	if s.pred != nil {
		return s.pred(cp)
	}
	return false
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	out := &Set{
		latin:        s.latin,
		pred:         s.pred,
		Complemented: s.Complemented,
		Default:      s.Default,
	}
	out.ranges = append([]Range(nil), s.ranges...)
	return out
}

// NewPredicate builds a categorical set from a predicate. The set stays
// lazy: its characters are enumerated only by Materialize. def is the
// representative element hint used when the alphabet has no member.
func NewPredicate(pred func(rune) bool, def rune) *Set {
	return &Set{pred: pred, Default: def}
}

// Single builds a one-element set.
func Single(cp rune) *Set {
	s := &Set{}
	s.Add(cp)
	return s
}

// Materialize resolves a categorical set against the alphabet, caching the
// result in the literal layers and dropping the predicate. Literal sets are
// returned unchanged. The operation is idempotent, so a benign race between
// two analyzers produces the same contents; publication is the caller's
// concern (the graph wraps this in a sync.Once).
func (s *Set) Materialize(alphabet *Alphabet) {
	if s.pred == nil && !s.Complemented {
		return
	}
	// Snapshot membership before touching the literal layers: for a
	// complemented set, adding a member flips later Contains answers.
	members := s.Enumerate(alphabet)
	keep := Set{Default: s.Default}
	if !s.Complemented {
		// Literal members outside the alphabet survive materialization.
		keep.latin = s.latin
		keep.ranges = append([]Range(nil), s.ranges...)
	}
	*s = keep
	for _, cp := range members {
		s.Add(cp)
	}
}

// remove deletes a single code point from the literal layers.
func (s *Set) remove(cp rune) {
	if cp < 256 {
		s.latin[cp>>6] &^= 1 << uint(cp&63)
		return
	}
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Hi >= cp
	})
	if i >= len(s.ranges) || s.ranges[i].Lo > cp {
		return
	}
	r := s.ranges[i]
	switch {
	case r.Lo == cp && r.Hi == cp:
		s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
	case r.Lo == cp:
		s.ranges[i].Lo = cp + 1
	case r.Hi == cp:
		s.ranges[i].Hi = cp - 1
	default:
		s.ranges = append(s.ranges, Range{})
		copy(s.ranges[i+1:], s.ranges[i:])
		s.ranges[i] = Range{r.Lo, cp - 1}
		s.ranges[i+1] = Range{cp + 1, r.Hi}
	}
}

// Enumerate returns the members of the set drawn from the alphabet, in
// alphabet order. Categorical sets are consulted through their predicate
// without being materialized.
func (s *Set) Enumerate(alphabet *Alphabet) []rune {
	var out []rune
	for _, cp := range alphabet.Runes() {
		if s.Contains(cp) {
			out = append(out, cp)
		}
	}
	return out
}

// Min returns the smallest alphabet member of the set and true, or the
// Default hint and false when the alphabet has no member.
func (s *Set) Min(alphabet *Alphabet) (rune, bool) {
	for _, cp := range alphabet.Runes() {
		if s.Contains(cp) {
			return cp, true
		}
	}
	return s.Default, false
}

// Union returns a new set containing every member of a or b.
// Categorical operands are combined by predicate so laziness is preserved.
func Union(a, b *Set) *Set {
	if a.pred != nil || b.pred != nil || a.Complemented || b.Complemented {
		aa, bb := a, b
		return NewPredicate(func(cp rune) bool {
			return aa.Contains(cp) || bb.Contains(cp)
		}, pickDefault(a, b))
	}
	out := a.Clone()
	for i, w := range b.latin {
		out.latin[i] |= w
	}
	for _, r := range b.ranges {
		out.insertRange(r)
	}
	return out
}

// Intersect returns a new set containing members of both a and b.
//
// An intersection that ends up with no literal members is returned as an
// empty set with Complemented set, the "no literal character satisfies me"
// sentinel; callers pick the Default element instead.
func Intersect(a, b *Set) *Set {
	if a.pred != nil || b.pred != nil || a.Complemented || b.Complemented {
		aa, bb := a, b
		return NewPredicate(func(cp rune) bool {
			return aa.Contains(cp) && bb.Contains(cp)
		}, pickDefault(a, b))
	}
	out := &Set{Default: pickDefault(a, b)}
	for i := range out.latin {
		out.latin[i] = a.latin[i] & b.latin[i]
	}
	for _, r := range a.ranges {
		for _, q := range b.ranges {
			lo, hi := maxRune(r.Lo, q.Lo), minRune(r.Hi, q.Hi)
			if lo <= hi {
				out.insertRange(Range{lo, hi})
			}
		}
	}
	if out.Empty() {
		out.Complemented = true
	}
	return out
}

// Difference returns a new set with the members of a that are not in b.
func Difference(a, b *Set) *Set {
	if a.pred != nil || b.pred != nil || a.Complemented || b.Complemented {
		aa, bb := a, b
		return NewPredicate(func(cp rune) bool {
			return aa.Contains(cp) && !bb.Contains(cp)
		}, a.Default)
	}
	out := &Set{Default: a.Default}
	for i := range out.latin {
		out.latin[i] = a.latin[i] &^ b.latin[i]
	}
	for _, r := range a.ranges {
		parts := []Range{r}
		for _, q := range b.ranges {
			parts = subtractRange(parts, q)
		}
		for _, p := range parts {
			out.insertRange(p)
		}
	}
	return out
}

// Complement returns a new set matching exactly the code points a does not.
func Complement(a *Set) *Set {
	out := a.Clone()
	out.Complemented = !out.Complemented
	return out
}

// subtractRange removes q from every range in parts.
func subtractRange(parts []Range, q Range) []Range {
	var out []Range
	for _, p := range parts {
		if q.Hi < p.Lo || q.Lo > p.Hi {
			out = append(out, p)
			continue
		}
		if q.Lo > p.Lo {
			out = append(out, Range{p.Lo, q.Lo - 1})
		}
		if q.Hi < p.Hi {
			out = append(out, Range{q.Hi + 1, p.Hi})
		}
	}
	return out
}

func pickDefault(a, b *Set) rune {
	if a.Default != 0 {
		return a.Default
	}
	return b.Default
}

func minRune(a, b rune) rune {
	if a < b {
		return a
	}
	return b
}

func maxRune(a, b rune) rune {
	if a > b {
		return a
	}
	return b
}
