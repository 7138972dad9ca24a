package redos

import (
	"github.com/backrex/backrex/charset"
	"github.com/backrex/backrex/syntax"
)

// analysis carries the per-pattern state of one Analyze call.
type analysis struct {
	g        *syntax.Graph
	alphabet *charset.Alphabet
}

// setDepthLimit bounds the recursive set walks on pathological graphs.
const setDepthLimit = 200

// firstSet computes the set of code points that can legally begin the
// sub-graph at id: character-producing nodes answer directly, repetitions
// and lookarounds are entered through their sub edge, alternations union
// over their branches, and everything else defers to its direct successor.
func (a *analysis) firstSet(id syntax.NodeID, depth int) *charset.Set {
	if id == syntax.InvalidNode || depth > setDepthLimit {
		return nil
	}
	n := a.g.Node(id)
	switch n.Op {
	case syntax.OpAccept, syntax.OpLastAccept, syntax.OpLookBehindEnd:
		return nil
	case syntax.OpBranch:
		var result *charset.Set
		for _, atom := range n.Atoms {
			if atom == syntax.InvalidNode {
				continue
			}
			sub := a.firstSet(atom, depth+1)
			if sub == nil {
				continue
			}
			if result == nil {
				result = sub
			} else {
				result = charset.Union(result, sub)
			}
		}
		return result
	}
	if a.g.Consumes(id) {
		return a.matchSet(id)
	}
	if sub := a.g.SubNext[id]; sub != syntax.InvalidNode {
		return a.firstSet(sub, depth+1)
	}
	if next := a.g.DirectNext[id]; next != syntax.InvalidNode {
		return a.firstSet(next, depth+1)
	}
	return nil
}

// matchSet returns the code points a consuming node accepts, honoring a
// directly preceding negative look-ahead by subtracting its first set.
func (a *analysis) matchSet(id syntax.NodeID) *charset.Set {
	set := a.g.MatchSet(id, a.alphabet)
	if set == nil {
		return nil
	}
	if neg, ok := a.g.EnclosingNeg(id); ok {
		if negFirst := a.firstSet(a.g.SubNext[neg], 0); negFirst != nil {
			set = charset.Difference(set, negFirst)
		}
	}
	return set
}

// followSet computes the code points the matcher must see immediately
// after the last iteration of the repetition at id. When the repetition
// ends its enclosing chain the walk climbs to the parent's successor.
func (a *analysis) followSet(id syntax.NodeID) *charset.Set {
	cur := id
	for cur != syntax.InvalidNode {
		if next := a.g.DirectNext[cur]; next != syntax.InvalidNode {
			return a.firstSet(next, 0)
		}
		cur = a.g.DirectParent[cur]
	}
	return nil
}

// minRune picks the representative code point of a set: the first
// alphabet member, falling back to the set's default element.
func (a *analysis) minRune(set *charset.Set) (rune, bool) {
	if set == nil {
		return 0, false
	}
	if cp, ok := set.Min(a.alphabet); ok {
		return cp, true
	}
	if set.Default != 0 {
		return set.Default, true
	}
	return 0, false
}

// ancestorOf reports whether anc appears on id's parent chain.
func (a *analysis) ancestorOf(anc, id syntax.NodeID) bool {
	for cur := a.g.DirectParent[id]; cur != syntax.InvalidNode; cur = a.g.DirectParent[cur] {
		if cur == anc {
			return true
		}
	}
	return false
}

// descendants returns every node whose parent chain passes through id.
func (a *analysis) descendants(id syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	for i := 0; i < a.g.Len(); i++ {
		nid := syntax.NodeID(i)
		if a.ancestorOf(id, nid) {
			out = append(out, nid)
		}
	}
	return out
}

// unmatchRune picks a code point that violates the continuation after a
// repetition: the first alphabet member in neither the follow set nor the
// repetition's own first set, falling back to one merely outside the
// follow set.
func (a *analysis) unmatchRune(first, follow *charset.Set) (rune, bool) {
	blocked := emptySet()
	if follow != nil {
		blocked = follow
	}
	if first != nil {
		blocked = charset.Union(blocked, first)
	}
	if cp := a.alphabet.FirstNotIn(blocked); cp >= 0 {
		return cp, true
	}
	if follow != nil {
		if cp := a.alphabet.FirstNotIn(follow); cp >= 0 {
			return cp, true
		}
	}
	return 0, false
}

func emptySet() *charset.Set { return &charset.Set{} }
