package syntax

import (
	"sync"

	"github.com/backrex/backrex/charset"
)

// Graph is the compiled match graph. It is immutable after Parse returns,
// with one exception: categorical character sets materialize their contents
// on first enumeration, published through a per-node sync.Once so concurrent
// analyzers agree.
type Graph struct {
	// Pattern is the normalized pattern text; cursor spans refer to it.
	Pattern string

	// Flags the graph was compiled with (compile-time mask only; inline
	// modifiers are already baked into the nodes).
	Flags Flags

	nodes []Node

	// Root is the search entry (a Start wrapper, a Boyer-Moore slice, or
	// the match root itself when anchored). MatchRoot is the entry for
	// anchored whole-input matching.
	Root, MatchRoot NodeID

	// Accept and LastAccept are the shared terminal sentinels;
	// LookBehindEnd terminates look-behind condition chains.
	Accept, LastAccept, LookBehindEnd NodeID

	// GroupCount is the number of capturing groups plus one for group zero.
	// LocalCount is the number of matcher-local scratch slots.
	GroupCount, LocalCount int

	// GroupNames maps named groups to their capture indices.
	GroupNames map[string]int

	// Side tables of the analyzer wiring, indexed by NodeID. The direct
	// edges follow the control path an attacker traverses; sub edges
	// descend into repetition bodies, lookaround conditions and group
	// chains. InvalidNode marks absent edges.
	DirectNext, SubNext, DirectPrev, DirectParent []NodeID

	// matOnce guards per-node categorical set materialization.
	matOnce []sync.Once
}

// Node returns the node for the given ID. The pointer stays valid for the
// graph's lifetime; callers must not mutate through it.
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// alloc appends a node and returns its ID.
func (g *Graph) alloc(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return id
}

// MatchSet returns the set of code points the node can match, materialized
// against the alphabet. Slice variants contribute their first code point,
// the way the analyzer sees them. Returns nil for nodes that consume no
// characters.
func (g *Graph) MatchSet(id NodeID, alphabet *charset.Alphabet) *charset.Set {
	n := g.Node(id)
	switch n.Op {
	case OpChar:
		return charset.Single(n.Cp)
	case OpCharI:
		s := charset.Single(n.Cp)
		s.Add(n.Cp2)
		return s
	case OpCharU:
		s := &charset.Set{}
		s.AddFolded(n.Cp, true)
		return s
	case OpSlice, OpSliceBM:
		if len(n.Buf) == 0 {
			return nil
		}
		return charset.Single(n.Buf[0])
	case OpSliceI, OpSliceU:
		if len(n.Buf) == 0 {
			return nil
		}
		s := &charset.Set{}
		s.AddFolded(n.Buf[0], n.Op == OpSliceU)
		return s
	case OpClass, OpDot, OpUnixDot, OpAll, OpLineEnding:
		g.materialize(id, alphabet)
		return n.Set
	}
	return nil
}

// materialize resolves a categorical set in place, once.
func (g *Graph) materialize(id NodeID, alphabet *charset.Alphabet) {
	n := g.Node(id)
	if n.Set == nil {
		return
	}
	g.matOnce[id].Do(func() {
		n.Set.Materialize(alphabet)
	})
}

// Consumes reports whether the node consumes at least one input character
// when it matches.
func (g *Graph) Consumes(id NodeID) bool {
	switch g.Node(id).Op {
	case OpChar, OpCharI, OpCharU, OpSlice, OpSliceI, OpSliceU, OpSliceBM,
		OpClass, OpDot, OpUnixDot, OpAll, OpLineEnding:
		return true
	}
	return false
}

// IsRepetition reports whether the node is a repetition controller.
func (g *Graph) IsRepetition(id NodeID) bool {
	switch g.Node(id).Op {
	case OpQues, OpCurly, OpGroupCurly, OpLoop, OpLazyLoop:
		return true
	}
	return false
}

// RepetitionBody returns the entry of a repetition node's body, or
// InvalidNode.
func (g *Graph) RepetitionBody(id NodeID) NodeID {
	n := g.Node(id)
	switch n.Op {
	case OpQues, OpCurly, OpGroupCurly:
		return n.Atom
	case OpLoop, OpLazyLoop:
		return n.Body
	}
	return InvalidNode
}

// RepetitionBounds returns (min, max, mode) for a repetition node. OpQues
// reports 0..1.
func (g *Graph) RepetitionBounds(id NodeID) (int, int, QuantMode) {
	n := g.Node(id)
	switch n.Op {
	case OpQues:
		return 0, 1, n.Mode
	case OpCurly, OpGroupCurly, OpLoop, OpLazyLoop:
		return n.Min, n.Max, n.Mode
	}
	return 0, 0, Greedy
}
