package syntax

import (
	"sync"

	"github.com/backrex/backrex/internal/conv"
	"github.com/backrex/backrex/internal/sparse"
)

// wire establishes the analyzer's second linking of the graph in a single
// pass: DirectNext/DirectPrev follow the control path an attacker
// traverses through the pattern, SubNext descends into repetition bodies
// and lookaround conditions, DirectParent points every node at its
// enclosing controller. Branch fan-out stays on the nodes themselves
// (Atoms), like the execution wiring.
func (g *Graph) wire() {
	n := g.Len()
	g.DirectNext = makeEdges(n)
	g.SubNext = makeEdges(n)
	g.DirectPrev = makeEdges(n)
	g.DirectParent = makeEdges(n)
	g.matOnce = make([]sync.Once, n)

	visited := sparse.NewSet(conv.IntToUint32(n))
	g.wireChain(g.MatchRoot, InvalidNode, visited)
}

func makeEdges(n int) []NodeID {
	edges := make([]NodeID, n)
	for i := range edges {
		edges[i] = InvalidNode
	}
	return edges
}

// wireChain walks one concatenation chain, linking consecutive elements
// with direct edges and recursing into sub-graphs.
func (g *Graph) wireChain(id, parent NodeID, visited *sparse.Set) {
	prev := InvalidNode
	for id != InvalidNode {
		if visited.Contains(uint32(id)) {
			return
		}
		n := g.Node(id)
		if n.Op == OpAccept || n.Op == OpLastAccept || n.Op == OpLookBehindEnd {
			return
		}
		visited.Insert(uint32(id))
		g.DirectParent[id] = parent
		if prev != InvalidNode {
			g.DirectNext[prev] = id
			g.DirectPrev[id] = prev
		}

		next := n.Next
		switch n.Op {
		case OpQues, OpCurly, OpGroupCurly:
			g.SubNext[id] = n.Atom
			g.wireChain(n.Atom, id, visited)

		case OpProlog:
			// Transparent: the attacker-facing repetition node is the Loop.
			next = n.Loop

		case OpLoop, OpLazyLoop:
			g.SubNext[id] = n.Body
			g.wireChain(n.Body, id, visited)

		case OpBranch:
			// The conn guard is marked first so every alternative's chain
			// stops at it instead of running into the continuation.
			visited.Insert(uint32(n.Conn))
			g.DirectParent[n.Conn] = parent
			for _, atom := range n.Atoms {
				if atom != InvalidNode {
					g.wireChain(atom, id, visited)
				}
			}
			// The direct path continues past the whole alternation.
			next = g.Node(n.Conn).Next

		case OpPos, OpNeg, OpBehind, OpNotBehind:
			g.SubNext[id] = n.Atom
			g.wireChain(n.Atom, id, visited)

		case OpStart:
			next = n.Next
		}

		prev = id
		id = next
	}
}

// EnclosingNeg reports whether id itself, or the construct enclosing the
// chain containing id, is directly preceded by a negative look-ahead, whose
// first set then constrains what id can match. Mirrors the direct-parent
// walk of the reference analyzer.
func (g *Graph) EnclosingNeg(id NodeID) (NodeID, bool) {
	p := id
	for g.DirectPrev[p] != InvalidNode {
		prev := g.DirectPrev[p]
		if g.DirectNext[prev] != p {
			break
		}
		p = prev
	}
	if prev := g.DirectPrev[id]; prev != InvalidNode && g.Node(prev).Op == OpNeg {
		return prev, true
	}
	if parent := g.DirectParent[p]; parent != InvalidNode {
		if prev := g.DirectPrev[parent]; prev != InvalidNode && g.Node(prev).Op == OpNeg {
			return prev, true
		}
	}
	return InvalidNode, false
}
