// Package literal extracts required leading literals from a compiled match
// graph. The prefilter layer turns them into candidate-position scanners
// for the unanchored starter: positions that cannot begin any of the
// extracted literals cannot begin a match.
package literal

import "github.com/backrex/backrex/syntax"

// Seq is a set of alternative leading literals. Empty means the pattern
// gives no usable prefix.
type Seq struct {
	Literals [][]byte

	// Exact reports whether every extracted literal is a case-exact,
	// ASCII-only prefix. Prefilters require it: byte offsets must agree
	// with rune offsets and folding must not widen the candidate set.
	Exact bool
}

// IsEmpty reports whether no literal was extracted.
func (s *Seq) IsEmpty() bool { return len(s.Literals) == 0 }

// maxBranchLiterals caps extraction from alternations; beyond it the
// automaton build cost outweighs the scan savings.
const maxBranchLiterals = 64

// Prefix extracts the leading literal alternatives of the graph's
// unanchored match root.
func Prefix(g *syntax.Graph) Seq {
	id := skipTransparent(g, g.MatchRoot)
	if id == syntax.InvalidNode {
		return Seq{}
	}
	n := g.Node(id)
	switch n.Op {
	case syntax.OpChar, syntax.OpSlice:
		if lit, ok := asciiLiteral(n); ok {
			return Seq{Literals: [][]byte{lit}, Exact: true}
		}
	case syntax.OpBranch:
		var lits [][]byte
		for _, atom := range n.Atoms {
			if atom == syntax.InvalidNode {
				// An empty alternative matches anywhere: no prefix exists.
				return Seq{}
			}
			lit, ok := branchLiteral(g, atom)
			if !ok {
				return Seq{}
			}
			lits = append(lits, lit)
			if len(lits) > maxBranchLiterals {
				return Seq{}
			}
		}
		return Seq{Literals: lits, Exact: true}
	}
	return Seq{}
}

// skipTransparent walks past nodes that consume nothing and impose no
// position constraint.
func skipTransparent(g *syntax.Graph, id syntax.NodeID) syntax.NodeID {
	for id != syntax.InvalidNode {
		switch g.Node(id).Op {
		case syntax.OpGroupHead, syntax.OpGroupTail, syntax.OpBranchConn:
			id = g.Node(id).Next
		default:
			return id
		}
	}
	return id
}

// branchLiteral extracts the leading literal of one alternative.
func branchLiteral(g *syntax.Graph, id syntax.NodeID) ([]byte, bool) {
	id = skipTransparent(g, id)
	if id == syntax.InvalidNode {
		return nil, false
	}
	return asciiLiteral(g.Node(id))
}

// asciiLiteral renders an exact Char or Slice node as bytes.
func asciiLiteral(n *syntax.Node) ([]byte, bool) {
	switch n.Op {
	case syntax.OpChar:
		if n.Cp > 0x7F {
			return nil, false
		}
		return []byte{byte(n.Cp)}, true
	case syntax.OpSlice:
		out := make([]byte, 0, len(n.Buf))
		for _, cp := range n.Buf {
			if cp > 0x7F {
				return nil, false
			}
			out = append(out, byte(cp))
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	return nil, false
}
