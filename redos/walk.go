package redos

import "github.com/backrex/backrex/syntax"

// Optional-inclusion levels for witness-string synthesis. A walk either
// skips everything optional, folds in only the optionals that contribute a
// single code point (flag-like fragments), or folds in everything once.
const (
	optNone = iota
	optShort
	optAll
)

const walkDepthLimit = 100

// walkString renders one representative input accepted by the chain
// starting at id: literals contribute themselves, classes their minimum
// alphabet member, required repetitions their body repeated min times,
// alternations their first branch. Zero-width nodes contribute nothing.
func (a *analysis) walkString(id syntax.NodeID, optLevel, depth int) []rune {
	var out []rune
	if depth > walkDepthLimit {
		return out
	}
	for id != syntax.InvalidNode {
		n := a.g.Node(id)
		switch n.Op {
		case syntax.OpChar, syntax.OpCharI, syntax.OpCharU:
			out = append(out, n.Cp)

		case syntax.OpSlice, syntax.OpSliceI, syntax.OpSliceU, syntax.OpSliceBM:
			out = append(out, n.Buf...)

		case syntax.OpClass, syntax.OpDot, syntax.OpUnixDot, syntax.OpAll:
			if cp, ok := a.minRune(a.matchSet(id)); ok {
				out = append(out, cp)
			}

		case syntax.OpLineEnding:
			out = append(out, '\n')

		case syntax.OpQues, syntax.OpCurly, syntax.OpGroupCurly,
			syntax.OpLoop, syntax.OpLazyLoop:
			min, _, _ := a.g.RepetitionBounds(id)
			body := a.g.SubNext[id]
			if body != syntax.InvalidNode {
				sub := a.walkString(body, optLevel, depth+1)
				switch {
				case min > 0:
					for j := 0; j < min; j++ {
						out = append(out, sub...)
					}
				case optLevel == optAll,
					optLevel == optShort && len(sub) == 1:
					out = append(out, sub...)
				}
			}

		case syntax.OpBranch:
			for _, atom := range n.Atoms {
				if atom != syntax.InvalidNode {
					out = append(out, a.walkString(atom, optLevel, depth+1)...)
					break
				}
			}

		case syntax.OpGroupRef, syntax.OpGroupRefI:
			// A reference repeats what its group matched; replay the
			// group's own witness.
			if head := a.groupHead(n.GroupIndex); head != syntax.InvalidNode {
				out = append(out, a.walkString(head, optLevel, depth+1)...)
			}
		}
		id = a.g.DirectNext[id]
	}
	return out
}

// groupHead locates the GroupHead whose tail carries the given capture
// index.
func (a *analysis) groupHead(groupIndex int) syntax.NodeID {
	for i := 0; i < a.g.Len(); i++ {
		n := a.g.Node(syntax.NodeID(i))
		if n.Op == syntax.OpGroupTail && n.GroupIndex == groupIndex {
			local := n.LocalIndex
			for j := 0; j < a.g.Len(); j++ {
				h := a.g.Node(syntax.NodeID(j))
				if h.Op == syntax.OpGroupHead && h.LocalIndex == local {
					return syntax.NodeID(j)
				}
			}
		}
	}
	return syntax.InvalidNode
}

// prefixString renders the input needed to drive the matcher from the
// pattern start to the repetition at target: every required consuming node
// on the way contributes its witness, optionals and lookarounds are
// skipped, and enclosing structures are descended along the ancestor path.
func (a *analysis) prefixString(target syntax.NodeID) []rune {
	// The ancestor path from the top level down to target.
	var path []syntax.NodeID
	for cur := a.g.DirectParent[target]; cur != syntax.InvalidNode; cur = a.g.DirectParent[cur] {
		path = append([]syntax.NodeID{cur}, path...)
	}
	path = append(path, target)

	var out []rune
	id := a.g.MatchRoot
	if a.g.Node(id).Op == syntax.OpStart {
		id = a.g.Node(id).Next
	}
	for _, waypoint := range path {
		out = append(out, a.walkTo(id, waypoint, 0)...)
		if waypoint == target {
			break
		}
		// Descend into the structure that contains the next waypoint.
		n := a.g.Node(waypoint)
		if n.Op == syntax.OpBranch {
			id = syntax.InvalidNode
			next := a.nextWaypoint(path, waypoint)
			for _, atom := range n.Atoms {
				if atom == syntax.InvalidNode {
					continue
				}
				if a.chainContains(atom, next) {
					id = atom
					break
				}
			}
		} else {
			id = a.g.SubNext[waypoint]
		}
		if id == syntax.InvalidNode {
			break
		}
	}
	return out
}

// nextWaypoint returns the path element following waypoint.
func (a *analysis) nextWaypoint(path []syntax.NodeID, waypoint syntax.NodeID) syntax.NodeID {
	for i, p := range path {
		if p == waypoint && i+1 < len(path) {
			return path[i+1]
		}
	}
	return syntax.InvalidNode
}

// chainContains reports whether the direct chain starting at id reaches
// want before ending.
func (a *analysis) chainContains(id, want syntax.NodeID) bool {
	for cur := id; cur != syntax.InvalidNode; cur = a.g.DirectNext[cur] {
		if cur == want {
			return true
		}
	}
	return false
}

// walkTo renders the witness for the chain from id up to (excluding) stop.
func (a *analysis) walkTo(id, stop syntax.NodeID, depth int) []rune {
	var out []rune
	if depth > walkDepthLimit {
		return out
	}
	for id != syntax.InvalidNode && id != stop {
		n := a.g.Node(id)
		switch n.Op {
		case syntax.OpChar, syntax.OpCharI, syntax.OpCharU:
			out = append(out, n.Cp)
		case syntax.OpSlice, syntax.OpSliceI, syntax.OpSliceU, syntax.OpSliceBM:
			out = append(out, n.Buf...)
		case syntax.OpClass, syntax.OpDot, syntax.OpUnixDot, syntax.OpAll:
			if cp, ok := a.minRune(a.matchSet(id)); ok {
				out = append(out, cp)
			}
		case syntax.OpLineEnding:
			out = append(out, '\n')
		case syntax.OpQues, syntax.OpCurly, syntax.OpGroupCurly,
			syntax.OpLoop, syntax.OpLazyLoop:
			min, _, _ := a.g.RepetitionBounds(id)
			if min > 0 {
				body := a.g.SubNext[id]
				sub := a.walkString(body, optNone, depth+1)
				for j := 0; j < min; j++ {
					out = append(out, sub...)
				}
			}
		case syntax.OpBranch:
			// A required alternation on the way: take its first witness.
			for _, atom := range n.Atoms {
				if atom != syntax.InvalidNode {
					out = append(out, a.walkTo(atom, stop, depth+1)...)
					break
				}
			}
		}
		id = a.g.DirectNext[id]
	}
	return out
}
