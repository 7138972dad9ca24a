package syntax

// TreeInfo carries the static facts a "study" pass computes over a
// sub-graph: the length window of any match, whether the maximum is
// meaningful, and whether the sub-graph matches deterministically (no
// backtracking choice points). The unanchored starter uses MinLength,
// look-behind compilation requires MaxValid, and quantified groups compile
// to the cheaper GroupCurly form only when Deterministic holds.
type TreeInfo struct {
	MinLength     int
	MaxLength     int
	MaxValid      bool
	Deterministic bool
}

func newTreeInfo() TreeInfo {
	return TreeInfo{MaxValid: true, Deterministic: true}
}

// Study computes the TreeInfo of the chain starting at id, following Next
// until a terminal or the stop node is reached. Pass InvalidNode as stop to
// study through to the accept sentinel.
func (g *Graph) Study(id, stop NodeID) TreeInfo {
	info := newTreeInfo()
	g.study(id, stop, &info, 0)
	return info
}

// studyDepthLimit bounds recursion for pathologically nested patterns.
const studyDepthLimit = 500

func (g *Graph) study(id, stop NodeID, info *TreeInfo, depth int) {
	if depth > studyDepthLimit {
		info.MaxValid = false
		info.Deterministic = false
		return
	}
	for id != InvalidNode && id != stop {
		n := g.Node(id)
		switch n.Op {
		case OpAccept, OpLastAccept, OpLookBehindEnd:
			return

		case OpChar, OpCharI, OpCharU, OpClass, OpDot, OpUnixDot, OpAll:
			info.MinLength++
			if info.MaxValid {
				info.MaxLength++
			}

		case OpLineEnding:
			// \R matches one or two characters (\r\n).
			info.MinLength++
			if info.MaxValid {
				info.MaxLength += 2
			}
			info.Deterministic = false

		case OpSlice, OpSliceI, OpSliceU, OpSliceBM:
			info.MinLength += len(n.Buf)
			if info.MaxValid {
				info.MaxLength += len(n.Buf)
			}

		case OpBegin, OpEnd, OpCaret, OpUnixCaret, OpDollar, OpUnixDollar,
			OpLastMatch, OpBound, OpGroupHead, OpGroupTail, OpBranchConn:
			// Zero-width or bookkeeping: length unchanged.

		case OpProlog:
			// The loop controller carries the repetition facts.
			id = n.Loop
			continue

		case OpPos, OpNeg, OpBehind, OpNotBehind:
			// Lookaround consumes nothing regardless of its condition.

		case OpGroupRef, OpGroupRefI:
			// A reference's length depends on what the group captured.
			info.MaxValid = false
			info.Deterministic = false

		case OpQues:
			sub := newTreeInfo()
			g.study(n.Atom, InvalidNode, &sub, depth+1)
			if n.Mode == Atomic {
				info.MinLength += sub.MinLength
				if info.MaxValid && sub.MaxValid {
					info.MaxLength += sub.MaxLength
				} else {
					info.MaxValid = false
				}
			} else {
				// Optional: minimum unchanged, maximum grows.
				if info.MaxValid && sub.MaxValid {
					info.MaxLength += sub.MaxLength
				} else {
					info.MaxValid = false
				}
				info.Deterministic = false
			}

		case OpCurly:
			sub := newTreeInfo()
			g.study(n.Atom, InvalidNode, &sub, depth+1)
			info.MinLength += sub.MinLength * n.Min
			if n.Max == MaxRepeat {
				info.MaxValid = false
			} else if info.MaxValid && sub.MaxValid {
				info.MaxLength += sub.MaxLength * n.Max
			} else {
				info.MaxValid = false
			}
			if n.Min != n.Max || !sub.Deterministic {
				info.Deterministic = false
			}

		case OpGroupCurly:
			sub := newTreeInfo()
			g.study(n.Atom, InvalidNode, &sub, depth+1)
			info.MinLength += sub.MinLength * n.Min
			if n.Max == MaxRepeat {
				info.MaxValid = false
			} else if info.MaxValid && sub.MaxValid {
				info.MaxLength += sub.MaxLength * n.Max
			} else {
				info.MaxValid = false
			}
			if n.Min != n.Max || !sub.Deterministic {
				info.Deterministic = false
			}

		case OpLoop, OpLazyLoop:
			sub := newTreeInfo()
			g.study(n.Body, id, &sub, depth+1)
			info.MinLength += sub.MinLength * n.Min
			info.MaxValid = false
			info.Deterministic = false

		case OpBranch:
			var minAll, maxAll int
			first := true
			allMaxValid := true
			for _, atom := range n.Atoms {
				sub := newTreeInfo()
				if atom != InvalidNode {
					g.study(atom, n.Conn, &sub, depth+1)
				}
				if first {
					minAll, maxAll = sub.MinLength, sub.MaxLength
					first = false
				} else {
					if sub.MinLength < minAll {
						minAll = sub.MinLength
					}
					if sub.MaxLength > maxAll {
						maxAll = sub.MaxLength
					}
				}
				allMaxValid = allMaxValid && sub.MaxValid
			}
			info.MinLength += minAll
			if info.MaxValid && allMaxValid {
				info.MaxLength += maxAll
			} else {
				info.MaxValid = false
			}
			info.Deterministic = false
			// Continue past the alternation.
			id = g.Node(n.Conn).Next
			continue

		case OpStart:
			info.MaxValid = false
			info.Deterministic = false
		}
		id = n.Next
	}
}
