package backrex

import (
	"github.com/backrex/backrex/charset"
	"github.com/backrex/backrex/syntax"
)

// exec matches one node at position i and, on success, its whole Next
// chain. Failure leaves the matcher state as it was before the call; any
// state written before a failing recursive call is reverted on the way
// out. Every entry counts one step against the trace budget; once the
// budget latches, the recursion unwinds without further work.
func (m *matcher) exec(id syntax.NodeID, i int) bool {
	if m.exceeded {
		return false
	}
	if !m.step(id, i) {
		return false
	}

	n := m.g.Node(id)
	switch n.Op {
	case syntax.OpAccept:
		m.last = i
		m.groups[0] = m.first
		m.groups[1] = m.last
		return true

	case syntax.OpLastAccept:
		if m.acceptMode == endAnchor && i != m.to {
			return false
		}
		m.last = i
		m.groups[0] = m.first
		m.groups[1] = m.last
		return true

	case syntax.OpLookBehindEnd:
		return i == m.lookbehindTo

	case syntax.OpStart:
		return m.execStart(n, i)

	case syntax.OpBegin:
		if i != m.from {
			return false
		}
		if m.exec(n.Next, i) {
			m.first = i
			m.groups[0] = m.first
			m.groups[1] = m.last
			return true
		}
		return false

	case syntax.OpEnd:
		if i != m.to {
			return false
		}
		m.hitEnd = true
		m.requireEnd = true
		return m.exec(n.Next, i)

	case syntax.OpCaret:
		// Perl does not match ^ at the end of input even after a newline.
		if i == m.to {
			m.hitEnd = true
			return false
		}
		if i > m.from {
			ch := m.input[i-1]
			if ch != '\n' && ch != '\r' && ch != 0x85 && (ch|1) != 0x2029 {
				return false
			}
			// \r\n is one line break.
			if ch == '\r' && m.input[i] == '\n' {
				return false
			}
		}
		return m.exec(n.Next, i)

	case syntax.OpUnixCaret:
		if i == m.to {
			m.hitEnd = true
			return false
		}
		if i > m.from && m.input[i-1] != '\n' {
			return false
		}
		return m.exec(n.Next, i)

	case syntax.OpDollar:
		return m.execDollar(n, i, n.Min != 0)

	case syntax.OpUnixDollar:
		return m.execUnixDollar(n, i, n.Min != 0)

	case syntax.OpLastMatch:
		anchor := m.oldLast
		if anchor < 0 {
			anchor = m.from
		}
		if i != anchor {
			return false
		}
		return m.exec(n.Next, i)

	case syntax.OpBound:
		if m.boundCheck(n, i)&int(n.Bound) == 0 {
			return false
		}
		return m.exec(n.Next, i)

	case syntax.OpLineEnding:
		if i < m.to {
			ch := m.input[i]
			if ch == '\r' && i+1 < m.to && m.input[i+1] == '\n' {
				return m.exec(n.Next, i+2)
			}
			if n.Set.Contains(ch) {
				return m.exec(n.Next, i+1)
			}
			return false
		}
		m.hitEnd = true
		return false

	case syntax.OpChar:
		if i < m.to {
			if m.input[i] == n.Cp {
				return m.exec(n.Next, i+1)
			}
			return false
		}
		m.hitEnd = true
		return false

	case syntax.OpCharI:
		if i < m.to {
			ch := m.input[i]
			if ch == n.Cp || ch == n.Cp2 || charset.FoldASCII(ch) == n.Cp {
				return m.exec(n.Next, i+1)
			}
			return false
		}
		m.hitEnd = true
		return false

	case syntax.OpCharU:
		if i < m.to {
			if charset.FoldUnicode(m.input[i]) == n.Cp {
				return m.exec(n.Next, i+1)
			}
			return false
		}
		m.hitEnd = true
		return false

	case syntax.OpClass, syntax.OpDot, syntax.OpUnixDot, syntax.OpAll:
		if i < m.to {
			if n.Set.Contains(m.input[i]) {
				return m.exec(n.Next, i+1)
			}
			return false
		}
		m.hitEnd = true
		return false

	case syntax.OpSlice:
		return m.execSlice(n, i, func(a, b rune) bool { return a == b })

	case syntax.OpSliceI:
		// The buffer is pre-lowered; compare against the lowered input.
		return m.execSlice(n, i, func(a, b rune) bool {
			if b >= 'A' && b <= 'Z' {
				b = b - 'A' + 'a'
			}
			return a == b
		})

	case syntax.OpSliceU:
		return m.execSlice(n, i, func(a, b rune) bool {
			return a == charset.FoldUnicode(b)
		})

	case syntax.OpSliceBM:
		return m.execSliceBM(n, i)

	case syntax.OpGroupHead:
		save := m.locals[n.LocalIndex]
		m.locals[n.LocalIndex] = i
		ret := m.exec(n.Next, i)
		m.locals[n.LocalIndex] = save
		return ret

	case syntax.OpGroupTail:
		tmp := m.locals[n.LocalIndex]
		if tmp >= 0 {
			// Normal group exit: record the capture and continue.
			if n.GroupIndex > 0 {
				save0 := m.groups[n.GroupIndex*2]
				save1 := m.groups[n.GroupIndex*2+1]
				m.groups[n.GroupIndex*2] = tmp
				m.groups[n.GroupIndex*2+1] = i
				if !m.exec(n.Next, i) {
					m.groups[n.GroupIndex*2] = save0
					m.groups[n.GroupIndex*2+1] = save1
					return false
				}
				return true
			}
			return m.exec(n.Next, i)
		}
		// A negative local marks a sub-match run (GroupCurly, references):
		// the tail acts as the accept.
		m.last = i
		return true

	case syntax.OpGroupRef, syntax.OpGroupRefI:
		return m.execBackRef(n, i)

	case syntax.OpQues:
		switch n.Mode {
		case syntax.Greedy:
			if m.exec(n.Atom, i) && m.exec(n.Next, m.last) {
				return true
			}
			if m.exceeded {
				return false
			}
			return m.exec(n.Next, i)
		case syntax.Lazy:
			if m.exec(n.Next, i) {
				return true
			}
			if m.exceeded {
				return false
			}
			return m.exec(n.Atom, i) && m.exec(n.Next, m.last)
		case syntax.Possessive:
			if m.exec(n.Atom, i) {
				i = m.last
			}
			if m.exceeded {
				return false
			}
			return m.exec(n.Next, i)
		default: // Atomic
			if !m.exec(n.Atom, i) {
				return false
			}
			return m.exec(n.Next, m.last)
		}

	case syntax.OpCurly:
		return m.execCurly(n, i)

	case syntax.OpGroupCurly:
		return m.execGroupCurly(n, i)

	case syntax.OpBranch:
		conn := m.g.Node(n.Conn)
		for _, atom := range n.Atoms {
			if atom == syntax.InvalidNode {
				if m.exec(conn.Next, i) {
					return true
				}
			} else if m.exec(atom, i) {
				return true
			}
			if m.exceeded {
				return false
			}
		}
		return false

	case syntax.OpBranchConn:
		return m.exec(n.Next, i)

	case syntax.OpProlog:
		return m.loopInit(n.Loop, i)

	case syntax.OpLoop:
		return m.execLoop(id, n, i)

	case syntax.OpLazyLoop:
		return m.execLazyLoop(id, n, i)

	case syntax.OpPos:
		return m.exec(n.Atom, i) && m.exec(n.Next, i)

	case syntax.OpNeg:
		if i >= m.to {
			m.hitEnd = true
		}
		matched := m.exec(n.Atom, i)
		if m.exceeded {
			return false
		}
		return !matched && m.exec(n.Next, i)

	case syntax.OpBehind, syntax.OpNotBehind:
		return m.execBehind(n, i)
	}
	return false
}

// execStart drives the unanchored search: try every position up to
// to-minLength, using the literal scanner to skip positions that cannot
// start a match.
func (m *matcher) execStart(n *syntax.Node, i int) bool {
	guard := m.to - n.Min
	if i > guard {
		m.hitEnd = true
		return false
	}
	for i <= guard {
		if m.scanAhead(&i, guard) {
			break
		}
		if m.exec(n.Next, i) {
			m.first = i
			m.groups[0] = m.first
			m.groups[1] = m.last
			return true
		}
		if m.exceeded {
			return false
		}
		i++
	}
	m.hitEnd = true
	return false
}

// scanAhead advances *i to the next candidate start position using the
// pattern's prefilter, if any. It reports true when no candidate remains.
func (m *matcher) scanAhead(i *int, guard int) bool {
	sc := m.p.scanner
	if sc == nil {
		return false
	}
	m.prepareScan()
	pos, ok := sc.pf.Next(m.sbytes, m.byteAt[*i])
	if !ok {
		*i = guard + 1
		return true
	}
	r := m.runeAt[pos]
	if r > guard {
		*i = guard + 1
		return true
	}
	*i = r
	return false
}

func (m *matcher) execDollar(n *syntax.Node, i int, multiline bool) bool {
	endIndex := m.to
	if !multiline {
		if i < endIndex-2 {
			return false
		}
		if i == endIndex-2 {
			if m.input[i] != '\r' || m.input[i+1] != '\n' {
				return false
			}
		}
	}
	if i < endIndex {
		ch := m.input[i]
		if ch == '\n' {
			// No match between \r and \n.
			if i > m.from && m.input[i-1] == '\r' {
				return false
			}
			if multiline {
				return m.exec(n.Next, i)
			}
		} else if ch == '\r' || ch == 0x85 || (ch|1) == 0x2029 {
			if multiline {
				return m.exec(n.Next, i)
			}
		} else {
			return false
		}
	}
	// Matched at the current end: more input could invalidate it.
	m.hitEnd = true
	m.requireEnd = true
	return m.exec(n.Next, i)
}

func (m *matcher) execUnixDollar(n *syntax.Node, i int, multiline bool) bool {
	if i < m.to {
		ch := m.input[i]
		if ch != '\n' {
			return false
		}
		if !multiline && i != m.to-1 {
			return false
		}
		if multiline {
			return m.exec(n.Next, i)
		}
	}
	m.hitEnd = true
	m.requireEnd = true
	return m.exec(n.Next, i)
}

// boundCheck classifies position i as a left boundary, right boundary or
// non-boundary.
func (m *matcher) boundCheck(n *syntax.Node, i int) int {
	left := false
	if i > m.from {
		left = m.isWord(m.input[i-1], n.UnicodeWord)
	}
	right := false
	if i < m.to {
		right = m.isWord(m.input[i], n.UnicodeWord)
	} else {
		m.hitEnd = true
		m.requireEnd = true
	}
	if left != right {
		if right {
			return int(syntax.BoundLeft)
		}
		return int(syntax.BoundRight)
	}
	return int(syntax.BoundNone)
}

var unicodeWordSet = charset.UnicodeWord()

func (m *matcher) isWord(ch rune, unicodeWord bool) bool {
	if unicodeWord {
		return unicodeWordSet.Contains(ch)
	}
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func (m *matcher) execSlice(n *syntax.Node, i int, eq func(pat, in rune) bool) bool {
	buf := n.Buf
	if i+len(buf) > m.to {
		m.hitEnd = true
		return false
	}
	for j, cp := range buf {
		if !eq(cp, m.input[i+j]) {
			return false
		}
	}
	return m.exec(n.Next, i+len(buf))
}

// execSliceBM runs the Boyer-Moore search for a root literal: it scans
// forward shifting by the precomputed bad-character and good-suffix
// tables, attempting the continuation at every occurrence.
func (m *matcher) execSliceBM(n *syntax.Node, i int) bool {
	buf := n.Buf
	patLen := len(buf)
	last := m.to - patLen

	for i <= last {
		// Loop over pattern from right to left.
		j := patLen - 1
		for ; j >= 0; j-- {
			ch := m.input[i+j]
			if ch != buf[j] {
				// Shift the search to the right by the maximum of the
				// bad-character and good-suffix shifts.
				shift := j + 1 - n.LastOcc[ch&0x7F]
				if shift < n.OptoSft[j] {
					shift = n.OptoSft[j]
				}
				i += shift
				break
			}
		}
		if j >= 0 {
			continue
		}
		// The whole pattern matched starting at i.
		m.first = i
		if m.exec(n.Next, i+patLen) {
			m.first = i
			m.groups[0] = m.first
			m.groups[1] = m.last
			return true
		}
		if m.exceeded {
			return false
		}
		i++
	}
	m.hitEnd = true
	return false
}

func (m *matcher) execBackRef(n *syntax.Node, i int) bool {
	j := m.groups[n.GroupIndex*2]
	k := m.groups[n.GroupIndex*2+1]
	if j < 0 {
		// The referenced group has not matched.
		return false
	}
	groupSize := k - j
	if i+groupSize > m.to {
		m.hitEnd = true
		return false
	}
	if n.Op == syntax.OpGroupRef {
		for idx := 0; idx < groupSize; idx++ {
			if m.input[i+idx] != m.input[j+idx] {
				return false
			}
		}
	} else {
		for idx := 0; idx < groupSize; idx++ {
			if !charset.EqualFoldRune(m.input[i+idx], m.input[j+idx], n.UnicodeWord) {
				return false
			}
		}
	}
	return m.exec(n.Next, i+groupSize)
}

// execBehind scans back from i over the statically bounded length window,
// matching the condition forward with its end anchored at i.
func (m *matcher) execBehind(n *syntax.Node, i int) bool {
	savedLBT := m.lookbehindTo
	m.lookbehindTo = i
	from := i - n.Max
	if from < m.from {
		from = m.from
	}
	conditionMatched := false
	for j := i - n.Min; !conditionMatched && j >= from; j-- {
		conditionMatched = m.exec(n.Atom, j)
		if m.exceeded {
			m.lookbehindTo = savedLBT
			return false
		}
	}
	m.lookbehindTo = savedLBT
	if n.Op == syntax.OpNotBehind {
		conditionMatched = !conditionMatched
	}
	return conditionMatched && m.exec(n.Next, i)
}
