package backrex

import "github.com/backrex/backrex/syntax"

// execCurly matches a bounded repetition of a deterministic atom. The
// greedy form consumes the required minimum, extends as far as it can,
// then gives iterations back one at a time when the continuation fails;
// the lazy form tries the continuation before each extension; the
// possessive form never gives back. Zero-length iterations break out.
func (m *matcher) execCurly(n *syntax.Node, i int) bool {
	j := 0
	for ; j < n.Min; j++ {
		if !m.exec(n.Atom, i) {
			return false
		}
		i = m.last
	}
	if m.exceeded {
		return false
	}
	switch n.Mode {
	case syntax.Greedy:
		return m.curlyGreedy(n, i, j)
	case syntax.Lazy:
		return m.curlyLazy(n, i, j)
	default:
		return m.curlyPossessive(n, i, j)
	}
}

// curlyGreedy extends the repetition to its maximum, recursing when an
// iteration changes length, then backs off while the continuation fails.
func (m *matcher) curlyGreedy(n *syntax.Node, i, j int) bool {
	if j >= n.Max {
		return m.exec(n.Next, i)
	}
	backLimit := j
	for m.exec(n.Atom, i) {
		k := m.last - i
		if k == 0 {
			break
		}
		i = m.last
		j++
		for j < n.Max {
			if !m.exec(n.Atom, i) {
				break
			}
			if i+k != m.last {
				if m.curlyGreedy(n, m.last, j+1) {
					return true
				}
				break
			}
			i += k
			j++
		}
		for j >= backLimit {
			if m.exec(n.Next, i) {
				return true
			}
			if m.exceeded {
				return false
			}
			i -= k
			j--
		}
		return false
	}
	if m.exceeded {
		return false
	}
	return m.exec(n.Next, i)
}

func (m *matcher) curlyLazy(n *syntax.Node, i, j int) bool {
	for {
		if m.exec(n.Next, i) {
			return true
		}
		if m.exceeded || j >= n.Max {
			return false
		}
		if !m.exec(n.Atom, i) {
			return false
		}
		if i == m.last {
			return false
		}
		i = m.last
		j++
	}
}

func (m *matcher) curlyPossessive(n *syntax.Node, i, j int) bool {
	for ; j < n.Max; j++ {
		if !m.exec(n.Atom, i) {
			break
		}
		if i == m.last {
			break
		}
		i = m.last
	}
	if m.exceeded {
		return false
	}
	return m.exec(n.Next, i)
}

// execGroupCurly is the capture-aware form selected for deterministic
// quantified groups. The local slot is parked at -1 so the group's tail
// acts as the sub-match accept; iteration end positions are stacked so
// giving back restores the previous capture exactly.
func (m *matcher) execGroupCurly(n *syntax.Node, i int) bool {
	save0 := m.locals[n.LocalIndex]
	var save1, save2 int
	capt := n.Capture && n.GroupIndex > 0
	if capt {
		save1 = m.groups[n.GroupIndex*2]
		save2 = m.groups[n.GroupIndex*2+1]
	}
	m.locals[n.LocalIndex] = -1

	restore := func() {
		m.locals[n.LocalIndex] = save0
		if capt {
			m.groups[n.GroupIndex*2] = save1
			m.groups[n.GroupIndex*2+1] = save2
		}
	}

	setCapture := func(lo, hi int) {
		if capt {
			m.groups[n.GroupIndex*2] = lo
			m.groups[n.GroupIndex*2+1] = hi
		}
	}

	// ends[j] is the input position after the j-th completed iteration;
	// ends[0] is the entry position.
	ends := []int{i}
	for j := 0; j < n.Min; j++ {
		if !m.exec(n.Atom, i) {
			restore()
			return false
		}
		setCapture(i, m.last)
		i = m.last
		ends = append(ends, i)
	}
	if m.exceeded {
		restore()
		return false
	}

	ok := false
	switch n.Mode {
	case syntax.Greedy:
		// Maximum munch first.
		for len(ends)-1 < n.Max && m.exec(n.Atom, i) {
			if m.last == i {
				break
			}
			setCapture(i, m.last)
			i = m.last
			ends = append(ends, i)
		}
		// Give back while the continuation fails.
		for len(ends)-1 >= n.Min {
			if m.exec(n.Next, i) {
				ok = true
				break
			}
			if m.exceeded || len(ends) == 1 {
				break
			}
			ends = ends[:len(ends)-1]
			i = ends[len(ends)-1]
			if len(ends) >= 2 {
				setCapture(ends[len(ends)-2], i)
			} else if capt {
				m.groups[n.GroupIndex*2] = save1
				m.groups[n.GroupIndex*2+1] = save2
			}
			if len(ends)-1 < n.Min {
				break
			}
		}

	case syntax.Lazy:
		for {
			if m.exec(n.Next, i) {
				ok = true
				break
			}
			if m.exceeded || len(ends)-1 >= n.Max {
				break
			}
			if !m.exec(n.Atom, i) || m.last == i {
				break
			}
			setCapture(i, m.last)
			i = m.last
			ends = append(ends, i)
		}

	default: // Possessive
		for len(ends)-1 < n.Max && m.exec(n.Atom, i) {
			if m.last == i {
				break
			}
			setCapture(i, m.last)
			i = m.last
			ends = append(ends, i)
		}
		ok = !m.exceeded && m.exec(n.Next, i)
	}

	if !ok {
		restore()
		return false
	}
	m.locals[n.LocalIndex] = save0
	return true
}

// loopInit seeds a loop's iteration counter from its Prolog and runs the
// first body attempt (or the continuation straight away when min is 0 and
// the body fails).
func (m *matcher) loopInit(id syntax.NodeID, i int) bool {
	n := m.g.Node(id)
	save := m.locals[n.CountIndex]
	var ret bool
	if n.Op == syntax.OpLoop {
		if n.Min > 0 {
			m.locals[n.CountIndex] = 1
			ret = m.exec(n.Body, i)
		} else if n.Max > 0 {
			m.locals[n.CountIndex] = 1
			ret = m.exec(n.Body, i)
			if !ret && !m.exceeded {
				ret = m.exec(n.Next, i)
			}
		} else {
			ret = m.exec(n.Next, i)
		}
	} else {
		// Lazy: the continuation is preferred over entering the body.
		if n.Min > 0 {
			m.locals[n.CountIndex] = 1
			ret = m.exec(n.Body, i)
		} else if m.exec(n.Next, i) {
			ret = true
		} else if !m.exceeded && n.Max > 0 {
			m.locals[n.CountIndex] = 1
			ret = m.exec(n.Body, i)
		}
	}
	m.locals[n.CountIndex] = save
	return ret
}

// execLoop is the body re-entry path of a greedy non-deterministic loop:
// the body's terminal Next points here. Re-entering is only allowed when
// the iteration consumed input, which breaks zero-length cycles.
func (m *matcher) execLoop(id syntax.NodeID, n *syntax.Node, i int) bool {
	if i > m.locals[n.LocalIndex] {
		count := m.locals[n.CountIndex]
		if count < n.Min {
			m.locals[n.CountIndex] = count + 1
			b := m.exec(n.Body, i)
			if !b {
				m.locals[n.CountIndex] = count
			}
			return b
		}
		if count < n.Max {
			m.locals[n.CountIndex] = count + 1
			b := m.exec(n.Body, i)
			if m.exceeded {
				m.locals[n.CountIndex] = count
				return false
			}
			if !b {
				m.locals[n.CountIndex] = count
			} else {
				return true
			}
		}
	}
	return m.exec(n.Next, i)
}

// execLazyLoop prefers the continuation at every re-entry.
func (m *matcher) execLazyLoop(id syntax.NodeID, n *syntax.Node, i int) bool {
	if i > m.locals[n.LocalIndex] {
		count := m.locals[n.CountIndex]
		if count < n.Min {
			m.locals[n.CountIndex] = count + 1
			b := m.exec(n.Body, i)
			if !b {
				m.locals[n.CountIndex] = count
			}
			return b
		}
		if m.exec(n.Next, i) {
			return true
		}
		if m.exceeded {
			return false
		}
		if count < n.Max {
			m.locals[n.CountIndex] = count + 1
			b := m.exec(n.Body, i)
			if !b {
				m.locals[n.CountIndex] = count
			}
			return b
		}
		return false
	}
	return m.exec(n.Next, i)
}
