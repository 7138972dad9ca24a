package syntax

import "github.com/backrex/backrex/charset"

// parseClass consumes a bracketed character class, '[' through ']', and
// returns its set. Supports negation, ranges, nested classes, union by
// juxtaposition, and intersection with '&&'. Case folding applies to the
// positive set before any negation so [^a] stays case-blind correctly.
func (p *parser) parseClass() *charset.Set {
	p.next() // '['
	negated := false
	if p.peek() == '^' {
		p.next()
		negated = true
	}
	set := p.parseClassBody(true)
	if p.next() != ']' {
		p.fail(ErrSyntax, "Unclosed character class")
	}
	if p.flags&CaseInsensitive != 0 {
		set = foldSet(set, p.flags&UnicodeCase != 0)
	}
	if negated {
		set = charset.Complement(set)
	}
	return set
}

// parseClassBody parses up to (not consuming) the closing ']'. The '&&'
// operator binds looser than juxtaposition: everything to its right up to
// the class end intersects with everything parsed so far.
func (p *parser) parseClassBody(first bool) *charset.Set {
	result := &charset.Set{}
	for {
		if p.atEnd() {
			p.fail(ErrSyntax, "Unclosed character class")
		}
		ch := p.peek()
		switch {
		case ch == ']' && !first:
			return result

		case ch == '[':
			nested := p.parseClass()
			result = charset.Union(result, nested)

		case ch == '&':
			p.next()
			if p.peek() != '&' {
				// A single '&' is literal.
				p.maybeRange(result, '&')
				first = false
				continue
			}
			p.next()
			rhs := p.parseClassBody(false)
			return charset.Intersect(result, rhs)

		default:
			cp, sub := p.parseClassAtom()
			if sub != nil {
				result = charset.Union(result, sub)
			} else {
				p.maybeRange(result, cp)
			}
		}
		first = false
	}
}

// parseClassAtom reads one class element: an escape (character- or
// set-valued) or a literal code point.
func (p *parser) parseClassAtom() (rune, *charset.Set) {
	ch := p.next()
	if ch != '\\' {
		return ch, nil
	}
	return p.parseClassEscape()
}

// parseClassEscape dispatches an in-class escape after its backslash.
func (p *parser) parseClassEscape() (rune, *charset.Set) {
	if p.atEnd() {
		p.fail(ErrSyntax, "Trailing '\\'")
	}
	ch := p.next()
	if set := p.classEscapeSet(ch); set != nil {
		return 0, set
	}
	p.unread()
	cp, _ := p.parseEscape(true)
	return cp, nil
}

// maybeRange adds cp, or the range cp-hi when a '-' with a right endpoint
// follows. A '-' before ']' or '[' stays literal.
func (p *parser) maybeRange(result *charset.Set, cp rune) {
	if p.peek() != '-' {
		result.Add(cp)
		return
	}
	// Peek past the dash without committing.
	mark := p.cursor
	p.next()
	switch p.peek() {
	case ']', '[':
		p.cursor = mark
		result.Add(cp)
		return
	}
	hi, sub := p.parseClassAtom()
	if sub != nil {
		p.fail(ErrSyntax, "Illegal character range")
	}
	if err := result.AddRange(cp, hi); err != nil {
		p.fail(ErrSyntax, "Illegal character range")
	}
}

// foldSet wraps a class set with the case-folding predicate so membership
// is case-blind. The wrapper stays lazy like any categorical set.
func foldSet(base *charset.Set, unicodeCase bool) *charset.Set {
	def := base.Default
	out := charset.NewPredicate(func(cp rune) bool {
		if base.Contains(cp) {
			return true
		}
		if unicodeCase {
			u := charset.FoldUnicode(cp)
			if u != cp && base.Contains(u) {
				return true
			}
			return base.Contains(charset.FoldASCII(cp)) && charset.FoldASCII(cp) != cp
		}
		partner := charset.FoldASCII(cp)
		return partner != cp && base.Contains(partner)
	}, def)
	return out
}
