package syntax

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/backrex/backrex/charset"
)

// parseEscape handles an escape sequence after its backslash has been
// consumed. It returns either a literal code point (node == InvalidNode) or
// a freshly allocated node. inClass restricts the accepted forms: anchors,
// boundaries and back-references are illegal inside a character class.
func (p *parser) parseEscape(inClass bool) (rune, NodeID) {
	begin := p.cursor - 1
	if p.atEnd() {
		p.fail(ErrSyntax, "Trailing '\\'")
	}
	ch := p.next()

	// Class-valued escapes; the class parser intercepts these through
	// parseClassEscape before this point.
	if set := p.classEscapeSet(ch); set != nil {
		id := p.g.alloc(Node{Op: OpClass, Set: set,
			PatBegin: begin, PatEnd: p.cursor,
			Self: string(p.pattern[begin:p.cursor])})
		return 0, id
	}

	switch ch {
	case 'b':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.g.alloc(Node{Op: OpBound, Bound: BoundBoth,
			UnicodeWord: p.flags&UnicodeCharClass != 0,
			PatBegin:    begin, PatEnd: p.cursor, Self: `\b`})
	case 'B':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.g.alloc(Node{Op: OpBound, Bound: BoundNone,
			UnicodeWord: p.flags&UnicodeCharClass != 0,
			PatBegin:    begin, PatEnd: p.cursor, Self: `\B`})
	case 'A':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.g.alloc(Node{Op: OpBegin, PatBegin: begin, PatEnd: p.cursor, Self: `\A`})
	case 'G':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.g.alloc(Node{Op: OpLastMatch, PatBegin: begin, PatEnd: p.cursor, Self: `\G`})
	case 'z':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.g.alloc(Node{Op: OpEnd, PatBegin: begin, PatEnd: p.cursor, Self: `\z`})
	case 'Z':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		op := OpDollar
		if p.flags&UnixLines != 0 {
			op = OpUnixDollar
		}
		return 0, p.g.alloc(Node{Op: op, PatBegin: begin, PatEnd: p.cursor, Self: `\Z`})
	case 'R':
		// \R is a node outside classes and rejected inside them.
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.newLineEnding(begin)
	case 'k':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		if p.next() != '<' {
			p.fail(ErrSyntax, "\\k is not followed by '<' for named capturing group")
		}
		name := p.parseGroupName()
		groupIndex, ok := p.g.GroupNames[name]
		if !ok {
			p.fail(ErrNoSuchGroup, "named capturing group <%s> does not exist", name)
		}
		return 0, p.newBackRef(groupIndex, begin)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if inClass {
			p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
		}
		return 0, p.parseBackRef(int(ch-'0'), begin)
	case '0':
		return p.parseOctal(), InvalidNode
	case 'x':
		return p.parseHex(), InvalidNode
	case 'u':
		return p.parseUnicodeEscape(), InvalidNode
	case 'c':
		if p.atEnd() {
			p.fail(ErrSyntax, "Illegal control escape sequence")
		}
		return p.next() ^ 64, InvalidNode
	case 'n':
		return '\n', InvalidNode
	case 'r':
		return '\r', InvalidNode
	case 't':
		return '\t', InvalidNode
	case 'f':
		return '\f', InvalidNode
	case 'a':
		return 0x07, InvalidNode
	case 'e':
		return 0x1B, InvalidNode
	}

	if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
		p.fail(ErrSyntax, "Illegal/unsupported escape sequence")
	}
	return ch, InvalidNode
}

// classEscapeSet returns the character set of a class-valued escape letter
// (\d \D \w \W \s \S \h \H \v \V \p \P), or nil.
func (p *parser) classEscapeSet(ch rune) *charset.Set {
	ucc := p.flags&UnicodeCharClass != 0
	switch ch {
	case 'd':
		if ucc {
			return charset.UnicodeDigits()
		}
		return charset.Digits()
	case 'D':
		if ucc {
			return charset.Complement(charset.UnicodeDigits())
		}
		return charset.Complement(charset.Digits())
	case 'w':
		if ucc {
			return charset.UnicodeWord()
		}
		return charset.Word()
	case 'W':
		if ucc {
			return charset.Complement(charset.UnicodeWord())
		}
		return charset.Complement(charset.Word())
	case 's':
		if ucc {
			return charset.UnicodeSpace()
		}
		return charset.Space()
	case 'S':
		if ucc {
			return charset.Complement(charset.UnicodeSpace())
		}
		return charset.Complement(charset.Space())
	case 'h':
		return charset.HorizWS()
	case 'H':
		return charset.Complement(charset.HorizWS())
	case 'v':
		return charset.VertWS()
	case 'V':
		return charset.Complement(charset.VertWS())
	case 'p':
		return p.parseProperty(false)
	case 'P':
		return p.parseProperty(true)
	}
	return nil
}

// newLineEnding allocates the \R node: any Unicode line break, with \r\n
// matched as a unit.
func (p *parser) newLineEnding(begin int) NodeID {
	s := &charset.Set{}
	for _, cp := range []rune{0x0A, 0x0B, 0x0C, 0x0D, 0x85, 0x2028, 0x2029} {
		s.Add(cp)
	}
	return p.g.alloc(Node{Op: OpLineEnding, Set: s,
		PatBegin: begin, PatEnd: p.cursor, Self: `\R`})
}

// newBackRef allocates the flag-appropriate back-reference node.
func (p *parser) newBackRef(groupIndex, begin int) NodeID {
	op := OpGroupRef
	if p.flags&CaseInsensitive != 0 {
		op = OpGroupRefI
	}
	return p.g.alloc(Node{Op: op, GroupIndex: groupIndex,
		UnicodeWord: p.flags&UnicodeCase != 0,
		PatBegin:    begin, PatEnd: p.cursor,
		Self: string(p.pattern[begin:p.cursor])})
}

// parseBackRef consumes further digits greedily as long as the resulting
// group exists; the reference must name a group already closed.
func (p *parser) parseBackRef(first, begin int) NodeID {
	refNum := first
	for !p.atEnd() && p.peek() >= '0' && p.peek() <= '9' {
		newNum := refNum*10 + int(p.peek()-'0')
		if newNum >= p.capCount {
			break
		}
		refNum = newNum
		p.next()
	}
	if !p.closedGroups[refNum] {
		p.fail(ErrNoSuchGroup, "No such group yet exists at this point in the pattern")
	}
	return p.newBackRef(refNum, begin)
}

// parseOctal reads the \0n, \0nn, \0mnn forms.
func (p *parser) parseOctal() rune {
	isOctal := func(c rune) bool { return c >= '0' && c <= '7' }
	if p.atEnd() || !isOctal(p.peek()) {
		p.fail(ErrSyntax, "Illegal octal escape sequence")
	}
	d1 := p.next() - '0'
	if p.atEnd() || !isOctal(p.peek()) {
		return d1
	}
	d2 := p.next() - '0'
	if d1 <= 3 && !p.atEnd() && isOctal(p.peek()) {
		d3 := p.next() - '0'
		return d1*64 + d2*8 + d3
	}
	return d1*8 + d2
}

// parseHex reads \xHH and \x{H...H}.
func (p *parser) parseHex() rune {
	if p.peek() == '{' {
		p.next()
		var v int64
		digits := 0
		for !p.atEnd() && p.peek() != '}' {
			d := hexVal(p.next())
			if d < 0 {
				p.fail(ErrSyntax, "Illegal hexadecimal escape sequence")
			}
			v = v*16 + int64(d)
			digits++
			if v > int64(charset.MaxCodePoint) {
				p.fail(ErrSyntax, "Hexadecimal codepoint is too big")
			}
		}
		if p.atEnd() || digits == 0 {
			p.fail(ErrSyntax, "Unclosed hexadecimal escape sequence")
		}
		p.next() // '}'
		return rune(v)
	}
	h1 := hexVal(p.next())
	h2 := hexVal(p.next())
	if h1 < 0 || h2 < 0 {
		p.fail(ErrSyntax, "Illegal hexadecimal escape sequence")
	}
	return rune(h1*16 + h2)
}

// parseUnicodeEscape reads \uHHHH, pairing a high surrogate with an
// immediately following \uHHHH low surrogate into one code point.
func (p *parser) parseUnicodeEscape() rune {
	cp := p.parseUxxxx()
	if utf16.IsSurrogate(cp) && cp >= 0xD800 && cp < 0xDC00 {
		mark := p.cursor
		if p.peek() == '\\' {
			p.next()
			if p.peek() == 'u' {
				p.next()
				lo := p.parseUxxxx()
				if lo >= 0xDC00 && lo < 0xE000 {
					return utf16.DecodeRune(cp, lo)
				}
			}
		}
		p.cursor = mark
	}
	return cp
}

func (p *parser) parseUxxxx() rune {
	var v int
	for i := 0; i < 4; i++ {
		if p.atEnd() {
			p.fail(ErrSyntax, "Illegal Unicode escape sequence")
		}
		d := hexVal(p.next())
		if d < 0 {
			p.fail(ErrSyntax, "Illegal Unicode escape sequence")
		}
		v = v*16 + d
	}
	return rune(v)
}

func hexVal(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// parseProperty reads the \p{name} / \P{name} / \pL forms and resolves the
// named Unicode property, block, script or POSIX class.
func (p *parser) parseProperty(negated bool) *charset.Set {
	var name string
	if p.peek() == '{' {
		p.next()
		i := p.cursor
		for !p.atEnd() && p.peek() != '}' {
			p.next()
		}
		if p.atEnd() {
			p.fail(ErrSyntax, "Unclosed character family")
		}
		name = string(p.pattern[i:p.cursor])
		p.next() // '}'
	} else {
		if p.atEnd() {
			p.fail(ErrSyntax, "Empty character family")
		}
		name = string(p.next())
	}
	if name == "" {
		p.fail(ErrSyntax, "Empty character family")
	}

	set := p.resolveProperty(name)
	if set == nil {
		p.fail(ErrSyntax, "Unknown character property name {%s}", name)
	}
	if negated {
		return charset.Complement(set)
	}
	return set
}

// resolveProperty maps a property name to its set: "In" prefixes are
// blocks, "Is" prefixes scripts (falling back to categories), "java"
// prefixes the ctype predicates, everything else a category or POSIX
// class.
func (p *parser) resolveProperty(name string) *charset.Set {
	switch {
	case strings.HasPrefix(name, "In") && len(name) > 2:
		// Block names resolve through the script table; the Go runtime
		// exposes no separate block catalog and the analyzer only ever
		// needs the predicate surface.
		return charset.Script(name[2:])
	case strings.HasPrefix(name, "Is") && len(name) > 2:
		if s := charset.Script(name[2:]); s != nil {
			return s
		}
		return charset.Category(name[2:])
	case strings.HasPrefix(name, "java") && len(name) > 4:
		return javaCtype(name[4:])
	default:
		if s := charset.Category(name); s != nil {
			return s
		}
		return charset.POSIX(name)
	}
}

// javaCtype mirrors the javaLowerCase-style predicate family.
func javaCtype(name string) *charset.Set {
	var pred func(rune) bool
	var def rune
	switch name {
	case "LowerCase":
		pred, def = unicode.IsLower, 'a'
	case "UpperCase":
		pred, def = unicode.IsUpper, 'A'
	case "Letter":
		pred, def = unicode.IsLetter, 'a'
	case "Digit":
		pred, def = unicode.IsDigit, '0'
	case "LetterOrDigit":
		pred = func(cp rune) bool { return unicode.IsLetter(cp) || unicode.IsDigit(cp) }
		def = 'a'
	case "Whitespace", "SpaceChar":
		pred, def = unicode.IsSpace, ' '
	default:
		return nil
	}
	return charset.NewPredicate(pred, def)
}
