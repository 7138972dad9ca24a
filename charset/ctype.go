package charset

import "unicode"

// Builders for the named predicate sets the parser hands out for escape
// sequences, POSIX classes and \p{...} properties. Each returns a fresh
// Set so graph nodes never share materialization state.

// Digits returns \d.
func Digits() *Set {
	s := &Set{}
	_ = s.AddRange('0', '9')
	s.Default = '0'
	return s
}

// Word returns \w: [a-zA-Z0-9_].
func Word() *Set {
	s := &Set{}
	_ = s.AddRange('a', 'z')
	_ = s.AddRange('A', 'Z')
	_ = s.AddRange('0', '9')
	s.Add('_')
	s.Default = 'a'
	return s
}

// Space returns \s: [ \t\n\x0B\f\r].
func Space() *Set {
	s := &Set{}
	for _, cp := range []rune{' ', '\t', '\n', 0x0B, '\f', '\r'} {
		s.Add(cp)
	}
	s.Default = ' '
	return s
}

// HorizWS returns \h.
func HorizWS() *Set {
	s := &Set{}
	for _, cp := range []rune{0x09, 0x20, 0xA0, 0x1680, 0x180E, 0x202F, 0x205F, 0x3000} {
		s.Add(cp)
	}
	_ = s.AddRange(0x2000, 0x200A)
	s.Default = ' '
	return s
}

// VertWS returns \v.
func VertWS() *Set {
	s := &Set{}
	for _, cp := range []rune{0x0A, 0x0B, 0x0C, 0x0D, 0x85, 0x2028, 0x2029} {
		s.Add(cp)
	}
	s.Default = '\n'
	return s
}

// UnicodeDigits returns \d under UNICODE_CHARACTER_CLASS.
func UnicodeDigits() *Set {
	return NewPredicate(unicode.IsDigit, '0')
}

// UnicodeWord returns \w under UNICODE_CHARACTER_CLASS.
func UnicodeWord() *Set {
	return NewPredicate(func(cp rune) bool {
		return unicode.IsLetter(cp) || unicode.IsDigit(cp) ||
			unicode.Is(unicode.Mn, cp) || unicode.Is(unicode.Mc, cp) ||
			unicode.Is(unicode.Pc, cp) || cp == 0x200C || cp == 0x200D
	}, 'a')
}

// UnicodeSpace returns \s under UNICODE_CHARACTER_CLASS.
func UnicodeSpace() *Set {
	return NewPredicate(unicode.IsSpace, ' ')
}

// Category returns the \p{L}-style Unicode general-category set, or nil when
// the name is unknown. One-letter names cover their whole group.
func Category(name string) *Set {
	table, ok := unicode.Categories[name]
	if !ok {
		return nil
	}
	return NewPredicate(func(cp rune) bool {
		return unicode.Is(table, cp)
	}, defaultFor(name))
}

// Script returns the \p{IsGreek}-style script set, or nil.
func Script(name string) *Set {
	table, ok := unicode.Scripts[name]
	if !ok {
		return nil
	}
	return NewPredicate(func(cp rune) bool {
		return unicode.Is(table, cp)
	}, 0)
}

// defaultFor picks a representative element for categories that have no
// alphabet member, so the analyzer can still emit a witness character.
func defaultFor(category string) rune {
	switch {
	case category == "" || category[0] == 'L':
		return 'a'
	case category[0] == 'N':
		return '0'
	case category[0] == 'P':
		return '!'
	case category[0] == 'Z':
		return ' '
	}
	return 'a'
}

// POSIX returns the \p{Alpha}-style POSIX/Java class set, or nil.
func POSIX(name string) *Set {
	switch name {
	case "Lower":
		s := &Set{}
		_ = s.AddRange('a', 'z')
		s.Default = 'a'
		return s
	case "Upper":
		s := &Set{}
		_ = s.AddRange('A', 'Z')
		s.Default = 'A'
		return s
	case "ASCII":
		s := &Set{}
		_ = s.AddRange(0, 0x7F)
		s.Default = 'a'
		return s
	case "Alpha":
		s := &Set{}
		_ = s.AddRange('a', 'z')
		_ = s.AddRange('A', 'Z')
		s.Default = 'a'
		return s
	case "Digit":
		return Digits()
	case "Alnum":
		s := &Set{}
		_ = s.AddRange('a', 'z')
		_ = s.AddRange('A', 'Z')
		_ = s.AddRange('0', '9')
		s.Default = 'a'
		return s
	case "Punct":
		s := &Set{}
		_ = s.AddRange('!', '/')
		_ = s.AddRange(':', '@')
		_ = s.AddRange('[', '`')
		_ = s.AddRange('{', '~')
		s.Default = '!'
		return s
	case "Graph":
		s := &Set{}
		_ = s.AddRange('!', '~')
		s.Default = 'a'
		return s
	case "Print":
		s := &Set{}
		_ = s.AddRange(' ', '~')
		s.Default = 'a'
		return s
	case "Blank":
		s := &Set{}
		s.Add(' ')
		s.Add('\t')
		s.Default = ' '
		return s
	case "Cntrl":
		s := &Set{}
		_ = s.AddRange(0, 0x1F)
		s.Add(0x7F)
		s.Default = '\t'
		return s
	case "XDigit":
		s := &Set{}
		_ = s.AddRange('0', '9')
		_ = s.AddRange('a', 'f')
		_ = s.AddRange('A', 'F')
		s.Default = '0'
		return s
	case "Space":
		return Space()
	}
	return nil
}
