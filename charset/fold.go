package charset

import "unicode"

// AddFolded inserts cp together with its case-folded counterparts.
// With unicodeCase false only ASCII folding is applied, mirroring the
// CASE_INSENSITIVE / UNICODE_CASE flag split.
func (s *Set) AddFolded(cp rune, unicodeCase bool) {
	s.Add(cp)
	if !unicodeCase {
		switch {
		case cp >= 'a' && cp <= 'z':
			s.Add(cp - 'a' + 'A')
		case cp >= 'A' && cp <= 'Z':
			s.Add(cp - 'A' + 'a')
		}
		return
	}
	for f := unicode.SimpleFold(cp); f != cp; f = unicode.SimpleFold(f) {
		s.Add(f)
	}
}

// FoldASCII returns the ASCII case partner of cp, or cp itself.
func FoldASCII(cp rune) rune {
	switch {
	case cp >= 'a' && cp <= 'z':
		return cp - 'a' + 'A'
	case cp >= 'A' && cp <= 'Z':
		return cp - 'A' + 'a'
	}
	return cp
}

// FoldUnicode returns the simple case folding of cp used by the
// Unicode-case node variants: lower(upper(cp)).
func FoldUnicode(cp rune) rune {
	return unicode.ToLower(unicode.ToUpper(cp))
}

// EqualFoldRune reports whether a and b match case-blind under the given
// folding mode.
func EqualFoldRune(a, b rune, unicodeCase bool) bool {
	if a == b {
		return true
	}
	if unicodeCase {
		return FoldUnicode(a) == FoldUnicode(b)
	}
	return FoldASCII(a) == b
}
