package syntax

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// removeQEQuoting pre-expands \Q...\E quoted ranges so the parser proper
// never sees them: every quoted code point that could be taken for a
// metacharacter or combine with a neighboring escape is backslash-escaped,
// letters pass through unchanged, and digits, control characters and
// non-ASCII code points are written as \x{..} escapes so digits cannot form
// accidental back-references.
func removeQEQuoting(pattern string) string {
	if !strings.Contains(pattern, `\Q`) {
		return pattern
	}
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			if runes[i+1] == 'Q' {
				i += 2
				for i < len(runes) {
					if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == 'E' {
						i++ // loop increment skips the 'E'
						break
					}
					quoteRune(&b, runes[i])
					i++
				}
				continue
			}
			// Keep other escapes intact; a lone \E is dropped.
			if runes[i+1] == 'E' {
				i++
				continue
			}
			b.WriteRune(runes[i])
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func quoteRune(b *strings.Builder, cp rune) {
	switch {
	case cp >= 'a' && cp <= 'z' || cp >= 'A' && cp <= 'Z':
		b.WriteRune(cp)
	case cp >= '0' && cp <= '9':
		// \x{..} so a preceding backslash-digit cannot resolve as a
		// back-reference.
		writeHexEscape(b, cp)
	case cp < 0x20 || cp > unicode.MaxASCII:
		writeHexEscape(b, cp)
	default:
		b.WriteByte('\\')
		b.WriteRune(cp)
	}
}

func writeHexEscape(b *strings.Builder, cp rune) {
	const hex = "0123456789abcdef"
	b.WriteString(`\x{`)
	if cp == 0 {
		b.WriteByte('0')
	}
	var digits []byte
	for v := uint32(cp); v > 0; v >>= 4 {
		digits = append(digits, hex[v&0xF])
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
	b.WriteByte('}')
}

// normalizeCanonEq rewrites the pattern for canonical-equivalence matching:
// the text is NFD-normalized, then every base character followed by
// combining marks becomes a (?:...) alternation over all permutations of
// the mark sequence. Character classes get the equivalent alternations
// appended as a wrapping group.
func normalizeCanonEq(pattern string) string {
	runes := []rune(norm.NFD.String(pattern))
	var b strings.Builder
	lastCp := rune(-1)
	for i := 0; i < len(runes); {
		cp := runes[i]
		switch {
		case isCombining(cp) && lastCp >= 0:
			seq := []rune{lastCp}
			for i < len(runes) && isCombining(runes[i]) {
				seq = append(seq, runes[i])
				i++
			}
			// Drop the base character already emitted and replace it with
			// the alternation group.
			trimLastRune(&b, lastCp)
			b.WriteString("(?:")
			b.WriteString(equivalentAlternation(seq))
			b.WriteString(")")
			if i < len(runes) {
				lastCp = runes[i]
			}
			continue
		case cp == '[' && lastCp != '\\':
			i = normalizeCharClass(&b, runes, i)
		default:
			b.WriteRune(cp)
		}
		lastCp = cp
		i++
	}
	return b.String()
}

// normalizeCharClass copies a character class, appending an alternation of
// canonical equivalents for any combining sequences found inside it.
func normalizeCharClass(b *strings.Builder, runes []rune, i int) int {
	var class strings.Builder
	var eq strings.Builder
	lastCp := rune(-1)
	class.WriteByte('[')
	i++
	for {
		if i >= len(runes) {
			// Leave the malformed class to the parser for a positioned
			// error.
			b.WriteString(class.String())
			return i - 1
		}
		cp := runes[i]
		if cp == ']' && lastCp != '\\' {
			class.WriteByte(']')
			break
		}
		if isCombining(cp) && lastCp >= 0 {
			seq := []rune{lastCp}
			for i < len(runes) && isCombining(runes[i]) {
				seq = append(seq, runes[i])
				i++
			}
			trimLastRune(&class, lastCp)
			eq.WriteByte('|')
			eq.WriteString(equivalentAlternation(seq))
			continue
		}
		class.WriteRune(cp)
		lastCp = cp
		i++
	}
	if eq.Len() > 0 {
		b.WriteString("(?:")
		b.WriteString(class.String())
		b.WriteString(eq.String())
		b.WriteString(")")
	} else {
		b.WriteString(class.String())
	}
	return i
}

// equivalentAlternation produces base+marks alternated over all mark
// permutations: "âb̌" style sequences match in any combining order.
func equivalentAlternation(seq []rune) string {
	base, marks := seq[:1], seq[1:]
	if len(marks) == 0 {
		return string(base)
	}
	perms := permutations(marks)
	var alts []string
	for _, perm := range perms {
		alts = append(alts, string(base)+string(perm))
	}
	return strings.Join(alts, "|")
}

// permutations enumerates all orderings of marks. Combining sequences are
// short in practice; the factorial blowup is bounded by the permutation
// cap below.
const maxPermutedMarks = 5

func permutations(marks []rune) [][]rune {
	if len(marks) > maxPermutedMarks {
		return [][]rune{marks}
	}
	if len(marks) <= 1 {
		return [][]rune{append([]rune(nil), marks...)}
	}
	var out [][]rune
	for i := range marks {
		rest := make([]rune, 0, len(marks)-1)
		rest = append(rest, marks[:i]...)
		rest = append(rest, marks[i+1:]...)
		for _, sub := range permutations(rest) {
			out = append(out, append([]rune{marks[i]}, sub...))
		}
	}
	return out
}

func isCombining(cp rune) bool {
	return unicode.Is(unicode.Mn, cp)
}

// trimLastRune removes the trailing rune cp from the builder.
func trimLastRune(b *strings.Builder, cp rune) {
	s := b.String()
	s = s[:len(s)-len(string(cp))]
	b.Reset()
	b.WriteString(s)
}
