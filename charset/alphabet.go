package charset

// Alphabet is the bounded universe used to materialize categorical sets and
// to enumerate complements. Attack synthesis only ever draws witness
// characters from this universe, so its contents and order are part of the
// analyzer's observable behavior.
type Alphabet struct {
	runes []rune
	index map[rune]int
}

// defaultAlphabetRunes lists ASCII letters, digits, punctuation and a few
// control characters, in the order candidate characters are tried.
const defaultAlphabetRunes = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	"\t\n\b\r"

// DefaultAlphabet returns the fixed 90-character reference universe.
func DefaultAlphabet() *Alphabet {
	return NewAlphabet([]rune(defaultAlphabetRunes))
}

// NewAlphabet builds an alphabet from the given runes, keeping their order.
// Duplicates are dropped.
func NewAlphabet(runes []rune) *Alphabet {
	a := &Alphabet{index: make(map[rune]int, len(runes))}
	for _, cp := range runes {
		if _, ok := a.index[cp]; ok {
			continue
		}
		a.index[cp] = len(a.runes)
		a.runes = append(a.runes, cp)
	}
	return a
}

// Runes returns the alphabet members in order. The slice is shared and must
// not be modified.
func (a *Alphabet) Runes() []rune { return a.runes }

// Contains reports whether cp is part of the universe.
func (a *Alphabet) Contains(cp rune) bool {
	_, ok := a.index[cp]
	return ok
}

// Len returns the number of members.
func (a *Alphabet) Len() int { return len(a.runes) }

// FirstNotIn returns the first alphabet member not contained in s, or -1
// when s covers the whole universe.
func (a *Alphabet) FirstNotIn(s *Set) rune {
	for _, cp := range a.runes {
		if !s.Contains(cp) {
			return cp
		}
	}
	return -1
}
