package backrex

import "strings"

// FindAll returns successive non-overlapping matches. If limit > 0 at most
// limit matches are returned. An empty match advances the search by one
// position.
func (p *Pattern) FindAll(input string, limit int, budget uint64) ([]*Match, error) {
	if limit == 0 {
		return nil, nil
	}
	m := p.newMatcher(input, &Trace{Budget: budget})
	var out []*Match
	match, err := m.find(0)
	for err == nil && match != nil {
		out = append(out, match)
		if limit > 0 && len(out) >= limit {
			break
		}
		match, err = m.findNext(match)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Split slices input around matches of the pattern.
//
// The limit controls the result like the classic split contract:
// limit > 0 caps the number of pieces (the last piece holds the unsplit
// remainder), limit == 0 removes trailing empty strings, limit < 0 keeps
// everything.
func (p *Pattern) Split(input string, limit int, budget uint64) ([]string, error) {
	runes := []rune(input)
	m := p.newMatcher(input, &Trace{Budget: budget})

	var pieces []string
	index := 0
	matchLimited := limit > 0

	match, err := m.find(0)
	for err == nil && match != nil {
		if !matchLimited || len(pieces) < limit-1 {
			if index == 0 && index == match.Start() && match.Start() == match.End() {
				// No empty leading piece for a zero-width match at the
				// beginning of input.
				match, err = m.findNext(match)
				continue
			}
			pieces = append(pieces, string(runes[index:match.Start()]))
			index = match.End()
		} else if len(pieces) == limit-1 {
			pieces = append(pieces, string(runes[index:]))
			index = len(runes)
			break
		}
		match, err = m.findNext(match)
	}
	if err != nil {
		return nil, err
	}

	// No match: the result is the whole input.
	if index == 0 && len(pieces) == 0 {
		return []string{input}, nil
	}

	if !matchLimited || len(pieces) < limit {
		pieces = append(pieces, string(runes[index:]))
	}

	if limit == 0 {
		for len(pieces) > 0 && pieces[len(pieces)-1] == "" {
			pieces = pieces[:len(pieces)-1]
		}
	}
	return pieces, nil
}

// ReplaceAll returns input with every match replaced by the expansion of
// repl, where $0..$N and ${name} refer to capture groups and $$ is a
// literal dollar.
func (p *Pattern) ReplaceAll(input, repl string, budget uint64) (string, error) {
	return p.replace(input, repl, -1, budget)
}

// ReplaceFirst replaces only the first match.
func (p *Pattern) ReplaceFirst(input, repl string, budget uint64) (string, error) {
	return p.replace(input, repl, 1, budget)
}

func (p *Pattern) replace(input, repl string, limit int, budget uint64) (string, error) {
	matches, err := p.FindAll(input, limit, budget)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return input, nil
	}
	runes := []rune(input)
	var b strings.Builder
	last := 0
	for _, match := range matches {
		b.WriteString(string(runes[last:match.Start()]))
		p.expand(&b, repl, match)
		last = match.End()
	}
	b.WriteString(string(runes[last:]))
	return b.String(), nil
}

// expand appends repl with $-references resolved against match.
func (p *Pattern) expand(b *strings.Builder, repl string, match *Match) {
	runes := []rune(repl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		next := runes[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			j := i + 2
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			if j >= len(runes) {
				b.WriteRune(runes[i])
				continue
			}
			b.WriteString(match.GroupByName(string(runes[i+2 : j])))
			i = j
		case next >= '0' && next <= '9':
			// Consume digits greedily while the group exists.
			num := 0
			j := i + 1
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				candidate := num*10 + int(runes[j]-'0')
				if candidate >= match.GroupCount() && j > i+1 {
					break
				}
				num = candidate
				j++
			}
			b.WriteString(match.Group(num))
			i = j - 1
		default:
			b.WriteRune(runes[i])
		}
	}
}

// AsPredicate returns a function reporting whether an input contains a
// match, with the given budget per call. Budget exhaustion reports false.
func (p *Pattern) AsPredicate(budget uint64) func(string) bool {
	return func(input string) bool {
		m, err := p.Find(input, budget)
		return err == nil && m != nil
	}
}
