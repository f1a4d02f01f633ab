package activeword

// Locate returns the prefixed token under a collapsed caret.
// It reports false when a range is selected, the caret is at 0, the token is
// already closed by a trailing space, or the token does not start with a prefix.
func (l *Locator) Locate(text string, sel Selection) (Word, bool) {
	if sel.Start != sel.End || sel.Start == 0 {
		return Word{}, false
	}
	runes := []rune(text)

	start := l.findStart(runes, sel.Start)
	active := runes[start:sel.End]
	if len(active) == 0 || active[len(active)-1] == ' ' {
		return Word{}, false
	}
	if !l.isPrefix(active[0]) {
		return Word{}, false
	}

	end := l.findEnd(runes, sel.End, active[0] == l.PathPrefix)
	word := runes[start:end]
	return Word{
		Word:         string(word),
		Active:       string(active),
		Offset:       start,
		Length:       len(word),
		ActiveLength: len(active),
		EndOffset:    end,
	}, true
}

// findStart walks left from the caret and returns where the candidate token begins.
// At most one space may be crossed; the second one ends the scan.
func (l *Locator) findStart(runes []rune, caret int) int {
	spaceIndex := -1
	found := -1

	for i := caret - 1; i >= 0; i-- {
		r := runes[i]
		switch {
		case r == ' ':
			if spaceIndex >= 0 {
				return spaceIndex + 1
			}
			spaceIndex = i
		case l.isPrefix(r) && atBoundary(runes, i):
			if r == l.PathPrefix {
				return i
			}
			if found < 0 {
				found = i
			}
		case l.isStop(r):
			if found >= 0 {
				return found
			}
			return i + 1
		}
	}

	if spaceIndex >= 0 {
		return spaceIndex + 1
	}
	return 0
}

// findEnd walks right from the caret to the token's natural end.
// Path tokens keep '/' and '.' so "@docs/setup.md" stays whole.
func (l *Locator) findEnd(runes []rune, caret int, path bool) int {
	i := caret
	for ; i < len(runes); i++ {
		r := runes[i]
		if r == ' ' {
			break
		}
		if path && (r == '/' || r == '.') {
			continue
		}
		if r == '/' || l.isStop(r) {
			break
		}
	}
	return i
}

func atBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev := runes[i-1]
	return prev == ' ' || prev == '\n'
}
