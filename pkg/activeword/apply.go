package activeword

// Apply commits suggestion into text and returns the new text and caret.
//
// With an active word under the caret, the whole token [Offset, EndOffset) is
// replaced, not just the typed part. Otherwise suggestion is inserted at the
// caret, replacing any selected range. When addSpace is set a single space is
// appended, unless the text after an active word already starts with one.
func (l *Locator) Apply(text string, sel Selection, suggestion string, addSpace bool) Result {
	runes := []rune(text)
	insert := []rune(suggestion)

	word, ok := l.Locate(text, sel)
	if !ok {
		if addSpace {
			insert = append(insert, ' ')
		}
		return Result{
			Text:           splice(runes, sel.Start, sel.End, insert),
			CursorPosition: sel.Start + len(insert),
		}
	}

	if addSpace && !followedBySpace(runes, word.EndOffset) {
		insert = append(insert, ' ')
	}
	return Result{
		Text:           splice(runes, word.Offset, word.EndOffset, insert),
		CursorPosition: word.Offset + len(insert),
	}
}

func followedBySpace(runes []rune, at int) bool {
	return at < len(runes) && runes[at] == ' '
}

func splice(runes []rune, from, to int, insert []rune) string {
	out := make([]rune, 0, len(runes)-(to-from)+len(insert))
	out = append(out, runes[:from]...)
	out = append(out, insert...)
	out = append(out, runes[to:]...)
	return string(out)
}
