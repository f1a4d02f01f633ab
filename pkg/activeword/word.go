/*
Package activeword finds the prefixed token under the caret and splices a chosen suggestion back into the text.

A token is "active" when it starts with one of the configured prefix characters
(for example '@', ':' or '/'), sits at the start of the text or right after
whitespace, and the caret is inside or at the end of it:

	Hello @jo|hn there     -> Word{Word: "@john", Active: "@jo", Offset: 6}

All offsets, lengths and selections count runes, not bytes.
Callers must guarantee 0 <= Start <= End <= rune length of the text; the
functions in this package do not clamp or validate out-of-range input.
*/
package activeword

// Selection is a caret when Start == End, a range otherwise.
type Selection struct {
	Start int
	End   int
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

// IsCaret reports whether nothing is selected.
func (s Selection) IsCaret() bool {
	return s.Start == s.End
}

// Word is the located token.
// Word spans the whole token; Active is the part from the prefix up to the caret.
type Word struct {
	Word         string
	Active       string
	Offset       int
	Length       int
	ActiveLength int
	EndOffset    int
}

// Prefix returns the trigger character of the token.
func (w Word) Prefix() rune {
	for _, r := range w.Word {
		return r
	}
	return 0
}

// Result is what the host writes back into its text input.
type Result struct {
	Text           string
	CursorPosition int
}

var (
	// DefaultPrefixes are the trigger characters used when none are configured.
	DefaultPrefixes = []rune{'@', ':', '/'}

	// DefaultStopChars end a scan in either direction.
	DefaultStopChars = []rune{'\n', ',', '(', ')', '[', ']', '{', '}', '<', '>', ';', '!', '?', '.'}
)

// DefaultPathPrefix marks file-path tokens, which may contain '/' and '.'.
const DefaultPathPrefix = '@'

// Locator holds the character sets used to find and replace active words.
// The zero value recognizes no prefixes; use NewLocator.
type Locator struct {
	Prefixes   []rune
	StopChars  []rune
	PathPrefix rune
}

// NewLocator returns a Locator with the default stop characters and path prefix.
// A nil or empty prefixes slice falls back to DefaultPrefixes.
func NewLocator(prefixes []rune) *Locator {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	return &Locator{
		Prefixes:   prefixes,
		StopChars:  DefaultStopChars,
		PathPrefix: DefaultPathPrefix,
	}
}

// Locate finds the active word with the default stop characters.
func Locate(text string, sel Selection, prefixes []rune) (Word, bool) {
	return NewLocator(prefixes).Locate(text, sel)
}

// Apply commits suggestion with the default stop characters.
func Apply(text string, sel Selection, suggestion string, prefixes []rune, addSpace bool) Result {
	return NewLocator(prefixes).Apply(text, sel, suggestion, addSpace)
}

func (l *Locator) isPrefix(r rune) bool {
	return containsRune(l.Prefixes, r)
}

func (l *Locator) isStop(r rune) bool {
	return containsRune(l.StopChars, r)
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
