package activeword

import (
	"testing"
	"unicode/utf8"
)

var testPrefixes = []rune{'@', ':', '/'}

func TestLocate(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		caret  int
		want   Word
		wantOK bool
	}{
		{
			name:   "mention at end",
			text:   "Hello @john",
			caret:  11,
			want:   Word{Word: "@john", Active: "@john", Offset: 6, Length: 5, ActiveLength: 5, EndOffset: 11},
			wantOK: true,
		},
		{
			name:   "caret inside token",
			text:   "Hello @john there",
			caret:  9,
			want:   Word{Word: "@john", Active: "@jo", Offset: 6, Length: 5, ActiveLength: 3, EndOffset: 11},
			wantOK: true,
		},
		{
			name:   "lone prefix",
			text:   "hi @",
			caret:  4,
			want:   Word{Word: "@", Active: "@", Offset: 3, Length: 1, ActiveLength: 1, EndOffset: 4},
			wantOK: true,
		},
		{
			name:   "emoji at text start",
			text:   ":smile",
			caret:  6,
			want:   Word{Word: ":smile", Active: ":smile", Offset: 0, Length: 6, ActiveLength: 6, EndOffset: 6},
			wantOK: true,
		},
		{
			name:   "emoji after space",
			text:   "hi :sm",
			caret:  6,
			want:   Word{Word: ":sm", Active: ":sm", Offset: 3, Length: 3, ActiveLength: 3, EndOffset: 6},
			wantOK: true,
		},
		{
			name:   "command followed by argument",
			text:   "/help me",
			caret:  5,
			want:   Word{Word: "/help", Active: "/help", Offset: 0, Length: 5, ActiveLength: 5, EndOffset: 5},
			wantOK: true,
		},
		{
			name:   "path token keeps slashes and dots",
			text:   "see @docs/setup.md please",
			caret:  9,
			want:   Word{Word: "@docs/setup.md", Active: "@docs", Offset: 4, Length: 14, ActiveLength: 5, EndOffset: 18},
			wantOK: true,
		},
		{
			name:   "non path token stops at slash",
			text:   ":a/b",
			caret:  2,
			want:   Word{Word: ":a", Active: ":a", Offset: 0, Length: 2, ActiveLength: 2, EndOffset: 2},
			wantOK: true,
		},
		{
			name:   "newline is a boundary",
			text:   "line\n@bob",
			caret:  9,
			want:   Word{Word: "@bob", Active: "@bob", Offset: 5, Length: 4, ActiveLength: 4, EndOffset: 9},
			wantOK: true,
		},
		{
			name:   "token after opening paren",
			text:   "(@bo)",
			caret:  4,
			want:   Word{Word: "@bo", Active: "@bo", Offset: 1, Length: 3, ActiveLength: 3, EndOffset: 4},
			wantOK: true,
		},
		{
			name:   "mention may cross one space",
			text:   "x @ab cd",
			caret:  8,
			want:   Word{Word: "@ab cd", Active: "@ab cd", Offset: 2, Length: 6, ActiveLength: 6, EndOffset: 8},
			wantOK: true,
		},
		{
			name:   "offsets count runes",
			text:   "héllo @jö",
			caret:  9,
			want:   Word{Word: "@jö", Active: "@jö", Offset: 6, Length: 3, ActiveLength: 3, EndOffset: 9},
			wantOK: true,
		},
		{name: "no boundary before prefix", text: "email@domain.com", caret: 16},
		{name: "prefix glued to word", text: "a@b", caret: 3},
		{name: "closed by trailing space", text: "hi @john ", caret: 9},
		{name: "plain word", text: "Hello world", caret: 11},
		{name: "caret right after space", text: "Hello world", caret: 6},
		{name: "second space ends scan", text: "x :ab cd", caret: 8},
		{name: "caret at start", text: "@john", caret: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Locate(tc.text, Caret(tc.caret), testPrefixes)
			if ok != tc.wantOK {
				t.Fatalf("Locate(%q, %d) ok = %v, want %v (got %+v)", tc.text, tc.caret, ok, tc.wantOK, got)
			}
			if ok && got != tc.want {
				t.Errorf("Locate(%q, %d) = %+v, want %+v", tc.text, tc.caret, got, tc.want)
			}
		})
	}
}

func TestLocateCustomPrefixes(t *testing.T) {
	if got, ok := Locate("hi @bob", Caret(7), []rune{':'}); ok {
		t.Errorf("'@' is not configured but Locate returned %+v", got)
	}

	l := NewLocator([]rune{'#'})
	got, ok := l.Locate("see #12", Caret(7))
	if !ok || got.Word != "#12" || got.Offset != 4 {
		t.Errorf("Locate with '#' prefix = %+v, %v", got, ok)
	}
}

func TestLocateCustomStopChars(t *testing.T) {
	l := NewLocator(testPrefixes)
	l.StopChars = append([]rune{'|'}, DefaultStopChars...)

	got, ok := l.Locate("a|:x", Caret(4))
	if !ok || got.Offset != 2 || got.Word != ":x" {
		t.Errorf("Locate after custom stop char = %+v, %v", got, ok)
	}
}

func TestLocateCaretAtZero(t *testing.T) {
	texts := []string{"", "@", "@john", ":smile:", "/help", "hello @there"}
	for _, text := range texts {
		if got, ok := Locate(text, Caret(0), testPrefixes); ok {
			t.Errorf("Locate(%q, 0) = %+v, want no word", text, got)
		}
	}
}

func TestLocateRangeSelection(t *testing.T) {
	texts := []string{"@john", "hello @there", ":smile: ok", "/cmd @x"}
	for _, text := range texts {
		n := utf8.RuneCountInString(text)
		for start := 0; start < n; start++ {
			for end := start + 1; end <= n; end++ {
				if got, ok := Locate(text, Selection{Start: start, End: end}, testPrefixes); ok {
					t.Errorf("Locate(%q, {%d,%d}) = %+v, want no word", text, start, end, got)
				}
			}
		}
	}
}

func TestWordPrefix(t *testing.T) {
	w, ok := Locate("go :tada", Caret(8), testPrefixes)
	if !ok {
		t.Fatal("expected a word")
	}
	if w.Prefix() != ':' {
		t.Errorf("Prefix() = %q, want ':'", w.Prefix())
	}
	if (Word{}).Prefix() != 0 {
		t.Error("empty word should have no prefix")
	}
}
