package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/kyokomi/emoji/v2"
)

// Emoji completes ":shortcode:" tokens. Shortcodes starting with the typed
// text come first, then shortcodes containing it, each group alphabetical.
type Emoji struct {
	prefix rune
	codes  []string
	lower  []string
	glyphs map[string]string
}

// NewEmoji builds a provider from the GitHub shortcode set plus extra,
// where extra wins.
func NewEmoji(prefix rune, extra map[string]string) *Emoji {
	codeMap := emoji.CodeMap()
	glyphs := make(map[string]string, len(codeMap)+len(extra))
	for code, glyph := range codeMap {
		glyphs[strings.Trim(code, ":")] = strings.TrimSpace(glyph)
	}
	for code, glyph := range extra {
		glyphs[strings.Trim(code, string(prefix))] = glyph
	}

	codes := make([]string, 0, len(glyphs))
	for code := range glyphs {
		if code != "" {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	lower := make([]string, len(codes))
	for i, code := range codes {
		lower[i] = strings.ToLower(code)
	}
	return &Emoji{prefix: prefix, codes: codes, lower: lower, glyphs: glyphs}
}

// Suggest implements Provider.
func (e *Emoji) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix, typed := splitQuery(query)
	if prefix != e.prefix {
		return nil, nil
	}
	typed = strings.ToLower(strings.TrimSuffix(typed, string(e.prefix)))

	var starts, contains []Suggestion
	for i, code := range e.codes {
		switch {
		case strings.HasPrefix(e.lower[i], typed):
			starts = append(starts, e.suggestion(code))
		case strings.Contains(e.lower[i], typed):
			contains = append(contains, e.suggestion(code))
		}
	}

	suggestions := append(starts, contains...)
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (e *Emoji) suggestion(code string) Suggestion {
	p := string(e.prefix)
	text := p + code + p
	return Suggestion{
		Key:     text,
		Text:    text,
		Display: e.glyphs[code] + " " + text,
		Source:  "emoji",
	}
}
