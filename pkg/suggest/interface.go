// Package suggest holds the suggestion providers an input session queries for its active word.
//
// Every provider receives the active word exactly as typed, prefix character
// included ("@jo", ":sm", "/he"), and returns ranked suggestions whose Text is
// the literal replacement for the whole token.
package suggest

import (
	"context"
	"unicode/utf8"
)

// Suggestion is one candidate replacement for the active word.
type Suggestion struct {
	// Key identifies the suggestion across result lists.
	Key string
	// Text replaces the token, prefix character included.
	Text string
	// Display is what a host renders in its overlay.
	Display   string
	Source    string `json:",omitempty"`
	Frequency int    `json:",omitempty"`
}

// Provider looks up suggestions for a query.
// Implementations must be safe for concurrent use; a session may have a
// stale lookup still running when it issues the next one.
type Provider interface {
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, query string, limit int) ([]Suggestion, error)

// Suggest calls f.
func (f ProviderFunc) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	return f(ctx, query, limit)
}

// splitQuery separates the prefix character from the rest of the query.
func splitQuery(query string) (rune, string) {
	if query == "" {
		return 0, ""
	}
	r, size := utf8.DecodeRuneInString(query)
	return r, query[size:]
}
