/*
Package server implements msgpack IPC for active word completion.

Clients write one msgpack map per request to stdin and read one map per
response from stdout. Nothing but protocol messages is ever written to
stdout; logs go to stderr. The first message after start is

	{"status": "ready"}

# IPC

Every request carries an id, echoed in its response, and an action in "a".
Offsets and selections count characters (code points), not bytes.

Find the word under the caret:

	{"id": "1", "a": "locate", "t": "Hello @jo", "s": 9, "e": 9}
	{"id": "1", "ok": true, "w": {"w": "@jo", "aw": "@jo", "o": 6, "l": 3, "al": 3, "eo": 9}}

Locate and complete in one step. "l" is optional and capped by max_limit:

	{"id": "2", "a": "complete", "t": "Hello @jo", "s": 9, "e": 9, "l": 5}
	{"id": "2", "ok": true, "w": {...}, "s": [{"k": "@john", "t": "@john", "d": "@john", "r": 1}], "c": 1, "tm": 85}

"tm" is the lookup time in microseconds. Without an active word "ok" is
false and "s" is empty.

Commit a suggestion. "sp" overrides the configured add_space:

	{"id": "3", "a": "apply", "t": "Hello @jo", "s": 9, "e": 9, "x": "@john"}
	{"id": "3", "t": "Hello @john ", "c": 12}

"health" answers with status "ok" and provider stats, "reload" rereads the
config and dictionaries.

Failures answer with {"id", "e": message, "c": code}: 400 for bad requests,
including text that is not valid UTF-8, 500 for everything else.
*/
package server

import "errors"

var (
	// ErrUnknownAction is returned for an "a" the server does not know.
	ErrUnknownAction = errors.New("unknown action")
	// ErrTextTooLong is returned when "t" exceeds max_text characters.
	ErrTextTooLong = errors.New("text too long")
	// ErrBadSelection is returned for a selection outside the text.
	ErrBadSelection = errors.New("selection out of range")
	// ErrInvalidText is returned when "t" is not valid UTF-8.
	ErrInvalidText = errors.New("text is not valid UTF-8")
)

const (
	ActionLocate   = "locate"
	ActionComplete = "complete"
	ActionApply    = "apply"
	ActionHealth   = "health"
	ActionReload   = "reload"
)

// Request is the union of every request shape; unused fields stay zero.
type Request struct {
	ID         string `msgpack:"id"`
	Action     string `msgpack:"a"`
	Text       string `msgpack:"t"`
	Start      int    `msgpack:"s"`
	End        int    `msgpack:"e"`
	Limit      int    `msgpack:"l,omitempty"`
	Suggestion string `msgpack:"x,omitempty"`
	AddSpace   *bool  `msgpack:"sp,omitempty"`
}

// WordInfo is an active word on the wire.
type WordInfo struct {
	Word         string `msgpack:"w"`
	Active       string `msgpack:"aw"`
	Offset       int    `msgpack:"o"`
	Length       int    `msgpack:"l"`
	ActiveLength int    `msgpack:"al"`
	EndOffset    int    `msgpack:"eo"`
}

// LocateResponse answers "locate".
type LocateResponse struct {
	ID   string    `msgpack:"id"`
	OK   bool      `msgpack:"ok"`
	Word *WordInfo `msgpack:"w,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Key     string `msgpack:"k"`
	Text    string `msgpack:"t"`
	Display string `msgpack:"d"`
	Rank    uint16 `msgpack:"r"`
}

// CompletionResponse answers "complete".
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	OK          bool                   `msgpack:"ok"`
	Word        *WordInfo              `msgpack:"w,omitempty"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"tm"`
}

// ApplyResponse answers "apply".
type ApplyResponse struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"t"`
	Cursor int    `msgpack:"c"`
}

// StatusResponse answers "health" and "reload", and announces readiness.
type StatusResponse struct {
	ID     string         `msgpack:"id,omitempty"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// CompletionError holds basic error information for any failed request
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
