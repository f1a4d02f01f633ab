package session

import (
	"context"
	"sync"

	"github.com/bastiangx/typeahead/pkg/activeword"
)

// Key is a navigation key a host forwards to HandleKey.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyTab
	KeyEnter
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyTab:
		return "tab"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Input is the autocomplete state of one text field.
type Input struct {
	locator  *activeword.Locator
	seq      *Sequencer
	addSpace bool

	mu        sync.Mutex
	text      string
	sel       activeword.Selection
	dismissed string
}

// NewInput ties a locator and a sequencer to one text field.
func NewInput(locator *activeword.Locator, seq *Sequencer, addSpace bool) *Input {
	return &Input{
		locator:  locator,
		seq:      seq,
		addSpace: addSpace,
	}
}

// Update records the field's text and selection and refreshes suggestions
// for the word under the caret.
func (in *Input) Update(ctx context.Context, text string, sel activeword.Selection) {
	in.mu.Lock()
	in.text = text
	in.sel = sel

	query := ""
	if word, ok := in.locator.Locate(text, sel); ok {
		query = word.Active
	}
	if query != in.dismissed {
		in.dismissed = ""
	} else if query != "" {
		query = ""
	}
	in.mu.Unlock()

	in.seq.SetQuery(ctx, query)
}

// Text returns the text as last updated or committed.
func (in *Input) Text() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.text
}

// Selection returns the selection as last updated or committed.
func (in *Input) Selection() activeword.Selection {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sel
}

// State returns the sequencer state.
func (in *Input) State() State {
	return in.seq.State()
}

// Wait blocks until outstanding lookups have returned.
func (in *Input) Wait() { in.seq.Wait() }

func (in *Input) MoveUp()   { in.seq.MoveUp() }
func (in *Input) MoveDown() { in.seq.MoveDown() }

// Dismiss hides the suggestions until the active word changes.
func (in *Input) Dismiss() {
	in.mu.Lock()
	if word, ok := in.locator.Locate(in.text, in.sel); ok {
		in.dismissed = word.Active
	}
	in.mu.Unlock()
	in.seq.Reset()
}

// Commit replaces the active word with the selected suggestion. It reports
// false and changes nothing when no suggestion is selected.
func (in *Input) Commit() (activeword.Result, bool) {
	picked, ok := in.seq.State().Selection()
	if !ok {
		return activeword.Result{}, false
	}

	in.mu.Lock()
	res := in.locator.Apply(in.text, in.sel, picked.Text, in.addSpace)
	in.text = res.Text
	in.sel = activeword.Caret(res.CursorPosition)
	in.dismissed = ""
	in.mu.Unlock()

	in.seq.Reset()
	return res, true
}

// HandleKey maps a navigation key onto the session. handled reports whether
// the host should swallow the key; committed reports whether res holds new
// text and caret for the field.
//
// Keys are only handled while suggestions are showing. Tab selects the first
// suggestion when none is selected and commits; Enter commits only an
// existing selection so that it can still submit the field otherwise.
func (in *Input) HandleKey(k Key) (handled bool, res activeword.Result, committed bool) {
	st := in.seq.State()
	if len(st.Suggestions) == 0 {
		return false, activeword.Result{}, false
	}

	switch k {
	case KeyUp:
		in.seq.MoveUp()
		return true, activeword.Result{}, false
	case KeyDown:
		in.seq.MoveDown()
		return true, activeword.Result{}, false
	case KeyTab:
		if st.Selected < 0 {
			in.seq.MoveDown()
		}
		res, committed = in.Commit()
		return true, res, committed
	case KeyEnter:
		if st.Selected < 0 {
			return false, activeword.Result{}, false
		}
		res, committed = in.Commit()
		return committed, res, committed
	case KeyEscape:
		in.Dismiss()
		return true, activeword.Result{}, false
	}
	return false, activeword.Result{}, false
}
