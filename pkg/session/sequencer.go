// Package session keeps the suggestion state of one input field.
//
// A Sequencer turns a stream of active-word queries into a list of
// suggestions and a selected index. Lookups run asynchronously and only the
// result for the most recent query is ever made visible. An Input glues a
// Sequencer to an activeword.Locator and applies the chosen suggestion back
// to the text.
package session

import (
	"context"
	"sync"

	"github.com/bastiangx/typeahead/internal/logger"
	"github.com/bastiangx/typeahead/pkg/suggest"
	"github.com/charmbracelet/log"
)

// State is a snapshot of the visible suggestion state.
type State struct {
	Query       string
	Suggestions []suggest.Suggestion
	// Selected is an index into Suggestions, or -1 when nothing is selected.
	Selected int
	// Fetching is set while a lookup for Query is outstanding.
	Fetching bool
}

// Selection returns the selected suggestion, if any.
func (s State) Selection() (suggest.Suggestion, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Suggestions) {
		return suggest.Suggestion{}, false
	}
	return s.Suggestions[s.Selected], true
}

// Options controls selection and navigation.
type Options struct {
	// ClampSelection keeps the numeric index across result lists, clamped to
	// the new length. When false the previously selected key is looked up in
	// the new list instead.
	ClampSelection bool
	// AutoSelectFirst selects index 0 when results appear on an empty list.
	AutoSelectFirst bool
	// WrapAround makes MoveUp and MoveDown cycle past either end.
	WrapAround bool
	// Limit is passed to the provider as the maximum result count.
	Limit int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ClampSelection:  true,
		AutoSelectFirst: true,
		WrapAround:      true,
		Limit:           8,
	}
}

// Sequencer orders asynchronous lookups so that only the latest query wins.
//
// Every SetQuery bumps a generation counter and tags its lookup with it.
// A lookup that finishes after a newer query was issued is discarded on
// arrival; it is never cancelled.
type Sequencer struct {
	provider suggest.Provider
	opts     Options
	onChange func(State)
	logger   *log.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	version    uint64
	closed     bool
	inflight   sync.WaitGroup

	notifyMu      sync.Mutex
	queued        State
	queuedVersion uint64
	delivered     uint64
	delivering    bool

	// retry lets SetQuery repeat the current query after its lookup failed.
	retry bool
}

// NewSequencer creates a sequencer over provider. onChange may be nil; when
// set it is called after every visible transition, from whichever goroutine
// caused it, lookups included. Hosts with a UI thread must hand the state
// over themselves. onChange may call back into the sequencer; snapshots
// produced meanwhile are delivered after it returns, newest only.
func NewSequencer(provider suggest.Provider, opts Options, onChange func(State)) *Sequencer {
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}
	return &Sequencer{
		provider: provider,
		opts:     opts,
		onChange: onChange,
		logger:   logger.New("session"),
		state:    State{Selected: -1},
	}
}

// SetQuery starts a lookup for query. Repeating the current query does
// nothing unless its last lookup failed. An empty query clears the state at
// once and makes every outstanding lookup stale.
func (s *Sequencer) SetQuery(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed || (query == s.state.Query && !s.retry) {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.retry = false

	if query == "" {
		s.state = State{Selected: -1}
		snapshot, version := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snapshot, version)
		return
	}

	s.state.Query = query
	s.state.Fetching = true
	generation := s.generation
	snapshot, version := s.snapshotLocked()
	s.inflight.Add(1)
	s.mu.Unlock()

	s.notify(snapshot, version)
	go s.fetch(ctx, generation, query)
}

// Reset clears the state as if the query had become empty.
func (s *Sequencer) Reset() {
	s.SetQuery(context.Background(), "")
}

func (s *Sequencer) fetch(ctx context.Context, generation uint64, query string) {
	defer s.inflight.Done()

	results, err := s.provider.Suggest(ctx, query, s.opts.Limit)

	s.mu.Lock()
	if s.closed || generation != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale suggestions", "query", query, "count", len(results))
		return
	}
	s.state.Fetching = false
	if err != nil {
		s.retry = true
		snapshot, version := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Warn("suggestion lookup failed", "query", query, "err", err)
		s.notify(snapshot, version)
		return
	}
	if len(results) > s.opts.Limit {
		results = results[:s.opts.Limit]
	}

	s.state.Selected = s.nextSelection(s.state.Suggestions, s.state.Selected, results)
	s.state.Suggestions = results
	snapshot, version := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("suggestions resolved", "query", query, "count", len(results), "selected", snapshot.Selected)
	s.notify(snapshot, version)
}

// nextSelection picks the selected index for next given the list it replaces.
func (s *Sequencer) nextSelection(prev []suggest.Suggestion, selected int, next []suggest.Suggestion) int {
	if len(next) == 0 {
		return -1
	}
	if len(prev) == 0 && s.opts.AutoSelectFirst {
		return 0
	}
	if !s.opts.ClampSelection && selected >= 0 && selected < len(prev) {
		key := prev[selected].Key
		for i, sug := range next {
			if sug.Key == key {
				return i
			}
		}
	}
	if selected >= len(next) {
		return len(next) - 1
	}
	return selected
}

// MoveUp selects the previous suggestion.
func (s *Sequencer) MoveUp() { s.move(-1) }

// MoveDown selects the next suggestion.
func (s *Sequencer) MoveDown() { s.move(1) }

func (s *Sequencer) move(delta int) {
	s.mu.Lock()
	n := len(s.state.Suggestions)
	if s.closed || n == 0 {
		s.mu.Unlock()
		return
	}

	next := s.state.Selected + delta
	if s.state.Selected < 0 && delta < 0 {
		next = -1
	}
	switch {
	case next < 0 && s.opts.WrapAround:
		next = n - 1
	case next < 0:
		next = 0
	case next >= n && s.opts.WrapAround:
		next = 0
	case next >= n:
		next = n - 1
	}

	if next == s.state.Selected {
		s.mu.Unlock()
		return
	}
	s.state.Selected = next
	snapshot, version := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot, version)
}

// State returns a copy of the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state
	snapshot.Suggestions = append([]suggest.Suggestion(nil), s.state.Suggestions...)
	return snapshot
}

// Wait blocks until every lookup started so far has returned.
func (s *Sequencer) Wait() {
	s.inflight.Wait()
}

// Close stops the sequencer. Lookups still running are discarded when they
// return and later calls are ignored.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

func (s *Sequencer) snapshotLocked() (State, uint64) {
	s.version++
	snapshot := s.state
	snapshot.Suggestions = append([]suggest.Suggestion(nil), s.state.Suggestions...)
	return snapshot, s.version
}

// notify queues a snapshot for onChange unless a newer one is already
// queued or delivered. The first caller to find nobody delivering drains the
// queue, calling onChange without holding any lock.
func (s *Sequencer) notify(snapshot State, version uint64) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	if version > s.queuedVersion {
		s.queued = snapshot
		s.queuedVersion = version
	}
	if s.delivering {
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true
	for s.queuedVersion > s.delivered {
		next := s.queued
		s.delivered = s.queuedVersion
		s.queued = State{}
		s.notifyMu.Unlock()
		s.onChange(next)
		s.notifyMu.Lock()
	}
	s.delivering = false
	s.notifyMu.Unlock()
}
