package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/typeahead/internal/logger"
	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/bastiangx/typeahead/pkg/activeword"
	"github.com/bastiangx/typeahead/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Options are the settings a server applies to every request.
// They can be swapped at runtime with SetOptions.
type Options struct {
	Locator  *activeword.Locator
	AddSpace bool
	// Limit is used when a request has none.
	Limit    int
	MaxLimit int
	// MaxText is the longest accepted text, in characters.
	MaxText int
}

// Server handles the IPC for active word completion
type Server struct {
	provider suggest.Provider
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
	logger   *log.Logger

	mu       sync.RWMutex
	opts     Options
	reload   func() error
	stats    func() map[string]int
	requests int

	writeMu sync.Mutex
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(provider suggest.Provider, opts Options) *Server {
	return NewServerWithIO(provider, opts, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w.
func NewServerWithIO(provider suggest.Provider, opts Options, r io.Reader, w io.Writer) *Server {
	s := &Server{
		provider: provider,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
		logger:   logger.New("server"),
	}
	s.SetOptions(opts)
	return s
}

// SetOptions replaces the request settings, for example after a config reload.
func (s *Server) SetOptions(opts Options) {
	if opts.Locator == nil {
		opts.Locator = activeword.NewLocator(nil)
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 64
	}
	if opts.Limit <= 0 || opts.Limit > opts.MaxLimit {
		opts.Limit = min(8, opts.MaxLimit)
	}
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
}

// OnReload sets the hook run by the "reload" action.
func (s *Server) OnReload(fn func() error) {
	s.mu.Lock()
	s.reload = fn
	s.mu.Unlock()
}

// OnStats sets the hook whose counters "health" reports.
func (s *Server) OnStats(fn func() map[string]int) {
	s.mu.Lock()
	s.stats = fn
	s.mu.Unlock()
}

func (s *Server) options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Start announces readiness and serves requests until the input ends or
// ctx is cancelled. A clean end of input returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw msgpack.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping server")
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Unmarshaling request: %v", err)
			s.sendError("", fmt.Errorf("invalid request: %w", err), 400)
			continue
		}
		s.handleRequest(ctx, req)
	}
}

// handleRequest dispatches on the action; an empty action means "complete".
func (s *Server) handleRequest(ctx context.Context, req Request) {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	switch req.Action {
	case ActionComplete, "":
		s.handleComplete(ctx, req)
	case ActionLocate:
		s.handleLocate(req)
	case ActionApply:
		s.handleApply(req)
	case ActionHealth:
		s.handleHealth(req)
	case ActionReload:
		s.handleReload(req)
	default:
		s.sendError(req.ID, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action), 400)
	}
}

// validate checks the text and selection of req against opts.
func validate(req Request, opts Options) (activeword.Selection, error) {
	if !utf8.ValidString(req.Text) {
		return activeword.Selection{}, ErrInvalidText
	}
	n := utf8.RuneCountInString(req.Text)
	if opts.MaxText > 0 && n > opts.MaxText {
		return activeword.Selection{}, fmt.Errorf("%w: %d > %d", ErrTextTooLong, n, opts.MaxText)
	}
	if req.Start < 0 || req.Start > req.End || req.End > n {
		return activeword.Selection{}, fmt.Errorf("%w: [%d, %d] in %d characters", ErrBadSelection, req.Start, req.End, n)
	}
	return activeword.Selection{Start: req.Start, End: req.End}, nil
}

func (s *Server) locate(req Request, opts Options) (*WordInfo, bool, error) {
	sel, err := validate(req, opts)
	if err != nil {
		return nil, false, err
	}
	word, ok := opts.Locator.Locate(req.Text, sel)
	if !ok {
		return nil, false, nil
	}
	return &WordInfo{
		Word:         word.Word,
		Active:       word.Active,
		Offset:       word.Offset,
		Length:       word.Length,
		ActiveLength: word.ActiveLength,
		EndOffset:    word.EndOffset,
	}, true, nil
}

func (s *Server) handleLocate(req Request) {
	info, ok, err := s.locate(req, s.options())
	if err != nil {
		s.sendError(req.ID, err, 400)
		return
	}
	s.sendResponse(LocateResponse{ID: req.ID, OK: ok, Word: info})
}

func (s *Server) handleComplete(ctx context.Context, req Request) {
	opts := s.options()
	info, ok, err := s.locate(req, opts)
	if err != nil {
		s.sendError(req.ID, err, 400)
		return
	}
	if !ok {
		s.sendResponse(CompletionResponse{ID: req.ID, Suggestions: []CompletionSuggestion{}})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = opts.Limit
	}
	limit = min(limit, opts.MaxLimit)

	start := time.Now()
	suggestions, err := s.provider.Suggest(ctx, info.Active, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Errorf("Suggest(%q): %v", info.Active, err)
		s.sendError(req.ID, err, 500)
		return
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	s.sendResponse(CompletionResponse{
		ID:          req.ID,
		OK:          true,
		Word:        info,
		Suggestions: rankSuggestions(suggestions),
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// rankSuggestions numbers suggestions by position, 1 being the best.
func rankSuggestions(suggestions []suggest.Suggestion) []CompletionSuggestion {
	ranks := utils.Ranks(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sug := range suggestions {
		out[i] = CompletionSuggestion{
			Key:     sug.Key,
			Text:    sug.Text,
			Display: sug.Display,
			Rank:    ranks[i],
		}
	}
	return out
}

func (s *Server) handleApply(req Request) {
	opts := s.options()
	sel, err := validate(req, opts)
	if err != nil {
		s.sendError(req.ID, err, 400)
		return
	}
	if req.Suggestion == "" {
		s.sendError(req.ID, errors.New("missing suggestion 'x'"), 400)
		return
	}

	addSpace := opts.AddSpace
	if req.AddSpace != nil {
		addSpace = *req.AddSpace
	}
	res := opts.Locator.Apply(req.Text, sel, req.Suggestion, addSpace)
	s.sendResponse(ApplyResponse{ID: req.ID, Text: res.Text, Cursor: res.CursorPosition})
}

func (s *Server) handleHealth(req Request) {
	s.mu.RLock()
	statsFn := s.stats
	requests := s.requests
	s.mu.RUnlock()

	stats := map[string]int{"requests": requests}
	if statsFn != nil {
		for k, v := range statsFn() {
			stats[k] = v
		}
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Stats: stats})
}

func (s *Server) handleReload(req Request) {
	s.mu.RLock()
	reload := s.reload
	s.mu.RUnlock()

	if reload == nil {
		s.sendError(req.ID, errors.New("reload is not available"), 500)
		return
	}
	if err := reload(); err != nil {
		s.logger.Errorf("Reload failed: %v", err)
		s.sendError(req.ID, err, 500)
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "reloaded"})
}

// sendResponse encodes response as one msgpack message.
func (s *Server) sendResponse(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id string, err error, code int) {
	s.logger.Debug("request failed", "id", id, "code", code, "err", err)
	s.sendResponse(CompletionError{ID: id, Error: err.Error(), Code: code})
}
