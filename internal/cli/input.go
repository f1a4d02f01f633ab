// Package cli is an interactive loop for trying the engine by hand.
//
// Every line is the full content of a text field. A '|' marks the caret;
// without one the caret sits at the end of the line. The lines ":up",
// ":down", ":tab", ":enter" and ":esc" act like the keys a host forwards.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/typeahead/internal/logger"
	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/bastiangx/typeahead/pkg/activeword"
	"github.com/bastiangx/typeahead/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
)

const caretMark = "|"

var keyCommands = map[string]session.Key{
	":up":    session.KeyUp,
	":down":  session.KeyDown,
	":tab":   session.KeyTab,
	":enter": session.KeyEnter,
	":esc":   session.KeyEscape,
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// InputHandler reads lines from r, feeds them to an input session and
// prints what the session sees to w.
type InputHandler struct {
	input        *session.Input
	reader       io.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler creates a handler over input.
func NewInputHandler(input *session.Input, r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		input:  input,
		reader: r,
		out:    logger.NewWithConfig(w, "", log.InfoLevel, false, false, log.TextFormatter),
	}
}

// Start runs the loop until the input ends.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("typeahead CLI [DBG]")
	h.out.Print("type text, '|' marks the caret; :up :down :tab :enter :esc (Ctrl+C to exit)")

	scanner := bufio.NewScanner(h.reader)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		h.handleLine(ctx, scanner.Text())
	}
	return scanner.Err()
}

// handleLine processes one line: a key command or new field content.
func (h *InputHandler) handleLine(ctx context.Context, line string) {
	h.requestCount++

	if key, ok := keyCommands[strings.TrimSpace(line)]; ok {
		handled, res, committed := h.input.HandleKey(key)
		switch {
		case committed:
			h.out.Printf("committed: %s", withCaret(res.Text, res.CursorPosition))
		case !handled:
			h.out.Printf("%s ignored: no suggestions showing", key)
		}
		h.printState()
		return
	}

	text, caret := parseLine(line)
	start := time.Now()
	h.input.Update(ctx, text, activeword.Caret(caret))
	h.input.Wait()
	log.Debugf("Took [ %v ] for line %d", time.Since(start), h.requestCount)

	h.printState()
}

// parseLine strips the first caret mark and returns the text and caret position.
func parseLine(line string) (string, int) {
	before, after, found := strings.Cut(line, caretMark)
	if !found {
		return line, utf8.RuneCountInString(line)
	}
	return before + after, utf8.RuneCountInString(before)
}

// withCaret renders text with the caret mark at pos.
func withCaret(text string, pos int) string {
	runes := []rune(text)
	return string(runes[:pos]) + caretMark + string(runes[pos:])
}

func (h *InputHandler) printState() {
	st := h.input.State()
	if st.Query == "" {
		h.out.Print(dimStyle.Render("no active word"))
		return
	}
	if len(st.Suggestions) == 0 {
		h.out.Printf("word %q: no suggestions", st.Query)
		return
	}

	h.out.Printf("word %q: %d suggestions", st.Query, len(st.Suggestions))
	width := 0
	for _, s := range st.Suggestions {
		width = max(width, runewidth.StringWidth(s.Display))
	}
	for i, s := range st.Suggestions {
		display := runewidth.FillRight(s.Display, width)
		detail := s.Source
		if s.Frequency > 0 {
			detail = fmt.Sprintf("%s, freq %s", s.Source, utils.FormatWithCommas(s.Frequency))
		}
		marker := "  "
		if i == st.Selected {
			marker = "> "
			display = selectedStyle.Render(display)
		}
		h.out.Printf("%s%2d. %s  %s", marker, i+1, display, dimStyle.Render(detail))
	}
}
