package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/typeahead/pkg/activeword"
	"github.com/bastiangx/typeahead/pkg/session"
	"github.com/bastiangx/typeahead/pkg/suggest"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line      string
		wantText  string
		wantCaret int
	}{
		{"Hello @jo", "Hello @jo", 9},
		{"Hello @jo|hn there", "Hello @john there", 9},
		{"|start", "start", 0},
		{"héllo :t|a", "héllo :ta", 8},
		{"", "", 0},
	}
	for _, tc := range testCases {
		text, caret := parseLine(tc.line)
		if text != tc.wantText || caret != tc.wantCaret {
			t.Errorf("parseLine(%q) = %q, %d, want %q, %d", tc.line, text, caret, tc.wantText, tc.wantCaret)
		}
	}
}

func TestWithCaret(t *testing.T) {
	if got := withCaret("héllo", 2); got != "hé|llo" {
		t.Errorf("withCaret = %q", got)
	}
}

func TestSessionLoop(t *testing.T) {
	provider := suggest.NewCommands('/', suggest.DefaultCommands)
	seq := session.NewSequencer(provider, session.DefaultOptions(), nil)
	input := session.NewInput(activeword.NewLocator(nil), seq, true)

	lines := strings.Join([]string{
		"/he",
		":enter",
		"plain text",
		":down",
	}, "\n")
	var out bytes.Buffer
	if err := NewInputHandler(input, strings.NewReader(lines), &out).Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`word "/he"`,
		"/help",
		"committed: /help |",
		"no active word",
		"down ignored",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
