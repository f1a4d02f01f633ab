package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/bastiangx/typeahead/pkg/fuzzy"
)

// Command is a slash command offered for completion.
type Command struct {
	Name  string `toml:"name"`
	Desc  string `toml:"desc"`
	Usage string `toml:"usage"`
}

// DefaultCommands are the session commands every chat input understands.
var DefaultCommands = []Command{
	{Name: "/help", Desc: "Show help"},
	{Name: "/clear", Desc: "Clear the conversation"},
	{Name: "/compact", Desc: "Summarize the conversation so far"},
	{Name: "/model", Desc: "Switch model", Usage: "<model>"},
	{Name: "/agent", Desc: "Switch agent", Usage: "<agent>"},
	{Name: "/new", Desc: "Start a new session"},
	{Name: "/resume", Desc: "Resume a session", Usage: "<session-id>"},
	{Name: "/abort", Desc: "Abort the running turn"},
	{Name: "/files", Desc: "List attached files"},
	{Name: "/quit", Desc: "Exit"},
}

// Commands completes slash commands: prefix matches first, in list order,
// then fuzzy matches ranked by score.
type Commands struct {
	prefix   rune
	commands []Command
}

// NewCommands returns a provider for commands triggered by prefix.
// Names missing the prefix character get it prepended.
func NewCommands(prefix rune, commands []Command) *Commands {
	p := string(prefix)
	normalized := make([]Command, 0, len(commands))
	for _, cmd := range commands {
		if cmd.Name == "" || cmd.Name == p {
			continue
		}
		if !strings.HasPrefix(cmd.Name, p) {
			cmd.Name = p + cmd.Name
		}
		normalized = append(normalized, cmd)
	}
	return &Commands{prefix: prefix, commands: normalized}
}

// Suggest implements Provider.
func (c *Commands) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix, typed := splitQuery(query)
	if prefix != c.prefix {
		return nil, nil
	}
	typed = strings.ToLower(typed)

	var prefixMatches []Suggestion
	var fuzzyNames []string
	byName := make(map[string]Command, len(c.commands))

	for _, cmd := range c.commands {
		name := strings.ToLower(strings.TrimPrefix(cmd.Name, string(c.prefix)))
		if strings.HasPrefix(name, typed) {
			prefixMatches = append(prefixMatches, commandSuggestion(cmd))
			continue
		}
		byName[name] = cmd
		fuzzyNames = append(fuzzyNames, name)
	}

	suggestions := prefixMatches
	for _, m := range fuzzy.Rank(typed, fuzzyNames) {
		suggestions = append(suggestions, commandSuggestion(byName[m.Str]))
	}
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Usage returns "name usage" for a command that takes arguments.
func (c *Commands) Usage(name string) string {
	name = strings.ToLower(name)
	for _, cmd := range c.commands {
		if strings.ToLower(cmd.Name) == name && cmd.Usage != "" {
			return fmt.Sprintf("%s %s", cmd.Name, cmd.Usage)
		}
	}
	return ""
}

func commandSuggestion(cmd Command) Suggestion {
	return Suggestion{
		Key:     cmd.Name,
		Text:    cmd.Name,
		Display: fmt.Sprintf("%s  %s", cmd.Name, cmd.Desc),
		Source:  "commands",
	}
}
