package suggest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

var stringPool = sync.Map{}

func internString(s string) string {
	if cached, exists := stringPool.Load(s); exists {
		return cached.(string)
	}
	stringPool.Store(s, s)
	return s
}

// entry is the trie item: the word as it was added and its frequency.
type entry struct {
	word      string
	frequency int
}

// Completer serves one prefix character ('@' for mentions, '#' for tags...)
// from a patricia trie keyed by the lowercased word.
type Completer struct {
	prefix       rune
	source       string
	trie         *patricia.Trie
	totalWords   int
	maxFrequency int
	minFrequency int
	minShort     int
	mu           sync.RWMutex
}

// NewCompleter returns an empty completer for prefix.
func NewCompleter(prefix rune, source string) *Completer {
	return &Completer{
		prefix: prefix,
		source: source,
		trie:   patricia.NewTrie(),
	}
}

// SetThresholds sets the minimum frequency for results. Queries of two
// characters or fewer, or made of one repeated character, use minShort.
func (c *Completer) SetThresholds(minFreq, minShort int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minFrequency = minFreq
	c.minShort = minShort
}

// AddWord adds word, or raises its frequency if it is already known.
func (c *Completer) AddWord(word string, frequency int) {
	word = strings.TrimPrefix(word, string(c.prefix))
	if word == "" {
		return
	}
	key := patricia.Prefix(strings.ToLower(word))

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.trie.Get(key).(entry); ok {
		if frequency <= existing.frequency {
			return
		}
		c.trie.Set(key, entry{word: existing.word, frequency: frequency})
	} else {
		c.trie.Insert(key, entry{word: internString(word), frequency: frequency})
		c.totalWords++
	}
	if frequency > c.maxFrequency {
		c.maxFrequency = frequency
	}
}

// Reset drops every word.
func (c *Completer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trie = patricia.NewTrie()
	c.totalWords = 0
	c.maxFrequency = 0
}

// Suggest returns words starting with the typed part of query, most frequent first.
// A bare prefix character returns the most frequent words overall.
func (c *Completer) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix, typed := splitQuery(query)
	if prefix != c.prefix {
		return nil, nil
	}

	lowerTyped := strings.ToLower(typed)
	capitalPositions := make([]bool, 0, len(typed))
	for _, r := range typed {
		capitalPositions = append(capitalPositions, r >= 'A' && r <= 'Z')
	}

	c.mu.RLock()
	threshold := c.minFrequency
	if len([]rune(lowerTyped)) <= 2 || utils.IsRepetitive(lowerTyped) {
		threshold = max(threshold, c.minShort)
	}
	found := searchTrie(c.trie, lowerTyped, threshold)
	c.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].frequency != found[j].frequency {
			return found[i].frequency > found[j].frequency
		}
		return found[i].word < found[j].word
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	p := string(c.prefix)
	suggestions := make([]Suggestion, 0, len(found))
	for _, e := range found {
		word := ApplyCapitalization(e.word, capitalPositions)
		suggestions = append(suggestions, Suggestion{
			Key:       p + strings.ToLower(e.word),
			Text:      p + word,
			Display:   p + word,
			Source:    c.source,
			Frequency: e.frequency,
		})
	}
	log.Debugf("completer %q: %d results for %q", c.source, len(suggestions), query)
	return suggestions, nil
}

// Stats reports the size of the dictionary.
func (c *Completer) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]int{
		"totalWords":   c.totalWords,
		"maxFrequency": c.maxFrequency,
	}
}
