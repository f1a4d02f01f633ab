package dictionary

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Target is a Sink that can be emptied before a reload.
type Target interface {
	Sink
	Reset()
}

// Info reports what a Manager has loaded.
type Info struct {
	Dir             string
	MaxWords        int
	LoadedWords     int
	AvailableChunks int
	AvailableWords  int
}

// Manager owns the dictionary directory of a running process and reloads
// it into a Target on request.
type Manager struct {
	dir      string
	maxWords int
	target   Target
	loaded   int
	mu       sync.Mutex
}

// NewManager creates a manager for dir. Nothing is loaded until Load.
func NewManager(dir string, maxWords int, target Target) *Manager {
	return &Manager{
		dir:      dir,
		maxWords: maxWords,
		target:   target,
	}
}

// Load empties the target and loads the directory again.
// An empty directory is not an error; the target is simply left empty.
func (m *Manager) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Manager) loadLocked() (int, error) {
	m.target.Reset()
	m.loaded = 0

	n, err := LoadDir(m.dir, m.maxWords, m.target)
	if errors.Is(err, ErrNoDictionaries) {
		log.Warnf("No dictionary files in %s, running with an empty dictionary", m.dir)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load dictionary: %w", err)
	}
	m.loaded = n
	return n, nil
}

// SetMaxWords changes the word limit and reloads when it differs.
func (m *Manager) SetMaxWords(maxWords int) (int, error) {
	if maxWords < 0 {
		return 0, fmt.Errorf("max words must not be negative, got %d", maxWords)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if maxWords == m.maxWords {
		return m.loaded, nil
	}
	log.Debugf("Setting dictionary size: current=%d words, target=%d words", m.maxWords, maxWords)
	m.maxWords = maxWords
	return m.loadLocked()
}

// Info returns the loaded and available word counts.
func (m *Manager) Info() (Info, error) {
	m.mu.Lock()
	info := Info{Dir: m.dir, MaxWords: m.maxWords, LoadedWords: m.loaded}
	m.mu.Unlock()

	chunks, err := ListChunks(m.dir)
	if err != nil {
		return info, err
	}
	info.AvailableChunks = len(chunks)
	for _, chunk := range chunks {
		info.AvailableWords += chunk.WordCount
	}
	return info, nil
}
