package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bastiangx/typeahead/pkg/config"
	"github.com/bastiangx/typeahead/pkg/dictionary"
	"github.com/bastiangx/typeahead/pkg/server"
	"github.com/bastiangx/typeahead/pkg/session"
	"github.com/bastiangx/typeahead/pkg/suggest"
	"github.com/charmbracelet/log"
)

const (
	mentionPrefix = '@'
	commandPrefix = '/'
	emojiPrefix   = ':'
)

// overrides are command line values that win over the config file.
type overrides struct {
	dataDir  string
	root     string
	limit    int
	maxWords int // negative when unset
}

// engine owns the providers built from one config and rebuilds them on reload.
// It is itself the Provider handed to the server and the CLI session.
type engine struct {
	configPath string
	configDir  string
	flags      overrides
	resolveDir func(string) string

	mu       sync.RWMutex
	cfg      *config.Config
	router   *suggest.Router
	mentions *suggest.Completer
	cache    *suggest.Cache
	dict     *dictionary.Manager
}

func newEngine(cfg *config.Config, configPath string, flags overrides, resolveDir func(string) string) (*engine, error) {
	e := &engine{
		configPath: configPath,
		flags:      flags,
		resolveDir: resolveDir,
	}
	if configPath != "" {
		e.configDir = filepath.Dir(configPath)
	}
	if err := e.build(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// build creates every provider for cfg and swaps them in.
func (e *engine) build(cfg *config.Config) error {
	if e.flags.limit > 0 {
		cfg.Session.Limit = min(e.flags.limit, cfg.Server.MaxLimit)
	}
	if e.flags.maxWords >= 0 {
		cfg.Sources.MaxWords = e.flags.maxWords
	}
	prefixes := []rune(cfg.Engine.Prefixes)
	router := suggest.NewRouter()

	mentions := suggest.NewCompleter(mentionPrefix, "mentions")
	mentions.SetThresholds(cfg.Sources.MinFrequency, cfg.Sources.MinFrequencyShort)
	dict := dictionary.NewManager(e.dataDir(cfg), cfg.Sources.MaxWords, mentions)
	if _, err := dict.Load(); err != nil {
		return err
	}
	if cfg.Sources.MentionsFile != "" {
		path := e.relative(cfg.Sources.MentionsFile)
		n, err := dictionary.LoadFile(path, mentions, 0)
		if err != nil {
			log.Warnf("Failed to load mentions file %s: %v", path, err)
		} else {
			log.Debugf("Loaded %d mentions from %s", n, path)
		}
	}
	cache := suggest.NewCache(mentions, max(cfg.Sources.CacheSize, 1))

	if slices.Contains(prefixes, mentionPrefix) {
		router.Handle(mentionPrefix, cache)
		if path := []rune(cfg.Engine.PathPrefix); len(path) > 0 && path[0] == mentionPrefix {
			root := cfg.Sources.PathRoot
			if e.flags.root != "" {
				root = e.flags.root
			}
			router.Handle(mentionPrefix, suggest.NewPaths(mentionPrefix, root, cfg.Sources.PathIgnore))
		}
	}
	if slices.Contains(prefixes, commandPrefix) {
		router.Handle(commandPrefix, suggest.NewCommands(commandPrefix, cfg.Sources.Commands))
	}
	if cfg.Sources.Emoji && slices.Contains(prefixes, emojiPrefix) {
		router.Handle(emojiPrefix, suggest.NewEmoji(emojiPrefix, cfg.Sources.ExtraEmoji))
	}
	log.Debugf("Routing prefixes %q", string(router.Prefixes()))

	e.mu.Lock()
	e.cfg = cfg
	e.router = router
	e.mentions = mentions
	e.cache = cache
	e.dict = dict
	e.mu.Unlock()
	return nil
}

func (e *engine) dataDir(cfg *config.Config) string {
	dir := cfg.Sources.DictDir
	if e.flags.dataDir != "" {
		dir = e.flags.dataDir
	}
	if e.resolveDir != nil {
		return e.resolveDir(dir)
	}
	return dir
}

// relative resolves path against the config directory.
func (e *engine) relative(path string) string {
	if filepath.IsAbs(path) || e.configDir == "" {
		return path
	}
	return filepath.Join(e.configDir, path)
}

// reload rereads the config file and rebuilds the providers.
func (e *engine) reload() error {
	cfg := config.DefaultConfig()
	if e.configPath != "" {
		loaded, err := config.LoadConfig(e.configPath)
		if err != nil {
			return fmt.Errorf("reloading config: %w", err)
		}
		cfg = loaded
	}
	if err := e.build(cfg); err != nil {
		return err
	}
	log.Info("Config reloaded", "path", e.configPath)
	return nil
}

// Suggest implements suggest.Provider over the current router.
func (e *engine) Suggest(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
	e.mu.RLock()
	router := e.router
	e.mu.RUnlock()
	return router.Suggest(ctx, query, limit)
}

func (e *engine) current() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

func (e *engine) serverOptions() server.Options {
	cfg := e.current()
	return server.Options{
		Locator:  cfg.Engine.Locator(),
		AddSpace: cfg.Engine.AddSpace,
		Limit:    cfg.Session.Limit,
		MaxLimit: cfg.Server.MaxLimit,
		MaxText:  cfg.Server.MaxText,
	}
}

func (e *engine) newInput() *session.Input {
	cfg := e.current()
	seq := session.NewSequencer(e, cfg.Session.Options(), nil)
	return session.NewInput(cfg.Engine.Locator(), seq, cfg.Engine.AddSpace)
}

// stats merges the counters of the mention index, its cache and the dictionary.
func (e *engine) stats() map[string]int {
	e.mu.RLock()
	mentions, cache, dict := e.mentions, e.cache, e.dict
	e.mu.RUnlock()

	stats := make(map[string]int)
	for k, v := range mentions.Stats() {
		stats[k] = v
	}
	for k, v := range cache.Stats() {
		stats[k] = v
	}
	if info, err := dict.Info(); err == nil {
		stats["availableChunks"] = info.AvailableChunks
		stats["availableWords"] = info.AvailableWords
	}
	return stats
}

// watchedFiles are the files whose change triggers a reload.
func (e *engine) watchedFiles() []string {
	if e.configPath == "" {
		return nil
	}
	files := []string{e.configPath}
	if mf := e.current().Sources.MentionsFile; mf != "" {
		files = append(files, e.relative(mf))
	}
	return files
}
