/*
Package config manages the TOML config of typeahead.

The file has four sections. [engine] controls how active words are found,
[session] how suggestions are selected and navigated, [server] the IPC
limits and [sources] where suggestions come from. Missing keys keep their
defaults, and a file that fails to parse is recovered section by section.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/bastiangx/typeahead/pkg/activeword"
	"github.com/bastiangx/typeahead/pkg/session"
	"github.com/bastiangx/typeahead/pkg/suggest"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
	Sources SourcesConfig `toml:"sources"`
}

// EngineConfig sets the trigger and stop characters.
type EngineConfig struct {
	Prefixes   string `toml:"prefixes"`
	StopChars  string `toml:"stop_chars"`
	PathPrefix string `toml:"path_prefix"`
	AddSpace   bool   `toml:"add_space"`
}

// SessionConfig has selection and navigation options.
type SessionConfig struct {
	ClampSelection  bool `toml:"clamp_selection"`
	AutoSelectFirst bool `toml:"auto_select_first"`
	WrapAround      bool `toml:"wrap_around"`
	Limit           int  `toml:"limit"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
	MaxText  int `toml:"max_text"`
}

// SourcesConfig configures the suggestion providers.
type SourcesConfig struct {
	MentionsFile      string            `toml:"mentions_file"`
	DictDir           string            `toml:"dict_dir"`
	MaxWords          int               `toml:"max_words"`
	MinFrequency      int               `toml:"min_frequency"`
	MinFrequencyShort int               `toml:"min_frequency_short"`
	PathRoot          string            `toml:"path_root"`
	PathIgnore        []string          `toml:"path_ignore"`
	Emoji             bool              `toml:"emoji"`
	ExtraEmoji        map[string]string `toml:"extra_emoji"`
	CacheSize         int               `toml:"cache_size"`
	Commands          []suggest.Command `toml:"commands"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Prefixes:   string(activeword.DefaultPrefixes),
			StopChars:  string(activeword.DefaultStopChars),
			PathPrefix: string(activeword.DefaultPathPrefix),
			AddSpace:   true,
		},
		Session: SessionConfig{
			ClampSelection:  true,
			AutoSelectFirst: true,
			WrapAround:      true,
			Limit:           8,
		},
		Server: ServerConfig{
			MaxLimit: 64,
			MaxText:  16384,
		},
		Sources: SourcesConfig{
			DictDir:           "data/",
			MaxWords:          50000,
			MinFrequency:      20,
			MinFrequencyShort: 24,
			PathRoot:          ".",
			PathIgnore:        append([]string(nil), suggest.DefaultPathIgnore...),
			Emoji:             true,
			CacheSize:         256,
			Commands:          append([]suggest.Command(nil), suggest.DefaultCommands...),
		},
	}
}

// Locator builds the word locator for the engine settings.
// An empty path_prefix turns path tokens off.
func (e EngineConfig) Locator() *activeword.Locator {
	l := activeword.NewLocator([]rune(e.Prefixes))
	if e.StopChars != "" {
		l.StopChars = []rune(e.StopChars)
	}
	l.PathPrefix = 0
	if p := []rune(e.PathPrefix); len(p) > 0 {
		l.PathPrefix = p[0]
	}
	return l
}

// Options converts the session settings.
func (s SessionConfig) Options() session.Options {
	return session.Options{
		ClampSelection:  s.ClampSelection,
		AutoSelectFirst: s.AutoSelectFirst,
		WrapAround:      s.WrapAround,
		Limit:           s.Limit,
	}
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. defaultPath, created with defaults when missing
// 3. Builtin defaults
//
// It returns the config and the path it came from, empty for builtin defaults.
func LoadConfigWithPriority(customConfigPath, defaultPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	if defaultPath == "" {
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys the file leaves out keep their
// defaults; a file with syntax errors is recovered section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return tryPartialParse(configPath), nil
	}
	config.normalize()
	return config, nil
}

// tryPartialParse keeps every value that can be read and defaults the rest.
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "session"); ok {
		extractSessionConfig(section, &config.Session)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "sources"); ok {
		extractSourcesConfig(section, &config.Sources)
	}
	config.normalize()
	return config
}

// normalize puts out of range values back to their defaults.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.Engine.Prefixes == "" {
		log.Warn("engine.prefixes is empty, using defaults")
		c.Engine.Prefixes = defaults.Engine.Prefixes
	}
	if c.Session.Limit <= 0 {
		c.Session.Limit = defaults.Session.Limit
	}
	if c.Server.MaxLimit <= 0 {
		c.Server.MaxLimit = defaults.Server.MaxLimit
	}
	if c.Session.Limit > c.Server.MaxLimit {
		c.Session.Limit = c.Server.MaxLimit
	}
	if c.Server.MaxText <= 0 {
		c.Server.MaxText = defaults.Server.MaxText
	}
	if c.Sources.MaxWords < 0 {
		c.Sources.MaxWords = 0
	}
	if c.Sources.CacheSize < 0 {
		c.Sources.CacheSize = 0
	}
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractString(data, "prefixes"); ok {
		engine.Prefixes = val
	}
	if val, ok := utils.ExtractString(data, "stop_chars"); ok {
		engine.StopChars = val
	}
	if val, ok := utils.ExtractString(data, "path_prefix"); ok {
		engine.PathPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "add_space"); ok {
		engine.AddSpace = val
	}
}

func extractSessionConfig(data map[string]any, s *SessionConfig) {
	if val, ok := utils.ExtractBool(data, "clamp_selection"); ok {
		s.ClampSelection = val
	}
	if val, ok := utils.ExtractBool(data, "auto_select_first"); ok {
		s.AutoSelectFirst = val
	}
	if val, ok := utils.ExtractBool(data, "wrap_around"); ok {
		s.WrapAround = val
	}
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		s.Limit = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text"); ok {
		server.MaxText = val
	}
}

func extractSourcesConfig(data map[string]any, src *SourcesConfig) {
	if val, ok := utils.ExtractString(data, "mentions_file"); ok {
		src.MentionsFile = val
	}
	if val, ok := utils.ExtractString(data, "dict_dir"); ok {
		src.DictDir = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		src.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency"); ok {
		src.MinFrequency = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_short"); ok {
		src.MinFrequencyShort = val
	}
	if val, ok := utils.ExtractString(data, "path_root"); ok {
		src.PathRoot = val
	}
	if val, ok := utils.ExtractStrings(data, "path_ignore"); ok {
		src.PathIgnore = val
	}
	if val, ok := utils.ExtractBool(data, "emoji"); ok {
		src.Emoji = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		src.CacheSize = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile overwrites configPath with the defaults.
func RebuildConfigFile(configPath string) error {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), configPath)
}
