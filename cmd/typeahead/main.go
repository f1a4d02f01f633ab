// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the typeahead completion server and its CLI [DBG] mode.

typeahead finds the prefixed word under the caret of a text field
("@jo", ":sm", "/he"), looks up suggestions for it and commits the chosen one
back into the text. Editors and chat inputs talk to it over a MessagePack
IPC on stdin/stdout; the CLI mode drives the same engine from a terminal.

# Usage

Start the server with default settings:

	typeahead

Use a custom mentions directory, a project root for file mentions and debug logs:

	typeahead -data /path/to/people -root ~/src/project -d

Run in CLI mode for interactive testing:

	typeahead -c -limit 10

# Sources

Each trigger character is served by its own provider:

	@  mentions from the dictionary directory and mentions_file, then files below path_root
	/  slash commands from the [sources] commands list
	:  emoji shortcodes

The dictionary directory holds chunk files named dict_0001.bin,
dict_0002.bin, ... and plain word lists ending in .txt.

# Configuration

Runtime configuration lives in a TOML file next to the other user config:

	[engine]
	prefixes = "@:/"
	add_space = true

	[session]
	wrap_around = true
	limit = 8

	[server]
	max_limit = 64

	[sources]
	dict_dir = "data/"
	mentions_file = "people.txt"

The config file is created with defaults if it doesn't exist. In server mode
edits to it, or to the mentions file, are picked up without a restart.

# Command Line Flags

	-version  Show current version
	-d        Enable debug mode with detailed logging
	-c        Run in CLI mode instead of server mode
	-config   Path to a config file
	-data     Directory containing dictionary files
	-root     Directory that file mentions are relative to
	-limit    Number of suggestions to return (default from config)
	-words    Maximum number of words to load, 0 for all (default from config)
	-rebuild-config  Overwrite the config file with the defaults and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/typeahead/internal/cli"
	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/bastiangx/typeahead/internal/watch"
	"github.com/bastiangx/typeahead/pkg/config"
	"github.com/bastiangx/typeahead/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "typeahead"
	gh      = "https://github.com/bastiangx/typeahead"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, providers and the chosen front end together.
// It does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Path to a config file (default in the user config dir)")
	dataDir := flag.String("data", "", "Directory containing the dictionary files (default from config)")
	rootDir := flag.String("root", "", "Directory file mentions are relative to (default from config)")
	limit := flag.Int("limit", 0, "Number of suggestions to return (default from config)")
	wordLimit := flag.Int("words", -1, "Maximum number of words to load, use 0 for all words (default from config)")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the config file with the defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	defaultConfigPath := pathResolver.GetConfigPath(config.FileName)
	if *rebuildConfig {
		target := defaultConfigPath
		if *configFile != "" {
			target = *configFile
		}
		if err := config.RebuildConfigFile(target); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Config rebuilt with defaults: %s\n", utils.GetAbsolutePath(target))
		os.Exit(0)
	}
	appConfig, configPath := config.LoadConfigWithPriority(*configFile, defaultConfigPath)
	log.Debugf("Using config file: (%s)", configPath)

	eng, err := newEngine(appConfig, configPath, overrides{
		dataDir:  *dataDir,
		root:     *rootDir,
		limit:    *limit,
		maxWords: *wordLimit,
	}, pathResolver.GetDataDir)
	if err != nil {
		log.Fatalf("Failed to init sources: %v", err)
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(eng.newInput(), os.Stdin, os.Stdout)
		if err := handler.Start(context.Background()); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, eng.serverOptions())
	reload := func() error {
		if err := eng.reload(); err != nil {
			return err
		}
		srv.SetOptions(eng.serverOptions())
		return nil
	}
	srv.OnReload(reload)
	srv.OnStats(eng.stats)

	if files := eng.watchedFiles(); len(files) > 0 {
		watcher, err := watch.New(watch.DefaultDebounce, func() {
			if err := reload(); err != nil {
				log.Errorf("Reload failed: %v", err)
			}
		}, files...)
		if err != nil {
			log.Warnf("Config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	showStartupInfo(configPath)

	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ typeahead ] completes @mentions, :emoji: and /commands as you type")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " typeahead ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", utils.GetAbsolutePath(configPath))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
}
