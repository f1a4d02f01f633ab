package suggest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// DefaultPathIgnore hides build output and VCS metadata from file mentions.
var DefaultPathIgnore = []string{
	".git",
	".git/**",
	"node_modules",
	"node_modules/**",
	"**/.DS_Store",
}

// Paths completes file mentions such as "@src/main.go" from a directory tree.
// It lists one directory level at a time: the part of the query up to the
// last '/' picks the directory, the rest filters its entries by prefix.
type Paths struct {
	prefix rune
	fsys   fs.FS
	ignore []string
}

// NewPaths serves paths below root.
func NewPaths(prefix rune, root string, ignore []string) *Paths {
	return NewPathsFS(prefix, os.DirFS(root), ignore)
}

// NewPathsFS serves paths from fsys. Invalid ignore patterns are dropped.
func NewPathsFS(prefix rune, fsys fs.FS, ignore []string) *Paths {
	valid := make([]string, 0, len(ignore))
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			log.Warnf("Ignoring invalid path pattern %q", pattern)
			continue
		}
		valid = append(valid, pattern)
	}
	return &Paths{prefix: prefix, fsys: fsys, ignore: valid}
}

// Suggest implements Provider. Directories sort before files and end in '/'.
func (p *Paths) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix, typed := splitQuery(query)
	if prefix != p.prefix {
		return nil, nil
	}

	dir, base := path.Split(typed)
	readDir := strings.TrimSuffix(dir, "/")
	if readDir == "" {
		readDir = "."
	}
	if !fs.ValidPath(readDir) {
		return nil, nil
	}

	entries, err := fs.ReadDir(p.fsys, readDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, nil
		}
		return nil, err
	}

	lowerBase := strings.ToLower(base)
	type candidate struct {
		rel   string
		isDir bool
	}
	var candidates []candidate
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), lowerBase) {
			continue
		}
		rel := dir + name
		if p.ignored(rel) {
			continue
		}
		candidates = append(candidates, candidate{rel: rel, isDir: e.IsDir()})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].isDir != candidates[j].isDir {
			return candidates[i].isDir
		}
		return candidates[i].rel < candidates[j].rel
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		rel := c.rel
		if c.isDir {
			rel += "/"
		}
		text := string(p.prefix) + rel
		suggestions = append(suggestions, Suggestion{
			Key:     text,
			Text:    text,
			Display: rel,
			Source:  "paths",
		})
	}
	return suggestions, nil
}

func (p *Paths) ignored(rel string) bool {
	for _, pattern := range p.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
