package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnknownFormat is returned for files that are neither chunks nor word lists.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// maxChunkWords bounds the word count a chunk header may claim.
const maxChunkWords = 1_000_000

// FileFormat represents the dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatChunk              // dict_NNNN.bin
	FormatText               // word [frequency] per line
)

func (f FileFormat) String() string {
	switch f {
	case FormatChunk:
		return "chunk"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// ChunkInfo describes one chunk file found on disk.
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// DetectFormat works out the format of filename from its name and header.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	basename := strings.ToLower(filepath.Base(filename))

	switch {
	case ext == ".bin" && strings.HasPrefix(basename, "dict_"):
		if _, err := readChunkHeader(filename); err != nil {
			return FormatUnknown, err
		}
		return FormatChunk, nil
	case ext == ".txt":
		if err := validateTextFormat(filename); err != nil {
			return FormatUnknown, err
		}
		return FormatText, nil
	}
	return FormatUnknown, fmt.Errorf("%s: %w", filename, ErrUnknownFormat)
}

// ListChunks returns the chunk files in dir ordered by ID.
func ListChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		// dict_0001.bin -> 1
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Skipping %s: not a numbered chunk", file)
			continue
		}
		wordCount, err := readChunkHeader(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			continue
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// ChunkFilename returns the name of chunk id inside dir.
func ChunkFilename(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("dict_%04d.bin", id))
}

// readChunkHeader reads and checks the word count header of a chunk file.
func readChunkHeader(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if wordCount < 0 {
		return 0, fmt.Errorf("invalid word count in %s: %d (negative)", filename, wordCount)
	}
	if wordCount > maxChunkWords {
		return 0, fmt.Errorf("suspicious word count in %s: %d (too large)", filename, wordCount)
	}
	return int(wordCount), nil
}

// validateTextFormat checks that the first line of a word list is readable text.
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Scan()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}
	if strings.ContainsRune(scanner.Text(), 0) {
		return fmt.Errorf("%s looks binary: %w", filename, ErrUnknownFormat)
	}
	return nil
}
