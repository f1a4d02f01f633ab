// Package dictionary reads frequency ranked word lists from disk.
//
// Two formats are understood. Chunk files (dict_0001.bin, dict_0002.bin, ...)
// hold a little endian int32 word count followed by, for each word, a uint16
// byte length, the UTF-8 bytes and a uint16 rank where rank 1 is the most
// frequent word. Text files hold one "word [frequency]" per line, with '#'
// starting a comment.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/typeahead/internal/utils"
	"github.com/charmbracelet/log"
)

// ErrNoDictionaries is returned by LoadDir when dir holds no word files.
var ErrNoDictionaries = errors.New("no dictionary files found")

// Sink receives loaded words; *suggest.Completer is one.
type Sink interface {
	AddWord(word string, frequency int)
}

// rankScore converts a rank into a frequency so that rank 1 scores highest.
func rankScore(rank uint16) int {
	return math.MaxUint16 + 1 - int(rank)
}

// LoadChunk loads a chunk file into sink, stopping after limit words when
// limit is positive. It returns the number of words added.
func LoadChunk(filename string, sink Sink, limit int) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open chunk file %s: %w", filename, err)
	}
	defer file.Close()

	count, err := ReadChunk(bufio.NewReader(file), sink, limit)
	if err != nil {
		return count, fmt.Errorf("%s: %w", filename, err)
	}
	log.Debugf("Chunk %s loaded: %d words", filepath.Base(filename), count)
	return count, nil
}

// ReadChunk decodes one chunk from r into sink.
func ReadChunk(r io.Reader, sink Sink, limit int) (int, error) {
	var totalEntries int32
	if err := binary.Read(r, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxChunkWords {
		return 0, fmt.Errorf("invalid word count %d in chunk header", totalEntries)
	}

	count := 0
	for count < int(totalEntries) {
		if limit > 0 && count >= limit {
			break
		}

		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				log.Warnf("Chunk ended after %d of %d words", count, totalEntries)
				break
			}
			return count, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(r, wordBytes); err != nil {
			return count, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return count, fmt.Errorf("failed to read rank: %w", err)
		}

		sink.AddWord(string(wordBytes), rankScore(rank))
		count++
	}
	return count, nil
}

// LoadText loads a word list into sink. Lines without a frequency are
// ranked by their position among the words of the file.
func LoadText(filename string, sink Sink, limit int) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open word list %s: %w", filename, err)
	}
	defer file.Close()

	count, err := ReadText(file, sink, limit)
	if err != nil {
		return count, fmt.Errorf("%s: %w", filename, err)
	}
	log.Debugf("Word list %s loaded: %d words", filepath.Base(filename), count)
	return count, nil
}

// ReadText parses a word list from r into sink.
func ReadText(r io.Reader, sink Sink, limit int) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if limit > 0 && count >= limit {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		frequency := rankScore(uint16(min(count+1, math.MaxUint16)))
		if len(fields) > 1 {
			f, err := strconv.Atoi(fields[1])
			if err != nil || f < 0 {
				log.Warnf("Line %d: bad frequency %q, using rank", lineNo, fields[1])
			} else {
				frequency = f
			}
		}

		sink.AddWord(fields[0], frequency)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read word list: %w", err)
	}
	return count, nil
}

// LoadFile loads filename in whatever format DetectFormat reports.
func LoadFile(filename string, sink Sink, limit int) (int, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return 0, err
	}
	switch format {
	case FormatChunk:
		return LoadChunk(filename, sink, limit)
	case FormatText:
		return LoadText(filename, sink, limit)
	}
	return 0, fmt.Errorf("%s: %w", filename, ErrUnknownFormat)
}

// LoadDir loads the chunks of dir in ID order and then its .txt word lists,
// until maxWords words are loaded. maxWords 0 loads everything.
// A chunk that fails to load is logged and skipped.
func LoadDir(dir string, maxWords int, sink Sink) (int, error) {
	chunks, err := ListChunks(dir)
	if err != nil {
		return 0, err
	}
	texts, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0, fmt.Errorf("failed to scan for word lists: %w", err)
	}
	sort.Strings(texts)

	if len(chunks) == 0 && len(texts) == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrNoDictionaries)
	}
	log.Debugf("Found %d chunk files and %d word lists in %s", len(chunks), len(texts), dir)

	files := make([]string, 0, len(chunks)+len(texts))
	for _, chunk := range chunks {
		files = append(files, chunk.Filename)
	}
	files = append(files, texts...)

	loaded := 0
	for _, file := range files {
		remaining := 0
		if maxWords > 0 {
			remaining = maxWords - loaded
			if remaining <= 0 {
				break
			}
		}
		n, err := LoadFile(file, sink, remaining)
		loaded += n
		if err != nil {
			log.Errorf("Failed to load %s: %v", file, err)
		}
	}

	log.Debugf("Loaded %s words from %s", utils.FormatWithCommas(loaded), dir)
	return loaded, nil
}

// WriteChunk encodes words, best first, as a chunk.
func WriteChunk(w io.Writer, words []string) error {
	if len(words) > maxChunkWords {
		return fmt.Errorf("chunk of %d words exceeds %d", len(words), maxChunkWords)
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(words))); err != nil {
		return err
	}

	ranks := utils.Ranks(len(words))
	for i, word := range words {
		if len(word) > math.MaxUint16 {
			return fmt.Errorf("word %d is %d bytes long", i, len(word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, ranks[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteChunkFile writes words as chunk id inside dir.
func WriteChunkFile(dir string, id int, words []string) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	filename := ChunkFilename(dir, id)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create chunk file %s: %w", filename, err)
	}
	if err := WriteChunk(file, words); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write chunk file %s: %w", filename, err)
	}
	return filename, file.Close()
}
