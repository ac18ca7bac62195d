package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Source is a named byte payload: an upload or a file read from disk.
// A nil Data means "nothing was provided", which is distinct from an empty file.
type Source struct {
	Name string
	Data []byte
}

// LoadOptions controls decoding and parsing.
type LoadOptions struct {
	// Encodings is the ordered fallback chain. Empty means DefaultEncodings.
	Encodings []string
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
}

// Loaded is a parsed table together with how it was decoded.
type Loaded struct {
	Source      string
	Table       *Table
	Encoding    string
	Compression Compression
}

// Load decodes and parses src, trying each encoding in order. Every attempt
// parses from a fresh reader over the same bytes, so a failed attempt never
// leaves a partially consumed stream behind for the next one.
func Load(src Source, opt LoadOptions) (*Loaded, error) {
	if src.Data == nil {
		return nil, &MissingInputError{Source: src.Name}
	}
	names := opt.Encodings
	if len(names) == 0 {
		names = DefaultEncodings
	}
	encs, err := ValidateEncodings(names)
	if err != nil {
		return nil, err
	}
	raw, kind, err := decompress(src.Data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", nameOr(src.Name, "input"), err)
	}
	var last error
	for _, enc := range encs {
		text, err := decode(raw, enc)
		if err != nil {
			last = err
			continue
		}
		t, err := parseCSV(text, opt.Delimiter)
		if err != nil {
			last = fmt.Errorf("parse as %s: %w", enc, err)
			continue
		}
		return &Loaded{Source: src.Name, Table: t, Encoding: enc, Compression: kind}, nil
	}
	return nil, &DecodeError{Source: src.Name, Encodings: encs, Last: last}
}

// LoadFile reads path and loads it.
func LoadFile(path string, opt LoadOptions) (*Loaded, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(src, opt)
}

// ReadFile reads a bundled file. A missing file is reported as MissingInputError.
func ReadFile(path string) (Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, &MissingInputError{Source: filepath.Base(path)}
		}
		return Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	if b == nil {
		b = []byte{}
	}
	return Source{Name: filepath.Base(path), Data: b}, nil
}

// FirstAvailable prefers the upload and otherwise returns the first fallback
// path that exists.
func FirstAvailable(upload *Source, fallbacks ...string) (Source, error) {
	if upload != nil && upload.Data != nil {
		return *upload, nil
	}
	var names []string
	for _, p := range fallbacks {
		if strings.TrimSpace(p) == "" {
			continue
		}
		src, err := ReadFile(p)
		if err == nil {
			return src, nil
		}
		var miss *MissingInputError
		if !errors.As(err, &miss) {
			return Source{}, err
		}
		names = append(names, filepath.Base(p))
	}
	return Source{}, &MissingInputError{Source: strings.Join(names, ", ")}
}

func parseCSV(text string, delim rune) (*Table, error) {
	if delim == 0 {
		delim = sniffDelimiter(text)
	}
	r := csv.NewReader(strings.NewReader(text))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := New(dedupeHeader(header))
	ncol := len(t.Header)
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		row := make(Row, ncol)
		for j, h := range t.Header {
			if j < len(rec) {
				row[h] = rec[j]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// dedupeHeader trims names and suffixes repeats with ".1", ".2", ... so every
// column stays addressable by name.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func sniffDelimiter(text string) rune {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	best, bestN := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
