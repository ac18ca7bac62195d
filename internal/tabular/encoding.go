package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// DefaultEncodings is the fallback chain used when a caller does not name one.
// latin1 maps every byte, so it terminates the chain for any input.
var DefaultEncodings = []string{"utf-8", "cp949", "euc-kr", "latin1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errInvalidUTF8 = errors.New("invalid utf-8 byte sequence")

// CanonicalEncoding maps the accepted spellings of an encoding name to the
// canonical one used in messages. It returns false for unsupported names.
func CanonicalEncoding(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "utf-8", "utf8", "utf-8-sig":
		return "utf-8", true
	case "cp949", "ms949", "uhc", "windows-949":
		return "cp949", true
	case "euc-kr", "euckr":
		return "euc-kr", true
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1", "l1":
		return "latin1", true
	}
	return "", false
}

// ValidateEncodings canonicalizes names and rejects unsupported ones up-front.
func ValidateEncodings(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		c, ok := CanonicalEncoding(n)
		if !ok {
			return nil, fmt.Errorf("unsupported encoding: %q (use utf-8, cp949, euc-kr or latin1)", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// decode converts raw bytes to UTF-8 text under the named encoding. Legacy
// decoders substitute U+FFFD for bytes they cannot map; that substitution is
// treated as a failure so the chain moves on to the next candidate.
func decode(raw []byte, name string) (string, error) {
	if name == "utf-8" {
		b := bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(b) {
			return "", errInvalidUTF8
		}
		return string(b), nil
	}
	var enc encoding.Encoding
	switch name {
	case "cp949", "euc-kr":
		// x/text's EUC-KR table is the Unified Hangul Code superset, i.e. cp949.
		enc = korean.EUCKR
	case "latin1":
		enc = charmap.ISO8859_1
	default:
		return "", fmt.Errorf("unsupported encoding: %q", name)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) && !bytes.Contains(raw, []byte(string(utf8.RuneError))) {
		return "", fmt.Errorf("decode %s: unmappable byte sequence", name)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the named encoding. It exists for fixtures and
// for exporting files to consumers that still expect a Korean codepage.
func Encode(text string, name string) ([]byte, error) {
	c, ok := CanonicalEncoding(name)
	if !ok {
		return nil, fmt.Errorf("unsupported encoding: %q", name)
	}
	switch c {
	case "utf-8":
		return []byte(text), nil
	case "cp949", "euc-kr":
		return korean.EUCKR.NewEncoder().Bytes([]byte(text))
	default:
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	}
}
