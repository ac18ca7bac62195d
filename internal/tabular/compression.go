package tabular

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression names a container format wrapped around CSV bytes.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZ   Compression = "gzip"
	CompressionBZ2  Compression = "bzip2"
	CompressionXZ   Compression = "xz"
	CompressionZSTD Compression = "zstd"
)

var (
	magicGZ   = []byte{0x1f, 0x8b}
	magicZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// sniffCompression detects a container by its magic number.
func sniffCompression(b []byte) Compression {
	switch {
	case bytes.HasPrefix(b, magicGZ):
		return CompressionGZ
	case bytes.HasPrefix(b, magicZSTD):
		return CompressionZSTD
	case bytes.HasPrefix(b, magicXZ):
		return CompressionXZ
	case len(b) >= 4 && b[0] == 'B' && b[1] == 'Z' && b[2] == 'h' && b[3] >= '1' && b[3] <= '9':
		return CompressionBZ2
	}
	return CompressionNone
}

// decompress unwraps b when it carries a known container and returns it
// unchanged otherwise.
func decompress(b []byte) ([]byte, Compression, error) {
	kind := sniffCompression(b)
	var r io.Reader
	switch kind {
	case CompressionNone:
		return b, kind, nil
	case CompressionGZ:
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case CompressionZSTD:
		zr, err := zstd.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case CompressionXZ:
		zr, err := xz.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = zr
	case CompressionBZ2:
		r = bzip2.NewReader(bytes.NewReader(b))
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, kind, fmt.Errorf("read %s stream: %w", kind, err)
	}
	return out, kind, nil
}

// CompressionForPath picks a container from a file extension (".gz", ".zst",
// ".xz", ".bz2"). Anything else is written uncompressed. bzip2 is readable
// only, so NewCompressedWriter rejects it.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGZ
	case ".zst":
		return CompressionZSTD
	case ".xz":
		return CompressionXZ
	case ".bz2":
		return CompressionBZ2
	}
	return CompressionNone
}

// NewCompressedWriter wraps w for the given container. The returned close
// function flushes the container and must be called before w is closed.
func NewCompressedWriter(w io.Writer, kind Compression) (io.Writer, func() error, error) {
	switch kind {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionGZ:
		zw := gzip.NewWriter(w)
		return zw, zw.Close, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	case CompressionXZ:
		zw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return zw, zw.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported compression for writing: %s", kind)
}
