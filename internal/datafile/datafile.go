// Package datafile opens reference data files (line tables, filter curves)
// with transparent decompression selected by file extension, and computes
// content fingerprints so loaded tables can be identified in logs.
package datafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrEmptyPath is returned when no path was configured.
var ErrEmptyPath = errors.New("datafile: empty path")

// Codec identifies the compression applied to a data file.
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
	CodecLZ4
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CodecFor picks the codec from the file extension.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CodecGzip
	case ".zst", ".zstd":
		return CodecZstd
	case ".lz4":
		return CodecLZ4
	default:
		return CodecNone
	}
}

// ReadAll reads and decompresses the file at path.
func ReadAll(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	return Decode(raw, CodecFor(path))
}

// Decode decompresses raw according to codec.
func Decode(raw []byte, codec Codec) ([]byte, error) {
	var r io.Reader
	switch codec {
	case CodecNone:
		return raw, nil
	case CodecGzip:
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("datafile: gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("datafile: zstd: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("datafile: zstd: %w", err)
		}
		return out, nil
	case CodecLZ4:
		r = lz4.NewReader(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("datafile: unknown codec %d", codec)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("datafile: %s: %w", codec, err)
	}
	return out, nil
}

// Encode compresses data with codec. It exists mainly so tests and tooling can
// produce fixtures in every supported format.
func Encode(data []byte, codec Codec) ([]byte, error) {
	var buf bytes.Buffer
	switch codec {
	case CodecNone:
		return append([]byte(nil), data...), nil
	case CodecGzip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return out, nil
	case CodecLZ4:
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("datafile: unknown codec %d", codec)
	}
	return buf.Bytes(), nil
}

// Fingerprint returns the xxhash64 digest of data.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
