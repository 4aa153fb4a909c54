// Package archive writes and reads export files. A ".zst" suffix selects zstd compression.
package archive

import (
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Ext marks a compressed archive.
const Ext = ".zst"

var enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
var dec, _ = zstd.NewReader(nil)

// Document is the on-disk shape of an export.
type Document[T any] struct {
	Kind       string    `json:"kind"`
	ExportedAt time.Time `json:"exported_at"`
	Items      []T       `json:"items"`
}

// Encode serializes items as a Document of the given kind, compressed when compress is set.
func Encode[T any](kind string, items []T, compress bool) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(Document[T]{Kind: kind, ExportedAt: time.Now().UTC(), Items: items}, "", "  ")
	if err != nil {
		return nil, err
	}
	if !compress {
		return b, nil
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b)/2)), nil
}

// Decode is the inverse of Encode. It rejects a document of another kind.
func Decode[T any](kind string, b []byte, compressed bool) ([]T, error) {
	if compressed {
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		b = out
	}
	var doc Document[T]
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	if doc.Kind != kind {
		return nil, fmt.Errorf("archive holds %q, expected %q", doc.Kind, kind)
	}
	return doc.Items, nil
}

func Write[T any](path, kind string, items []T) error {
	b, err := Encode(kind, items, strings.HasSuffix(path, Ext))
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func Read[T any](path, kind string) ([]T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode[T](kind, b, strings.HasSuffix(path, Ext))
}
