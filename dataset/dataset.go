// Package dataset reads and writes relationship datasets and loads them
// into a container.
//
// A dataset is a YAML (or JSON) document:
//
//	relationships:
//	  - sources: [a]
//	    targets: [b, c]
//
// Files ending in .zst or .lz4 are compressed with zstd or lz4 frames.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/relgraph/container"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyRelationship is returned for an entry with neither sources nor targets.
	ErrEmptyRelationship = errors.New("relationship has no sources and no targets")
	// ErrUnsupportedCompression is returned for an unknown Compression value.
	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// Relationship is one dataset entry.
type Relationship struct {
	Sources []any `yaml:"sources,omitempty"`
	Targets []any `yaml:"targets,omitempty"`
}

// Dataset is a decoded dataset document.
type Dataset struct {
	Relationships []Relationship `yaml:"relationships"`
}

// Compression selects the framing of a dataset file.
type Compression uint8

const (
	// CompressionNone reads and writes plain text.
	CompressionNone Compression = iota
	// CompressionZSTD uses zstd frames.
	CompressionZSTD
	// CompressionLZ4 uses lz4 frames.
	CompressionLZ4
)

// CompressionFor derives the compression from a file name.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Decode parses a dataset from r. JSON is accepted as a subset of YAML.
func Decode(r io.Reader, comp Compression) (*Dataset, error) {
	switch comp {
	case CompressionNone:
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	case CompressionLZ4:
		r = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, comp)
	}

	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Encode writes ds to w as YAML.
func Encode(w io.Writer, ds *Dataset, comp Compression) error {
	var (
		out   = w
		closeFn func() error
	)
	switch comp {
	case CompressionNone:
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		out, closeFn = enc, enc.Close
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		out, closeFn = zw, zw.Close
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedCompression, comp)
	}

	enc := yaml.NewEncoder(out)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if closeFn != nil {
		return closeFn()
	}
	return nil
}

// ReadFile reads the dataset at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Decode(f, CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// WriteFile writes ds to path, compressed according to its extension.
func WriteFile(path string, ds *Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, ds, CompressionFor(path))
}

// Validate checks every entry.
func (ds *Dataset) Validate() error {
	for i, r := range ds.Relationships {
		if len(r.Sources) == 0 && len(r.Targets) == 0 {
			return fmt.Errorf("relationship %d: %w", i, ErrEmptyRelationship)
		}
	}
	return nil
}

// Load adds every relationship of ds to c and returns the generated keys in
// dataset order. Loading stops at the first failure.
func Load(c *container.Container, ds *Dataset) ([]string, error) {
	keys := make([]string, 0, len(ds.Relationships))
	for i, r := range ds.Relationships {
		key, err := c.Add(container.NewRelationship(r.Sources, r.Targets))
		if err != nil {
			return keys, fmt.Errorf("relationship %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Open reads the dataset at path into a new container.
func Open(path string, optFns ...container.Option) (*container.Container, error) {
	ds, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := container.New(optFns...)
	if err != nil {
		return nil, err
	}
	if _, err := Load(c, ds); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
