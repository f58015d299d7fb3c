package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/observability"
)

// Format selects a graph codec.
type Format string

const (
	FormatBinary Format = "binary"
	FormatJSON   Format = "json"
)

// File extensions recognized by [FormatFromPath].
const (
	ExtBinary = ".sgb"
	ExtJSON   = ".json"
)

// ParseFormat parses a format name ("binary", "sgb" or "json").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "binary", "sgb", "proto", "protobuf":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtBinary:
		return FormatBinary, nil
	case ExtJSON:
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot infer graph format from %q (want %s or %s)", path, ExtBinary, ExtJSON)
}

// ContentType returns the MIME type used for the format over HTTP.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/x-protobuf"
}

// Marshal encodes g in the given format and reports the result to the
// registered codec hooks. Progress goes to the [ProgressFunc] attached with
// [WithProgress], if any.
func Marshal(ctx context.Context, g *graph.Graph, format Format) ([]byte, error) {
	start := time.Now()
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatBinary:
		data, err = encodeBinary(g, progressFrom(ctx))
	case FormatJSON:
		var buf bytes.Buffer
		err = writeJSON(g, &buf, progressFrom(ctx))
		data = buf.Bytes()
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format)
	}
	observability.Codec().OnEncode(ctx, string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Unmarshal decodes data in the given format and reports the result to the
// registered codec hooks and to any [ProgressFunc] attached to ctx.
func Unmarshal(ctx context.Context, data []byte, format Format) (*graph.Graph, error) {
	start := time.Now()
	var (
		g   *graph.Graph
		err error
	)
	switch format {
	case FormatBinary:
		g, err = decodeBinary(data, progressFrom(ctx))
	case FormatJSON:
		g, err = readJSON(bytes.NewReader(data), progressFrom(ctx))
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format)
	}
	observability.Codec().OnDecode(ctx, string(format), len(data), time.Since(start), err)
	return g, err
}

// Write encodes g in the given format and writes it to w.
func Write(ctx context.Context, g *graph.Graph, format Format, w io.Writer) error {
	data, err := Marshal(ctx, g, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Read reads all of r and decodes it in the given format.
func Read(ctx context.Context, r io.Reader, format Format) (*graph.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(ctx, data, format)
}

// ImportFile reads a graph file, choosing the codec by extension.
func ImportFile(ctx context.Context, path string) (*graph.Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Unmarshal(ctx, data, format)
}

// ExportFile writes a graph file, choosing the codec by extension. The file
// is written to a temporary sibling and renamed into place, so readers never
// observe a partial graph.
func ExportFile(ctx context.Context, g *graph.Graph, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(ctx, g, format)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".stylegraph-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
