// Package sink persists serialized SBOMs to stdout, local files or S3.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
	"github.com/KAWAHARA-souta/alma-sbom/internal/utils"
)

// Sink is a destination for a single document.
type Sink interface {
	// Put stores data. A failed Put leaves no partial object behind.
	Put(ctx context.Context, data []byte) error

	// Location describes where the data goes, for log output
	Location() string
}

// Opener resolves an output location to a Sink.
type Opener func(ctx context.Context, location string) (Sink, error)

// IsStdout reports whether location selects standard output.
func IsStdout(location string) bool {
	return location == "" || location == "-"
}

// Open returns the sink for location: stdout for "" or "-", S3 for
// s3://bucket/key, and a local file otherwise.
func Open(ctx context.Context, location string, s3opts S3Options) (Sink, error) {
	switch {
	case IsStdout(location):
		return NewWriter(os.Stdout, "stdout"), nil
	case strings.HasPrefix(location, s3Scheme):
		bucket, key, err := ParseS3URL(location)
		if err != nil {
			return nil, err
		}
		return NewS3(ctx, bucket, key, s3opts)
	default:
		return NewFile(location), nil
	}
}

// Writer writes to an io.Writer.
type Writer struct {
	w    io.Writer
	name string
}

// NewWriter wraps w; name is used by Location.
func NewWriter(w io.Writer, name string) *Writer {
	return &Writer{w: w, name: name}
}

// Put implements Sink.
func (s *Writer) Put(_ context.Context, data []byte) error {
	if _, err := s.w.Write(data); err != nil {
		return &models.SBOMError{Type: models.ErrFileOp, Subject: s.name, Err: err}
	}
	return nil
}

// Location implements Sink.
func (s *Writer) Location() string {
	return s.name
}

// File writes atomically to a local path.
type File struct {
	Path string
	Mode os.FileMode
}

// NewFile creates a file sink with 0644 permissions
func NewFile(path string) *File {
	return &File{Path: path, Mode: 0644}
}

// Put implements Sink.
func (s *File) Put(_ context.Context, data []byte) error {
	if err := utils.WriteFileAtomic(s.Path, data, s.Mode); err != nil {
		return &models.SBOMError{
			Type:    models.ErrFileOp,
			Subject: s.Path,
			Err:     fmt.Errorf("failed to write output: %w", err),
		}
	}
	return nil
}

// Location implements Sink.
func (s *File) Location() string {
	return s.Path
}
