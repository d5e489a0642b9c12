package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes each payload to <dir>/<key>.
type FileSink struct {
	dir string
}

// NewFileSink creates a file sink rooted at dir ("." when empty).
func NewFileSink(dir string) (*FileSink, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Type implements Sink.
func (s *FileSink) Type() string { return TypeFile }

// Path returns the file a key is written to.
func (s *FileSink) Path(key string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+key)))
}

// Write implements Sink. An existing file is truncated.
func (s *FileSink) Write(_ context.Context, key string, payload []byte) error {
	err := os.WriteFile(s.Path(key), payload, 0o644)
	record(TypeFile, err)
	if err != nil {
		return fmt.Errorf("write dump file: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *FileSink) Close() error { return nil }
