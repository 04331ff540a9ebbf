// Package output delivers a finished snapshot document to exactly one destination.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// StdoutPath selects standard output as the destination.
const StdoutPath = "-"

// ErrConflictingSinks is returned when clipboard output is combined with an output file.
var ErrConflictingSinks = errors.New("--clipboard and --output are mutually exclusive")

// Sink emits a document.
type Sink interface {
	Emit(document string) error
	// Target describes the destination for logging.
	Target() string
}

// Validate rejects mutually exclusive destinations.
func Validate(path string, toClipboard bool) error {
	if toClipboard && path != "" && path != StdoutPath {
		return ErrConflictingSinks
	}
	return nil
}

// New picks the sink for an output path ("" or "-" for stdout) or the clipboard.
func New(path string, toClipboard bool, stdout io.Writer, logger *zap.Logger) (Sink, error) {
	if err := Validate(path, toClipboard); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case toClipboard:
		return &Clipboard{writeAll: clipboard.WriteAll}, nil
	case path == "" || path == StdoutPath:
		return &Stdout{W: stdout}, nil
	default:
		return &File{Path: path, Logger: logger}, nil
	}
}

// Stdout prints the document followed by a newline.
type Stdout struct {
	W io.Writer
}

// Emit writes the document and a trailing newline.
func (s *Stdout) Emit(document string) error {
	w := s.W
	if w == nil {
		w = os.Stdout
	}

	writer := bufio.NewWriter(w)
	if _, err := writer.WriteString(document); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Target implements Sink.
func (s *Stdout) Target() string { return "stdout" }

// File writes the document as UTF-8 to Path, creating parent directories.
type File struct {
	Path   string
	Logger *zap.Logger
}

// Emit replaces the file content with the document.
func (f *File) Emit(document string) error {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ensureDirectory(filepath.Dir(f.Path), logger); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeToFile(f.Path, []byte(document), 0o644, logger); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Target implements Sink.
func (f *File) Target() string { return f.Path }

// Clipboard copies the document to the system clipboard.
type Clipboard struct {
	writeAll func(string) error
}

// Emit copies the document.
func (c *Clipboard) Emit(document string) error {
	if err := c.writeAll(document); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// Target implements Sink.
func (c *Clipboard) Target() string { return "clipboard" }

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(path string, logger *zap.Logger) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Ensured directory exists", zap.String("path", path))
	return nil
}

// writeToFile writes data to a file and logs the operation.
func writeToFile(path string, data []byte, perm os.FileMode, logger *zap.Logger) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		logger.Error("Failed to write file", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Successfully wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
