// File: pkg/combine/traversal.go
package combine

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Walk lists every regular file under root as a slash-separated relative path.
//
// Each directory contributes its own files before descending into its
// subdirectories, and entries within a directory are visited in lexical
// order. Symlinked directories are not followed; symlinks to files and
// dangling symlinks are listed so reading them reports the problem.
// Unreadable subdirectories are logged and skipped.
func Walk(root string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	var files []string
	walkDirectory(root, "", &files, logger)

	logger.Debug("Completed directory walk", zap.String("root", root), zap.Int("files", len(files)))
	return files, nil
}

// walkDirectory appends the files of dir, then recurses into its subdirectories.
func walkDirectory(dir, relDir string, files *[]string, logger *zap.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Error reading directory during traversal", zap.String("directory", dir), zap.Error(err))
		return
	}

	var subdirs []string
	for _, entry := range entries {
		relPath := path.Join(relDir, entry.Name())
		fullPath := filepath.Join(dir, entry.Name())

		switch mode := entry.Type(); {
		case mode.IsDir():
			subdirs = append(subdirs, entry.Name())
		case mode.IsRegular():
			*files = append(*files, relPath)
		case mode&fs.ModeSymlink != 0:
			if includeSymlink(fullPath, logger) {
				*files = append(*files, relPath)
			}
		default:
			logger.Debug("Skipping non-regular file", zap.String("filePath", fullPath), zap.Stringer("mode", mode))
		}
	}

	for _, name := range subdirs {
		walkDirectory(filepath.Join(dir, name), path.Join(relDir, name), files, logger)
	}
}

// includeSymlink reports whether a symlink is listed as a file.
func includeSymlink(fullPath string, logger *zap.Logger) bool {
	target, err := os.Stat(fullPath)
	if err != nil {
		logger.Debug("Listing dangling symlink", zap.String("filePath", fullPath), zap.Error(err))
		return true
	}
	if target.IsDir() {
		logger.Debug("Not following symlinked directory", zap.String("directory", fullPath))
		return false
	}
	if !target.Mode().IsRegular() {
		logger.Debug("Skipping symlink to non-regular file", zap.String("filePath", fullPath))
		return false
	}
	return true
}
