// File: pkg/combine/config.go
package combine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aisnap/pkg/ignore"
	"aisnap/pkg/output"
)

// Well-known files probed in the working directory when no explicit path is given.
const (
	DefaultConfigFile         = ".ai-snap"
	DefaultInstructFile       = ".ai-snap-instructions"
	DefaultInstructFooterFile = ".ai-snap-instructions-footer"
)

// Arguments holds the fully-resolved inputs of one snapshot assembly.
type Arguments struct {
	Root         string          // Directory to snapshot.
	Matcher      *ignore.Matcher // Rule set filter; nil includes every file.
	Instructions string          // Header text; empty means none.
	Footer       string          // Footer text; empty means none.
	Exclude      []string        // Root-relative slash paths never listed, e.g. the output file.
}

// Flags mirrors the raw command-line surface before resolution.
type Flags struct {
	Root           string // Snapshot root, relative to the working directory.
	ConfigFile     string // Explicit rule-set path.
	Instruct       string // Explicit instruction header path.
	InstructFooter string // Explicit instruction footer path.
	Output         string // Output file path, "-" or empty for stdout.
	Clipboard      bool   // Copy the document to the clipboard instead of printing it.
}

// Options is the result of resolving Flags against a working directory.
// Empty paths mean the corresponding input is absent.
type Options struct {
	Root         string // Absolute snapshot root.
	ConfigFile   string // Rule-set file, or empty for no filtering.
	InstructFile string // Instruction header file.
	FooterFile   string // Instruction footer file.
	Output       string // Absolute output file path, or empty for stdout.
	Clipboard    bool   // Emit to the clipboard.
}

// Entry is one included file of a snapshot.
type Entry struct {
	Path     string // Slash-separated path relative to the snapshot root.
	Language string // Fence language tag; empty when the extension is unknown.
}

// ResolveOptions turns flags into Options. Explicitly requested files must
// exist; otherwise the well-known defaults are probed in workDir. Conflicting
// output destinations are rejected before anything else is checked.
func ResolveOptions(workDir string, flags Flags) (Options, error) {
	if err := output.Validate(flags.Output, flags.Clipboard); err != nil {
		return Options{}, err
	}

	var opts Options
	var err error

	root := flags.Root
	if root == "" {
		root = "."
	}
	opts.Root = absFrom(workDir, root)

	if opts.ConfigFile, err = resolveInput(workDir, flags.ConfigFile, DefaultConfigFile); err != nil {
		return Options{}, err
	}
	if opts.InstructFile, err = resolveInput(workDir, flags.Instruct, DefaultInstructFile); err != nil {
		return Options{}, err
	}
	if opts.FooterFile, err = resolveInput(workDir, flags.InstructFooter, DefaultInstructFooterFile); err != nil {
		return Options{}, err
	}

	if flags.Output != "" && flags.Output != output.StdoutPath {
		opts.Output = absFrom(workDir, flags.Output)
	}
	opts.Clipboard = flags.Clipboard
	return opts, nil
}

// resolveInput returns the explicit path when given (it must exist), the
// default file when it exists in workDir, or an empty string.
func resolveInput(workDir, explicit, fallback string) (string, error) {
	if explicit != "" {
		path := absFrom(workDir, explicit)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
			}
			return "", fmt.Errorf("failed to stat %s: %w", explicit, err)
		}
		return path, nil
	}

	path := filepath.Join(workDir, fallback)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	return "", nil
}

func absFrom(workDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workDir, path)
}
