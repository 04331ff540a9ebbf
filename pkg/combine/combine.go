// Package combine assembles a project snapshot: a listing of the included
// files followed by their contents, optionally wrapped by instruction text.
package combine

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// Section headers of a snapshot document.
const (
	StructureHeader = "Project Structure:\n"
	ContentsHeader  = "File Contents:\n"
)

// Assemble walks args.Root, filters files through args.Matcher and renders
// the snapshot document. The only error is an unusable root, reported before
// the walk starts; per-file read failures are rendered in place.
func Assemble(args *Arguments, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Starting snapshot assembly", zap.String("root", args.Root))

	paths, err := Walk(args.Root, logger)
	if err != nil {
		logger.Error("Failed to walk snapshot root", zap.String("root", args.Root), zap.Error(err))
		return "", err
	}

	excluded := make(map[string]bool, len(args.Exclude))
	for _, p := range args.Exclude {
		excluded[p] = true
	}

	structure := make([]string, 0, len(paths))
	contents := make([]string, 0, len(paths))
	for _, relPath := range paths {
		if excluded[relPath] {
			logger.Debug("Skipping output file", zap.String("relPath", relPath))
			continue
		}
		if included, rule := args.Matcher.Match(relPath); !included {
			logger.Debug("Skipping excluded file",
				zap.String("relPath", relPath),
				zap.String("pattern", rule.Line),
				zap.Int("lineNo", rule.LineNo))
			continue
		}

		entry := Entry{Path: relPath, Language: LanguageTag(relPath)}
		structure = append(structure, entry.Path)
		contents = append(contents, ProcessEntry(args.Root, entry, logger))
	}

	logger.Debug("Assembled snapshot",
		zap.Int("walkedFiles", len(paths)),
		zap.Int("includedFiles", len(structure)))
	return Compose(args.Instructions, structure, contents, args.Footer), nil
}

// Compose joins the document sections:
// [instructions + blank line] + structure + contents + [blank line + footer].
func Compose(instructions string, structure, contents []string, footer string) string {
	var b strings.Builder

	if instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}

	b.WriteString(StructureHeader)
	b.WriteString(strings.Join(structure, "\n - "))
	b.WriteString("\n\n")

	b.WriteString(ContentsHeader)
	b.WriteString(strings.Join(contents, "\n"))

	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}
	return b.String()
}

// Digest returns the hex xxh3-128 digest of a document.
func Digest(document string) string {
	return fmt.Sprintf("%x", xxh3.HashString128(document).Bytes())
}
