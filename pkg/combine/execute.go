// File: pkg/combine/execute.go
package combine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"aisnap/pkg/ignore"
	"aisnap/pkg/output"
	"aisnap/pkg/textfile"
	"aisnap/pkg/watch"

	"go.uber.org/zap"
)

// Execute builds the snapshot described by opts and hands it to sink.
func Execute(opts Options, sink output.Sink, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	document, err := Build(opts, logger)
	if err != nil {
		return err
	}

	if err := sink.Emit(document); err != nil {
		logger.Error("Failed to emit snapshot", zap.String("target", sink.Target()), zap.Error(err))
		return fmt.Errorf("failed to emit snapshot: %w", err)
	}

	logger.Info("Snapshot completed",
		zap.String("target", sink.Target()),
		zap.String("digest", Digest(document)),
		zap.Int("bytes", len(document)),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}

// Build loads the rule set and instruction texts named by opts and assembles
// the document. Every configuration problem surfaces here, before the walk.
func Build(opts Options, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	matcher, err := loadMatcher(opts.ConfigFile, logger)
	if err != nil {
		return "", err
	}

	instructions, err := loadText(opts.InstructFile, logger)
	if err != nil {
		return "", err
	}

	footer, err := loadText(opts.FooterFile, logger)
	if err != nil {
		return "", err
	}

	return Assemble(&Arguments{
		Root:         opts.Root,
		Matcher:      matcher,
		Instructions: instructions,
		Footer:       footer,
		Exclude:      outputExclusion(opts),
	}, logger)
}

// outputExclusion returns the output file as a root-relative path when it lies
// below the root, so a snapshot never embeds its own previous version.
func outputExclusion(opts Options) []string {
	if opts.Output == "" {
		return nil
	}
	rel, err := filepath.Rel(opts.Root, opts.Output)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}

// Watch emits one snapshot immediately and another after every relevant change
// below opts.Root until ctx is done. Unchanged documents are not re-emitted.
func Watch(ctx context.Context, opts Options, sink output.Sink, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	// The rule set is loaded once for event filtering; rebuilds reload it.
	matcher, err := loadMatcher(opts.ConfigFile, logger)
	if err != nil {
		return err
	}

	var lastDigest string
	rebuild := func() error {
		document, err := Build(opts, logger)
		if err != nil {
			return err
		}
		digest := Digest(document)
		if digest == lastDigest {
			logger.Debug("Snapshot unchanged, skipping emit", zap.String("digest", digest))
			return nil
		}
		if err := sink.Emit(document); err != nil {
			return fmt.Errorf("failed to emit snapshot: %w", err)
		}
		lastDigest = digest
		logger.Info("Snapshot updated", zap.String("target", sink.Target()), zap.String("digest", digest))
		return nil
	}

	if err := rebuild(); err != nil {
		return err
	}

	var exclude []string
	if opts.Output != "" {
		exclude = append(exclude, opts.Output)
	}

	w, err := watch.New(watch.Config{Root: opts.Root, Matcher: matcher, Exclude: exclude}, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("Watching for changes", zap.String("root", opts.Root))
	return w.Run(ctx, rebuild)
}

// loadMatcher compiles the rule file, or returns nil when no file is configured.
func loadMatcher(path string, logger *zap.Logger) (*ignore.Matcher, error) {
	if path == "" {
		logger.Debug("No rule file configured, including every file")
		return nil, nil
	}

	matcher, err := ignore.LoadRuleFile(path)
	if err != nil {
		logger.Error("Failed to load rule file", zap.String("file", path), zap.Error(err))
		return nil, fmt.Errorf("failed to load rule file: %w", err)
	}
	logger.Debug("Loaded rule file", zap.String("file", path), zap.Int("rules", len(matcher.Rules())))
	return matcher, nil
}

// loadText reads an instruction or footer file through the encoding-aware reader.
func loadText(path string, logger *zap.Logger) (string, error) {
	if path == "" {
		return "", nil
	}

	content := textfile.Read(path)
	if !content.OK() {
		logger.Error("Failed to read instruction file", zap.String("file", path), zap.Error(content.Err))
		return "", fmt.Errorf("%w: %s: %v", ErrConfigUnreadable, path, content.Err)
	}
	logger.Debug("Loaded instruction file", zap.String("file", path), zap.String("encoding", content.Encoding))
	return content.Text, nil
}
