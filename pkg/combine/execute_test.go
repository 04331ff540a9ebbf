package combine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aisnap/pkg/output"

	"go.uber.org/zap/zaptest"
)

// recordingSink collects every emitted document.
type recordingSink struct {
	docs chan string
}

func (r *recordingSink) Emit(document string) error {
	r.docs <- document
	return nil
}

func (r *recordingSink) Target() string { return "memory" }

func TestExecute_WellKnownFiles(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeTree(t, workDir, map[string]string{
		DefaultConfigFile:         "*.log\n" + DefaultInstructFile + "*\n",
		DefaultInstructFile:       "Do X",
		DefaultInstructFooterFile: "End.",
		"app.py":                  "print(1)",
		"debug.log":               "noise",
	})

	opts, err := ResolveOptions(workDir, Flags{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Execute(opts, &output.Stdout{W: &buf}, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := "Do X\n\n" +
		"Project Structure:\n.ai-snap\n - app.py\n\n" +
		"File Contents:\n" +
		".ai-snap:\n```\n*.log\n.ai-snap-instructions*\n\n```\n\n" +
		"app.py:\n```python\nprint(1)\n```\n" +
		"\n\nEnd.\n"
	assertDocument(t, buf.String(), want)
}

func TestExecute_FileSink(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "print(1)", "b.txt": "hello"})
	outPath := filepath.Join(t.TempDir(), "out", "snapshot.md")

	opts := Options{Root: root, Output: outPath}
	sink, err := output.New(opts.Output, false, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := Execute(opts, sink, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "Project Structure:\na.py\n - b.txt\n\n" +
		"File Contents:\na.py:\n```python\nprint(1)\n```\n\nb.txt:\n```text\nhello\n```\n"
	assertDocument(t, string(got), want)
}

func TestBuild_ConfigErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "bad-rules": "[z-a]\n"})
	logger := zaptest.NewLogger(t)

	// A directory exists but cannot be read as text.
	if _, err := Build(Options{Root: root, InstructFile: root}, logger); !errors.Is(err, ErrConfigUnreadable) {
		t.Fatalf("instruction err = %v; want ErrConfigUnreadable", err)
	}
	if _, err := Build(Options{Root: root, FooterFile: root}, logger); !errors.Is(err, ErrConfigUnreadable) {
		t.Fatalf("footer err = %v; want ErrConfigUnreadable", err)
	}
	if _, err := Build(Options{Root: root, ConfigFile: filepath.Join(root, "bad-rules")}, logger); err == nil {
		t.Fatal("expected an error for an invalid rule file")
	}
	if _, err := Build(Options{Root: filepath.Join(root, "a.txt")}, logger); !errors.Is(err, ErrInvalidRoot) {
		t.Fatalf("root err = %v; want ErrInvalidRoot", err)
	}
}

func TestBuild_ExcludesOutputFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":         "a",
		"snap.txt":      "Project Structure:\nold\n",
		"out/other.txt": "o",
	})
	logger := zaptest.NewLogger(t)

	got, err := Build(Options{Root: root, Output: filepath.Join(root, "snap.txt")}, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "Project Structure:\na.txt\n - out/other.txt\n\n" +
		"File Contents:\na.txt:\n```text\na\n```\n\nout/other.txt:\n```text\no\n```\n"
	assertDocument(t, got, want)

	// An output file outside the root changes nothing.
	got, err = Build(Options{Root: filepath.Join(root, "out"), Output: filepath.Join(root, "snap.txt")}, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "other.txt:\n```text\no\n```\n") {
		t.Fatalf("unexpected document %q", got)
	}
}

func TestWatch_OutputFileInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "v0"})
	outPath := filepath.Join(root, "snap.txt")

	opts := Options{Root: root, Output: outPath}
	sink, err := output.New(opts.Output, false, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, opts, sink, zaptest.NewLogger(t))
	}()

	waitFor := func(marker string) string {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if data, err := os.ReadFile(outPath); err == nil && strings.Contains(string(data), marker) {
				return string(data)
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("output never contained %q", marker)
		return ""
	}

	waitFor("v0")
	time.Sleep(100 * time.Millisecond)
	var final string
	for _, v := range []string{"v1", "v2", "v3"} {
		writeTree(t, root, map[string]string{"a.txt": v})
		final = waitFor("```text\n" + v + "\n```")
	}

	if n := strings.Count(final, "Project Structure:"); n != 1 {
		t.Fatalf("snapshot embeds %d structure sections, want 1:\n%s", n, final)
	}
	if strings.Contains(final, "snap.txt") {
		t.Fatalf("snapshot lists its own output file:\n%s", final)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestWatch_EmitsOnChange(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "one"})

	sink := &recordingSink{docs: make(chan string, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{Root: root}, sink, zaptest.NewLogger(t))
	}()

	next := func() string {
		t.Helper()
		select {
		case doc := <-sink.docs:
			return doc
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a snapshot")
			return ""
		}
	}

	if first := next(); !strings.Contains(first, "a.txt:\n```text\none\n```\n") {
		t.Fatalf("initial snapshot = %q", first)
	}

	// Give the watcher time to register before changing the tree.
	time.Sleep(100 * time.Millisecond)
	writeTree(t, root, map[string]string{"a.txt": "two"})

	if second := next(); !strings.Contains(second, "a.txt:\n```text\ntwo\n```\n") {
		t.Fatalf("updated snapshot = %q", second)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}
