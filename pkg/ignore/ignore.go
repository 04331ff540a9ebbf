// Package ignore compiles gitignore-style rule sets into a path filter.
//
// The filter runs in allow/deny mode: every path is included unless the last
// rule matching it is a plain (non-negated) pattern.
package ignore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// BuiltinExemptions are appended after user rules so the tool's own
// configuration and instruction files are never filtered out.
var BuiltinExemptions = []string{"!.ai-snap", "!ai-snap-instruct*"}

// Rule is one compiled pattern line.
type Rule struct {
	Pattern *regexp.Regexp // Compiled regular expression for the pattern.
	Negate  bool           // Pattern started with '!' and re-includes matching paths.
	Line    string         // Original pattern line.
	LineNo  int            // Line number in the source (1-based).
}

// Matcher answers inclusion queries against an ordered rule set.
// It is read-only after Compile and safe for concurrent use.
type Matcher struct {
	rules []*Rule
}

// Compile parses the pattern lines in order, appends BuiltinExemptions and
// returns the resulting Matcher.
func Compile(patterns []string) (*Matcher, error) {
	lines := make([]string, 0, len(patterns)+len(BuiltinExemptions))
	lines = append(lines, patterns...)
	lines = append(lines, BuiltinExemptions...)

	m := &Matcher{rules: make([]*Rule, 0, len(lines))}
	for i, line := range lines {
		rule, err := parsePatternLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			m.rules = append(m.rules, rule)
		}
	}
	return m, nil
}

// LoadRuleFile reads a rule file (one pattern per line) and compiles it.
func LoadRuleFile(path string) (*Matcher, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRuleFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	m, err := Compile(strings.Split(string(content), "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	return m, nil
}

// Rules returns the compiled rules in evaluation order, built-in exemptions last.
func (m *Matcher) Rules() []*Rule {
	if m == nil {
		return nil
	}
	return append([]*Rule(nil), m.rules...)
}

// Includes reports whether path survives the rule set.
// A nil Matcher includes everything.
func (m *Matcher) Includes(path string) bool {
	included, _ := m.Match(path)
	return included
}

// Match evaluates every rule in order and returns the decision of the last
// matching one together with that rule. When nothing matches the path is
// included and the returned rule is nil.
func (m *Matcher) Match(path string) (bool, *Rule) {
	if m == nil {
		return true, nil
	}

	normalizedPath := normalizePath(path)
	if normalizedPath == "" {
		return true, nil
	}

	included := true
	var matchedRule *Rule
	for _, rule := range m.rules {
		if rule.Pattern.MatchString(normalizedPath) {
			included = rule.Negate
			matchedRule = rule
		}
	}
	return included, matchedRule
}

// normalizePath converts host separators to forward slashes and strips
// leading "./" and "/" so the path is relative to the rule root.
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	for {
		switch {
		case strings.HasPrefix(path, "./"):
			path = path[2:]
		case strings.HasPrefix(path, "/"):
			path = path[1:]
		default:
			return strings.TrimSuffix(path, "/")
		}
	}
}

// parsePatternLine turns a single line into a Rule.
// Returns nil, nil for blank lines and comments.
func parsePatternLine(line string, lineNo int) (*Rule, error) {
	trimmedLine := trimTrailingSpaces(strings.TrimRight(line, "\r"))
	trimmedLine = strings.TrimLeft(trimmedLine, " \t")

	if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
		return nil, nil
	}

	negate := false
	switch {
	case strings.HasPrefix(trimmedLine, "!"):
		negate = true
		trimmedLine = trimmedLine[1:]
	case strings.HasPrefix(trimmedLine, `\!`), strings.HasPrefix(trimmedLine, `\#`):
		trimmedLine = trimmedLine[1:]
	}

	if trimmedLine == "" || trimmedLine == "/" {
		return nil, nil
	}

	compiled, err := regexp.Compile(patternToRegex(trimmedLine))
	if err != nil {
		return nil, fmt.Errorf("%w: line %d %q: %v", ErrInvalidPattern, lineNo, line, err)
	}

	return &Rule{
		Pattern: compiled,
		Negate:  negate,
		Line:    line,
		LineNo:  lineNo,
	}, nil
}

// trimTrailingSpaces removes trailing blanks unless the last one is escaped.
func trimTrailingSpaces(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		if len(s) >= 2 && s[len(s)-2] == '\\' {
			return s[:len(s)-2] + s[len(s)-1:]
		}
		s = s[:len(s)-1]
	}
	return s
}
