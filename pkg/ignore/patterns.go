package ignore

import (
	"regexp"
	"strings"
)

// Prefixes and suffixes used when anchoring a translated pattern.
const (
	rootAnchor    = `^`
	anyDirAnchor  = `^(?:.*/)?`
	selfOrBelow   = `(?:/.*)?$`
	strictlyBelow = `/.*$`
)

// patternToRegex translates one gitignore pattern (negation already removed)
// into a regular expression over slash-separated file paths.
//
// A pattern with a slash before its last character is anchored at the root,
// otherwise it may match at any depth. A trailing slash restricts the pattern
// to directories, which for file paths means "something below it".
func patternToRegex(pattern string) string {
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	prefix := anyDirAnchor
	if anchored {
		prefix = rootAnchor
	}
	suffix := selfOrBelow
	if dirOnly {
		suffix = strictlyBelow
	}
	return prefix + globToRegex(pattern) + suffix
}

// globToRegex converts wildcards, double stars and character classes to
// their regex equivalents and escapes everything else.
func globToRegex(pattern string) string {
	var b strings.Builder

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*' && strings.HasPrefix(pattern[i:], "**"):
			segmentStart := i == 0 || pattern[i-1] == '/'
			rest := pattern[i+2:]
			switch {
			case segmentStart && strings.HasPrefix(rest, "/"):
				// Leading or middle "**/" spans zero or more directories.
				b.WriteString(`(?:.*/)?`)
				i += 2
			case segmentStart && rest == "":
				b.WriteString(`.*`)
				i++
			default:
				// Inside a segment "**" is an ordinary star.
				b.WriteString(`[^/]*`)
				i++
			}
		case c == '*':
			b.WriteString(`[^/]*`)
		case c == '?':
			b.WriteString(`[^/]`)
		case c == '[':
			end := findCharClassEnd(pattern, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(charClassToRegex(pattern[i+1 : end]))
			i = end
		case c == '\\' && i+1 < len(pattern):
			i++
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return b.String()
}

// charClassToRegex rewrites the body of a "[...]" glob class.
func charClassToRegex(body string) string {
	var b strings.Builder
	b.WriteByte('[')

	switch {
	case strings.HasPrefix(body, "!"):
		b.WriteByte('^')
		body = body[1:]
	case strings.HasPrefix(body, "^"):
		b.WriteString(`\^`)
		body = body[1:]
	}

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteByte(body[i])
	}

	b.WriteByte(']')
	return b.String()
}

// findCharClassEnd returns the index of the ']' closing the class opened at
// start, or -1 when the class is unterminated.
func findCharClassEnd(pattern string, start int) int {
	i := start + 1
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for ; i < len(pattern); i++ {
		if pattern[i] == ']' {
			return i
		}
	}
	return -1
}
