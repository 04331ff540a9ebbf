package ignore

import "errors"

var (
	// ErrRuleFileNotFound indicates a requested rule file does not exist.
	ErrRuleFileNotFound = errors.New("rule file not found")
	// ErrInvalidPattern indicates a pattern that cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")
)
