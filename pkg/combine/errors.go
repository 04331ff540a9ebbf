package combine

import "errors"

var (
	// ErrConfigNotFound indicates an explicitly requested input file is missing.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrConfigUnreadable indicates an instruction or footer file exists but cannot be read as text.
	ErrConfigUnreadable = errors.New("config file unreadable")
	// ErrInvalidRoot indicates the snapshot root is not a readable directory.
	ErrInvalidRoot = errors.New("invalid snapshot root")
)
