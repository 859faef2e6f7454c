package snapshot

import "fmt"

// CleanupError is the single recoverable error kind surfaced by the cleanup
// pipeline. It marks conditions under which the run cannot continue (snapshot
// missing or unparseable, report file not found, automatic checks requested
// without a vault root). All of these are detected during the read/setup
// phase, before any mutation or write.
type CleanupError struct {
	msg string
	err error
}

func (e *CleanupError) Error() string { return e.msg }

func (e *CleanupError) Unwrap() error { return e.err }

// NewCleanupError creates a CleanupError with a formatted message.
func NewCleanupError(format string, args ...interface{}) *CleanupError {
	return &CleanupError{msg: fmt.Sprintf(format, args...)}
}

// WrapCleanupError creates a CleanupError that wraps an underlying cause.
// The cause remains reachable via errors.Is/errors.As.
func WrapCleanupError(err error, format string, args ...interface{}) *CleanupError {
	return &CleanupError{msg: fmt.Sprintf(format, args...), err: err}
}
