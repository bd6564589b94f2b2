// Package mpkgerr implements the error taxonomy mpkg's components report
// through: usage, format, I/O, missing-lookup, partial-non-fatal and
// programmer-invariant errors, each carrying enough context for a CLI layer
// to choose an exit code without re-deriving it from the message text.
package mpkgerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error for exit-code and logging policy decisions.
type Kind int

const (
	// KindUsage covers bad flags or missing required arguments.
	KindUsage Kind = iota
	// KindFormat covers malformed on-disk data: bad magic, truncated
	// headers, manifest/catalog syntax errors.
	KindFormat
	// KindIO covers failed syscalls (open, read, write, stat, ...).
	KindIO
	// KindMissing covers a required lookup (catalog, installed db) that
	// came back empty.
	KindMissing
	// KindPartial covers a non-fatal failure during uninstall or script
	// execution: callers log it and continue the transaction.
	KindPartial
	// KindProgrammer covers invariant violations that should never
	// happen given correct calling code.
	KindProgrammer
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindFormat:
		return "format"
	case KindIO:
		return "io"
	case KindMissing:
		return "missing"
	case KindPartial:
		return "partial"
	case KindProgrammer:
		return "programmer"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every mpkg package.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.err)
	}
	return e.msg
}

// Unwrap lets errors.Is/errors.As reach the underlying cause (typically an
// *os.PathError or syscall.Errno). Error has no Cause method, so
// github.com/pkg/errors.Cause stops at the *Error itself.
func (e *Error) Unwrap() error { return e.err }

// Usage reports a usage error: bad flags, missing required argument.
func Usage(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, msg: fmt.Sprintf(format, args...)}
}

// Format reports a malformed-data error, optionally anchored to a file and
// line number (pass line <= 0 to omit it).
func Format(path string, line int, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		return &Error{Kind: KindFormat, msg: fmt.Sprintf("%s:%d: %s", path, line, msg)}
	}
	return &Error{Kind: KindFormat, msg: fmt.Sprintf("%s: %s", path, msg)}
}

// IO wraps a failed syscall with its name and the path it operated on.
func IO(syscallName, path string, cause error) *Error {
	return &Error{
		Kind: KindIO,
		msg:  fmt.Sprintf("%s: %s", syscallName, path),
		err:  errors.WithStack(cause),
	}
}

// Missing reports a required lookup (catalog/db) that found nothing.
func Missing(what, name string) *Error {
	return &Error{Kind: KindMissing, msg: fmt.Sprintf("%s: %s: not found", what, name)}
}

// Partial reports a non-fatal failure: unlink during uninstall, rmdir on a
// non-empty directory, a script exiting -1 or 127. Call sites log it via
// logrus.Warn and continue; it is never returned from a Worker's public
// entry point.
func Partial(format string, args ...any) *Error {
	return &Error{Kind: KindPartial, msg: fmt.Sprintf(format, args...)}
}

// Programmer reports an invariant violation: negative size, nil borrowed
// handle, and similar conditions that indicate a bug in the caller.
func Programmer(format string, args ...any) *Error {
	return &Error{Kind: KindProgrammer, msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
