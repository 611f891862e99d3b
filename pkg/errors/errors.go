// Package errors provides the coded errors used across graphrender.
//
// Every failure the renderer can surface carries a [Code] naming its kind, so
// the CLI and the serve API map failures to exit paths and HTTP statuses
// without string matching. An error may also name its subject, the node,
// port, edge or icon it is about.
//
// # Codes
//
// Fatal kinds abort a render and nothing is written:
//   - INVALID_INPUT: malformed or incomplete layout JSON
//   - STRUCTURAL: cyclic or otherwise invalid parent/child relationships
//   - EDGE_RESOLUTION: an edge names a node or port that does not exist
//     (fatal only under the abort edge policy)
//   - THEME_COMPILATION: the SCSS/SASS compiler is missing or failed
//
// Recoverable kinds never escape the icon cache:
//   - FETCH: an icon could not be downloaded
//   - CACHE_CORRUPTION: a persisted icon failed validation
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEdgeResolution, "target %q does not exist", ref).At(edgeID)
//	if errors.Is(err, errors.ErrCodeEdgeResolution) {
//	    log.Warn("skipping edge", "edge", errors.SubjectOf(err))
//	}
//
//	err = errors.Wrap(errors.ErrCodeFetch, cause, "download %s", icon)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure kind.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidTheme   Code = "INVALID_THEME"
	ErrCodeInvalidProfile Code = "INVALID_PROFILE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	ErrCodeStructural     Code = "STRUCTURAL"
	ErrCodeEdgeResolution Code = "EDGE_RESOLUTION"

	ErrCodeThemeCompilation Code = "THEME_COMPILATION"

	// Recoverable: reported as render warnings.
	ErrCodeFetch           Code = "FETCH"
	ErrCodeCacheCorruption Code = "CACHE_CORRUPTION"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Recoverable reports whether failures of this kind degrade a render
// instead of aborting it.
func (c Code) Recoverable() bool {
	return c == ErrCodeFetch || c == ErrCodeCacheCorruption
}

// Error is a coded failure with an optional subject and cause.
type Error struct {
	Code    Code
	Subject string // id of the element the failure is about, if any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	head := string(e.Code)
	if e.Subject != "" {
		head += " [" + e.Subject + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", head, e.Message, e.Cause)
	}
	return head + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// At sets the subject and returns e.
func (e *Error) At(subject string) *Error {
	e.Subject = subject
	return e
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error carrying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for e := range chain(err) {
		if e.Code == code {
			return true
		}
	}
	return false
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	for e := range chain(err) {
		return e.Code
	}
	return ""
}

// SubjectOf returns the first subject set in err's chain, or "".
func SubjectOf(err error) string {
	for e := range chain(err) {
		if e.Subject != "" {
			return e.Subject
		}
	}
	return ""
}

// UserMessage renders err for people: messages and causes without codes.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}

// IsFatal reports whether err must abort a render. Uncoded errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !GetCode(err).Recoverable()
}

// chain yields each *Error found by walking err's causes.
func chain(err error) func(yield func(*Error) bool) {
	return func(yield func(*Error) bool) {
		for err != nil {
			var e *Error
			if !errors.As(err, &e) || !yield(e) {
				return
			}
			err = e.Cause
		}
	}
}
