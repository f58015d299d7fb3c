// Package errors defines the coded errors shared by the stylegraph library,
// CLI and HTTP server.
//
// Every failure that crosses a package boundary is an [*Error] carrying a
// [Code]. Callers branch on the code, never on message text:
//
//	if errors.Is(err, errors.ErrCodeInUseAsDefault) {
//	    // clear the default first
//	}
//
// Repository codes (DUPLICATE_ID, NOT_FOUND, IN_USE_AS_DEFAULT, STALE_HANDLE)
// and INVALID_INPUT are recoverable: the caller corrects its arguments and
// tries again. CORRUPT_GRAPH means a decode attempt produced nothing usable.
//
// A bare *Error with only a Code set works as a target for the standard
// library's errors.Is, so codes can be matched through foreign wrappers too.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeDuplicateID    Code = "DUPLICATE_ID"
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeInUseAsDefault Code = "IN_USE_AS_DEFAULT"
	ErrCodeStaleHandle    Code = "STALE_HANDLE"
	ErrCodeCorruptGraph   Code = "CORRUPT_GRAPH"
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeInternal       Code = "INTERNAL_ERROR"
	ErrCodeUnsupported    Code = "UNSUPPORTED"
)

type codeInfo struct {
	category    string
	recoverable bool
}

var codes = map[Code]codeInfo{
	ErrCodeDuplicateID:    {"repository", true},
	ErrCodeNotFound:       {"repository", true},
	ErrCodeInUseAsDefault: {"repository", true},
	ErrCodeStaleHandle:    {"repository", true},
	ErrCodeCorruptGraph:   {"decode", false},
	ErrCodeInvalidInput:   {"input", true},
	ErrCodeInvalidFormat:  {"input", false},
	ErrCodeInvalidPath:    {"input", false},
	ErrCodeNetwork:        {"backend", false},
	ErrCodeInternal:       {"internal", false},
	ErrCodeUnsupported:    {"internal", false},
}

// Category groups codes for display: repository, decode, input, backend or
// internal. Unknown codes report "unknown".
func (c Code) Category() string {
	if info, ok := codes[c]; ok {
		return info.category
	}
	return "unknown"
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a target *Error by code when the target carries no message,
// so errors.Is(err, &Error{Code: ErrCodeNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// New returns an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an error with a formatted message that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func outermost(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain has code. A
// CORRUPT_GRAPH wrapping a NOT_FOUND is CORRUPT_GRAPH.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := outermost(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix and cause.
func UserMessage(err error) string {
	if e := outermost(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether the caller can retry with corrected arguments.
func Recoverable(err error) bool {
	return codes[GetCode(err)].recoverable
}
