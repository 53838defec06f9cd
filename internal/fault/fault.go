// Package fault defines the error shapes the emulators produce.
//
// Pipeline code branches on error identity rather than message text, so the
// emulators must fail with the same kinds a real client would: a missing
// object is NoSuchKey, a missing record is NotFound, and an operation the
// emulator does not model is UnsupportedCommand.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies the error the real service would have returned.
type Code string

const (
	// CodeNoSuchKey is the object store's missing-key error name.
	CodeNoSuchKey Code = "NoSuchKey"

	// CodeNotFound is the item store's missing-record error name.
	CodeNotFound Code = "NotFound"

	// CodeUnsupported marks a request the emulator does not implement.
	CodeUnsupported Code = "UnsupportedCommand"
)

// Kind groups codes by how callers are expected to react.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnsupported
)

// Error is returned by the emulators for the failure modes a real backend
// would surface as a typed error.
type Error struct {
	Code Code
	Kind Kind

	// Op is the emulated operation, e.g. "GetObject" or "Audit.findById".
	Op string

	// Key is the object key or record identity that was requested.
	Key string

	// Path is the resolved filesystem location, when there is one.
	Path string

	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s (path=%s)", e.Code, e.Op, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// Name returns the error name a real SDK client would report.
func (e *Error) Name() string {
	return string(e.Code)
}

// NoSuchKey creates the object store's missing-file error.
func NoSuchKey(op, key, path string) *Error {
	return &Error{
		Code:    CodeNoSuchKey,
		Kind:    KindNotFound,
		Op:      op,
		Key:     key,
		Path:    path,
		Message: "the specified key does not exist",
	}
}

// NotFound creates a missing-record error for the item store.
func NotFound(op, key, path, message string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Kind:    KindNotFound,
		Op:      op,
		Key:     key,
		Path:    path,
		Message: message,
	}
}

// Unsupported creates an error for a request the emulator does not model.
func Unsupported(op, message string) *Error {
	return &Error{
		Code:    CodeUnsupported,
		Kind:    KindUnsupported,
		Op:      op,
		Message: message,
	}
}

// IsNotFound returns true if err is a NoSuchKey or NotFound error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == KindNotFound
	}
	return false
}

// IsUnsupported returns true if err marks an unmodelled request.
func IsUnsupported(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == KindUnsupported
	}
	return false
}

// PathOf returns the resolved path carried by err, or "".
func PathOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Path
	}
	return ""
}
