package mregion

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error represents a mregion error with an error code.
type Error struct {
	Code ErrorCode
	Op   string // Operation that failed, e.g. "map" or "flush"
	Err  error  // Detail or wrapped OS error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("mregion: %s: %v", msg, e.Err)
	}
	return "mregion: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so
// errors.Is(err, ErrNotActive) works regardless of Op and Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrorCode classifies failures.
type ErrorCode int

const (
	// InvalidArgument indicates the caller violated a documented precondition.
	// Not retryable; the call must be fixed.
	InvalidArgument ErrorCode = iota + 1

	// ResourceExhausted indicates an address space or mapping table limit was hit.
	// May succeed after other mappings are released.
	ResourceExhausted

	// BackingUnavailable indicates the backing descriptor is invalid, closed or unreadable.
	BackingUnavailable

	// AlreadyUnmapped indicates Unmap was called twice on the same region.
	AlreadyUnmapped

	// NotActive indicates an operation on a region that has been unmapped.
	NotActive

	// PlatformUnsupported indicates the requested flag combination has no
	// native equivalent on this platform.
	PlatformUnsupported

	// Fault indicates a hardware access fault inside the region, caught by
	// ReadAt, WriteAt or Reader.
	Fault
)

var errorMessages = map[ErrorCode]string{
	InvalidArgument:     "invalid argument",
	ResourceExhausted:   "resource exhausted",
	BackingUnavailable:  "backing unavailable",
	AlreadyUnmapped:     "region already unmapped",
	NotActive:           "region not active",
	PlatformUnsupported: "unsupported on " + platform.Name(),
	Fault:               "access fault",
}

func (c ErrorCode) String() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code %d", int(c))
}

// NewError creates a new Error with the given code.
func NewError(code ErrorCode, op string) *Error {
	return &Error{Code: code, Op: op}
}

// WrapError creates a new Error wrapping another error.
func WrapError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func invalidf(op, format string, args ...any) *Error {
	return WrapError(InvalidArgument, op, errors.Errorf(format, args...))
}

// wrapOS classifies an error returned by an OS primitive. Errors the
// platform does not recognize get the fallback code.
func wrapOS(op string, err error, fallback ErrorCode) *Error {
	code := classifyErrno(err)
	if code == 0 {
		code = fallback
	}
	return WrapError(code, op, err)
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument     = NewError(InvalidArgument, "")
	ErrResourceExhausted   = NewError(ResourceExhausted, "")
	ErrBackingUnavailable  = NewError(BackingUnavailable, "")
	ErrAlreadyUnmapped     = NewError(AlreadyUnmapped, "")
	ErrNotActive           = NewError(NotActive, "")
	ErrPlatformUnsupported = NewError(PlatformUnsupported, "")
	ErrFault               = NewError(Fault, "")
)

// Code returns the error code of err, or 0 if err is nil or not a mregion error.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsInvalidArgument returns true if err has code InvalidArgument.
func IsInvalidArgument(err error) bool {
	return Code(err) == InvalidArgument
}

// IsNotActive returns true if err has code NotActive.
func IsNotActive(err error) bool {
	return Code(err) == NotActive
}

// IsAlreadyUnmapped returns true if err has code AlreadyUnmapped.
func IsAlreadyUnmapped(err error) bool {
	return Code(err) == AlreadyUnmapped
}

// IsFault returns true if err has code Fault.
func IsFault(err error) bool {
	return Code(err) == Fault
}
