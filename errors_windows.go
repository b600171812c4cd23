//go:build windows

package mregion

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// classifyErrno maps a Windows error to an error code, or 0 if it has no fixed meaning.
func classifyErrno(err error) ErrorCode {
	var errno windows.Errno
	if !errors.As(err, &errno) {
		return 0
	}
	switch errno {
	case windows.ERROR_INVALID_PARAMETER:
		return InvalidArgument
	case windows.ERROR_NOT_ENOUGH_MEMORY, windows.ERROR_COMMITMENT_LIMIT:
		return ResourceExhausted
	case windows.ERROR_INVALID_HANDLE, windows.ERROR_ACCESS_DENIED:
		return BackingUnavailable
	case windows.ERROR_NOT_SUPPORTED:
		return PlatformUnsupported
	}
	return 0
}
