//go:build unix

package mregion

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// classifyErrno maps an errno to an error code, or 0 if it has no fixed meaning.
func classifyErrno(err error) ErrorCode {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return 0
	}
	switch errno {
	case unix.EINVAL:
		return InvalidArgument
	case unix.ENOMEM, unix.EAGAIN, unix.ENFILE, unix.EMFILE, unix.EOVERFLOW:
		return ResourceExhausted
	case unix.EBADF, unix.EACCES, unix.ENODEV, unix.ENXIO:
		return BackingUnavailable
	case unix.EPERM, unix.ENOTSUP:
		return PlatformUnsupported
	}
	return 0
}
