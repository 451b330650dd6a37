package errs

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// SilentError is an error wrapper type that silences an
// error and only logs it in the debug log.
//
// It is usually used to prevent spamming the default log
// when a peer sends invalid packets which cannot be read.
type SilentError struct{ error }

func (e *SilentError) Error() string { return e.error.Error() }

func (e *SilentError) Unwrap() error { return e.error }

// NewSilentErr returns a new formatted SilentError.
func NewSilentErr(format string, a ...any) error {
	return &SilentError{fmt.Errorf(format, a...)}
}

// WrapSilent wraps wrappedErr into a SilentError.
func WrapSilent(wrappedErr error) error {
	return &SilentError{wrappedErr}
}

// IsSilent indicates whether err should only be logged at debug level.
func IsSilent(err error) bool {
	var silent *SilentError
	return errors.As(err, &silent)
}

// IsConnClosedErr returns true for read/write errors that are expected when
// the underlying connection was closed, locally or by the peer.
//
// see https://github.com/golang/go/issues/4373 for why
// string matching is still needed for some of these.
func IsConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	s := err.Error()
	return s == "use of closed network connection" ||
		s == "read: connection reset by peer"
}
