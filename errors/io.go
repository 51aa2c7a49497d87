package errors

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// IOKind classifies an I/O failure independently of the platform error value.
type IOKind string

const (
	IOKindNotFound         IOKind = "not_found"
	IOKindPermissionDenied IOKind = "permission_denied"
	IOKindAlreadyExists    IOKind = "already_exists"
	IOKindUnexpectedEOF    IOKind = "unexpected_eof"
	IOKindTimedOut         IOKind = "timed_out"
	IOKindBrokenPipe       IOKind = "broken_pipe"
	IOKindInterrupted      IOKind = "interrupted"
	IOKindOther            IOKind = "other"
)

// FromIO converts an I/O error into an IO AppError, keeping its kind.
// The original error is retained as the cause.
func FromIO(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	kind, _ := classifyIO(err)
	return IO(kind, err.Error()).WithCause(err)
}

// classifyIO maps well-known I/O errors to a kind. The boolean is false
// when nothing matched and the kind defaulted to IOKindOther.
func classifyIO(err error) (IOKind, bool) {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return IOKindNotFound, true
	case stderrors.Is(err, fs.ErrPermission):
		return IOKindPermissionDenied, true
	case stderrors.Is(err, fs.ErrExist):
		return IOKindAlreadyExists, true
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return IOKindUnexpectedEOF, true
	case stderrors.Is(err, os.ErrDeadlineExceeded):
		return IOKindTimedOut, true
	case stderrors.Is(err, syscall.EPIPE), stderrors.Is(err, io.ErrClosedPipe):
		return IOKindBrokenPipe, true
	case stderrors.Is(err, syscall.EINTR):
		return IOKindInterrupted, true
	}
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return IOKindOther, true
	}
	return IOKindOther, false
}
