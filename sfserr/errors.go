// Package sfserr defines the sentinel error values SimpleFS returns from the
// disk and simplefs packages, plus the small wrapping helpers
// used to attach context to them without losing the sentinel for
// errors.Is/errors.As.
package sfserr

import "fmt"

// FSError is a sentinel error type. Packages compare against these directly
// with errors.Is; callers that need more context get it from WithMessage or
// Wrap instead of parsing the string.
type FSError string

func (e FSError) Error() string {
	return string(e)
}

// WithMessage returns a new error whose text is "<e>: <message>" that still
// satisfies errors.Is(err, e).
func (e FSError) WithMessage(message string) error {
	return &causeError{message: fmt.Sprintf("%s: %s", string(e), message), cause: e}
}

// Wrap returns a new error whose text is "<e>: <err>" that satisfies both
// errors.Is(result, e) and errors.Is(result, err).
func (e FSError) Wrap(err error) error {
	return &causeError{message: fmt.Sprintf("%s: %s", string(e), err.Error()), cause: err, sentinel: e}
}

// causeError carries a formatted message plus the error(s) it should unwrap
// to, so both the wrapped cause and the original sentinel keep matching
// errors.Is after the message gains context.
type causeError struct {
	message  string
	cause    error
	sentinel FSError
}

func (e *causeError) Error() string {
	return e.message
}

func (e *causeError) Unwrap() error {
	if e.sentinel != "" && e.cause != nil && e.sentinel.Error() != e.cause.Error() {
		return e.cause
	}
	if e.cause != nil {
		return e.cause
	}
	return e.sentinel
}

// Is lets a causeError match its sentinel even when Unwrap only returns the
// wrapped cause (the Wrap case, where both need to match).
func (e *causeError) Is(target error) bool {
	if e.sentinel == "" {
		return false
	}
	se, ok := target.(FSError)
	return ok && se == e.sentinel
}

// Error kinds for the block device.
const (
	ErrNilDisk         = FSError("disk handle is nil")
	ErrNilBuffer       = FSError("buffer is nil")
	ErrWrongBufferSize = FSError("buffer is not exactly one block")
	ErrBlockOutOfRange = FSError("block index out of range")
	ErrIO              = FSError("disk I/O failed")
)

// Error kinds for mount/format and the core file system operations.
const (
	ErrAlreadyMounted = FSError("file system already mounted on this disk")
	ErrNotMounted     = FSError("file system is not mounted")
	ErrBadMagic       = FSError("superblock has wrong magic number")
	ErrBadLayout      = FSError("superblock layout does not match disk size")
	ErrInvalidInode   = FSError("invalid inode number or inode slot")
	ErrInodeTableFull = FSError("no free inode slots")
	ErrNoFreeBlock    = FSError("no free data blocks")
	ErrMissingBlock   = FSError("required data block pointer is zero")
)
