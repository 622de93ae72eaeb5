// String-typed sentinel errors for every failure the file system can report.
// Callers match on them with errors.Is; WithMessage and Wrap attach context
// without losing the sentinel.

package picofs

import "fmt"

type Error string

const ErrFileNotFound = Error("no such file")
const ErrFileNotOpen = Error("file is not open")
const ErrNotOpenForRead = Error("file is not open for reading")
const ErrNotOpenForWrite = Error("file is not open for writing")
const ErrTooManyOpen = Error("too many open files")
const ErrTooManyFiles = Error("too many files stored")
const ErrAlreadyOpen = Error("file is already open")
const ErrDiskFull = Error("no space left on device")
const ErrFileTooBig = Error("file too large")
const ErrFilenameTooLong = Error("file name too long")
const ErrInvalidGeometry = Error("invalid file system geometry")

func (e Error) Error() string {
	return string(e)
}

// WithMessage returns an error that adds detail to the sentinel. The result
// still matches the sentinel under errors.Is.
func (e Error) WithMessage(message string) error {
	return wrappedError{
		kind:    e,
		message: fmt.Sprintf("%s: %s", e.Error(), message),
	}
}

// Wrap returns an error chaining both the sentinel and the causing error as
// parents.
func (e Error) Wrap(err error) error {
	return wrappedError{
		kind:    e,
		message: fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		cause:   err,
	}
}

// -----------------------------------------------------------------------------

type wrappedError struct {
	kind    Error
	message string
	cause   error
}

func (e wrappedError) Error() string {
	return e.message
}

func (e wrappedError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}
