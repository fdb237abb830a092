package reader

import (
	"errors"
	"io/fs"
)

// ErrorInfo is the structured per-file failure record handed to consumers.
// Every field is always present; 0 and "" are the documented defaults for
// anything the underlying failure did not supply, so consumers can render an
// error without null-checking three separate fields.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ReadError is a read failure reported by a FileReader. Any subset of the
// fields may be set; zero values mean the underlying platform did not report
// that field.
type ReadError struct {
	Code    int
	Name    string
	Message string
}

func (e *ReadError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Name != "":
		return e.Name
	default:
		return "read failed"
	}
}

// MapError converts a read failure into an ErrorInfo. A ReadError anywhere in
// the chain contributes its fields verbatim (unset fields stay at their
// defaults). Other errors keep their message and get a name for the failure
// classes the fs layer can distinguish.
func MapError(err error) ErrorInfo {
	var re *ReadError
	if errors.As(err, &re) {
		return ErrorInfo{Code: re.Code, Name: re.Name, Message: re.Message}
	}

	info := ErrorInfo{Message: err.Error()}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		info.Name = "NotFoundError"
	case errors.Is(err, fs.ErrPermission):
		info.Name = "NotReadableError"
	}
	return info
}
