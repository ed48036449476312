package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ImportError reports why a wire schema could not be decoded. Index is the
// position of the offending entry, or -1 when the failure concerns the
// document as a whole; Key names the offending attribute when known.
type ImportError struct {
	Index int
	Key   string
	Msg   string
	Err   error
}

func (e *ImportError) Error() string {
	var b strings.Builder
	b.WriteString("codec: import")
	if e.Index >= 0 {
		fmt.Fprintf(&b, ": field %d", e.Index)
		if e.Key != "" {
			fmt.Fprintf(&b, " attribute %q", e.Key)
		}
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsImportError reports whether err is or wraps an *ImportError.
func IsImportError(err error) bool {
	var target *ImportError
	return errors.As(err, &target)
}

func documentError(msg string, err error) *ImportError {
	return &ImportError{Index: -1, Msg: msg, Err: err}
}

func fieldError(index int, key, msg string, err error) *ImportError {
	return &ImportError{Index: index, Key: key, Msg: msg, Err: err}
}
