package trajectory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRecordNotFound means no record is stored for the requested trial.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord means a record file has no usable rows.
	ErrInvalidRecord = errors.New("no valid data found in record")
	// ErrEmptyRecord means there is nothing to save.
	ErrEmptyRecord = errors.New("no trajectory data to save")
	// ErrStorageWrite means the record could not be written.
	ErrStorageWrite = errors.New("failed to write record")
)

// MalformedRowError describes a data row that could not be decoded.
type MalformedRowError struct {
	Line   int
	Fields []string
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("invalid data in row %d: [%s]: %v", e.Line, strings.Join(e.Fields, ","), e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// HeaderMismatchError is reported when a record header is not the expected
// one. Err is set when the header line could not be parsed at all.
type HeaderMismatchError struct {
	Got []string
	Err error
}

func (e *HeaderMismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unreadable header: %v", e.Err)
	}
	return fmt.Sprintf("unexpected header format: [%s]", strings.Join(e.Got, ","))
}

func (e *HeaderMismatchError) Unwrap() error {
	return e.Err
}
