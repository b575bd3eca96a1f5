// Package isoerr defines the error kinds returned while mounting and reading an image.
//
// Every error produced by the iso9660 packages matches exactly one of the sentinels below
// through errors.Is, regardless of how many times it has been wrapped with additional context.
package isoerr

import (
	"errors"
	"fmt"
)

var (
	ErrIO                = errors.New("i/o error")
	ErrTextDecode        = errors.New("text decode error")
	ErrInvalidFilesystem = errors.New("invalid filesystem")
	ErrIntegerParse      = errors.New("integer parse error")
	ErrShortRead         = errors.New("short read")
	ErrInvalidSeek       = errors.New("invalid seek")
)

// InvalidFilesystemError reports a structural violation of the on-disk format.
type InvalidFilesystemError struct {
	Reason string
}

func (e *InvalidFilesystemError) Error() string {
	return "invalid filesystem: " + e.Reason
}

func (e *InvalidFilesystemError) Is(target error) bool {
	return target == ErrInvalidFilesystem
}

// InvalidFilesystem builds an InvalidFilesystemError with a formatted reason.
func InvalidFilesystem(format string, args ...interface{}) error {
	return &InvalidFilesystemError{Reason: fmt.Sprintf(format, args...)}
}

// TextDecodeError reports an identifier or string field that could not be decoded.
type TextDecodeError struct {
	Field string
	Err   error
}

func (e *TextDecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Field, e.Err)
}

func (e *TextDecodeError) Is(target error) bool {
	return target == ErrTextDecode
}

func (e *TextDecodeError) Unwrap() error {
	return e.Err
}

func TextDecode(field string, err error) error {
	return &TextDecodeError{Field: field, Err: err}
}

// IntegerParseError reports a malformed ASCII numeric field.
type IntegerParseError struct {
	Field string
	Value string
	Err   error
}

func (e *IntegerParseError) Error() string {
	return fmt.Sprintf("failed to parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *IntegerParseError) Is(target error) bool {
	return target == ErrIntegerParse
}

func (e *IntegerParseError) Unwrap() error {
	return e.Err
}

func IntegerParse(field, value string, err error) error {
	return &IntegerParseError{Field: field, Value: value, Err: err}
}

// ShortReadError reports a block read that returned less than a full block.
type ShortReadError struct {
	Expected int
	Actual   int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

func ShortRead(expected, actual int) error {
	return &ShortReadError{Expected: expected, Actual: actual}
}

// IOError wraps a failure of the underlying byte source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func IO(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
