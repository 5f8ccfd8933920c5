package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for input that cannot be turned into a collection.
var (
	// ErrMalformedInput is returned when a record or file cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownFormat is returned when no reader handles a file.
	ErrUnknownFormat = errors.New("unknown input format")

	// ErrDuplicateID is returned when an id occurs twice in one collection.
	ErrDuplicateID = errors.New("duplicate id")
)

// InputError locates a malformed value.
type InputError struct {
	Source string
	Row    int // 1-based data row, 0 when not row specific
	Field  string
	Msg    string
}

func (e *InputError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("%s: row %d: field '%s': %s", e.Source, e.Row, e.Field, e.Msg)
	case e.Row > 0:
		return fmt.Sprintf("%s: row %d: %s", e.Source, e.Row, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.Source, e.Field, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Source, e.Msg)
	}
}

func (e *InputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// NewInputError creates a new InputError
func NewInputError(source string, row int, field, format string, args ...interface{}) *InputError {
	return &InputError{Source: source, Row: row, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// DuplicateIDError names the repeated id.
type DuplicateIDError struct {
	Source string
	ID     string
	Row    int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: row %d: id '%s' already seen", e.Source, e.Row, e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// UnknownFormatError names the file no reader accepted.
type UnknownFormatError struct {
	Path string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("no reader for '%s'", e.Path)
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}
