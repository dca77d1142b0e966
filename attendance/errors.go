package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrEmptyRoster     = errors.New("table has no student rows")
)

// LoadError reports a spreadsheet that could not be turned into a roster
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load class from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LookupError reports a class or student the session does not know
type LookupError struct {
	Class   string
	Student string // Empty when the class itself is missing
	Err     error
}

func (e *LookupError) Error() string {
	if e.Student == "" {
		return fmt.Sprintf("class %q: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("class %q, student %q: %v", e.Class, e.Student, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// WriteError reports a spreadsheet that could not be written back
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to save attendance to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
