package extend

import (
	"errors"
	"fmt"
)

// ErrRequiredField marks a malformed epoch timestamp. Bucketing and
// shifting both depend on it, so it aborts processing.
var ErrRequiredField = errors.New("required field malformed")

// RequiredFieldError reports which input line carried the bad timestamp.
type RequiredFieldError struct {
	LineIndex int // zero-based index into the input lines
	Err       error
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("line %d: %v: %v", e.LineIndex+1, ErrRequiredField, e.Err)
}

func (e *RequiredFieldError) Unwrap() []error { return []error{ErrRequiredField, e.Err} }
