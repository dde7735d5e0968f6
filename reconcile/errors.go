package reconcile

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid reconciliation input")

// InvalidInputError reports which run argument was not a collection of records.
type InvalidInputError struct {
	Argument string
	Got      string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s must be a list of records, got %s", ErrInvalidInput, e.Argument, e.Got)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
