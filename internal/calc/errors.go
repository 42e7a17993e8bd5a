package calc

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing selection or an unmet numeric
// precondition. The caller is expected to fix its input and retry.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
