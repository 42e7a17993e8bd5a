package session

import (
	"errors"
	"fmt"
)

// ValidationError refuses a transition or edit; nothing was mutated.
type ValidationError struct {
	Stage Stage
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(stage Stage, format string, args ...any) error {
	return &ValidationError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}
