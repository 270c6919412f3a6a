package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound also covers records outside the caller's visibility.
	ErrNotFound  = errors.New("application not found")
	ErrForbidden = errors.New("action not permitted for caller")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

type TransitionError struct {
	Action  Action
	Current Status
	Allowed []Status
}

func (e *TransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot %s application in state %s (allowed from: %s)",
		e.Action, e.Current, strings.Join(allowed, ", "))
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
