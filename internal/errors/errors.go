package errors

import (
	"errors"
	"fmt"
)

// ValidationError represents an input validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UserError represents an error caused by user input or configuration.
// Suggestion can provide a concrete fix for the user.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a UserError with a message and optional suggestion.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// WrapUserError wraps an underlying error with a user-facing message and suggestion.
func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// InputError wraps a decoding failure with where the input came from.
// Item is the zero-based position of the offending item, or -1 when the
// failure is not tied to a single item.
type InputError struct {
	Source string
	Item   int
	Err    error
}

// WrapInput wraps an error with its input source.
// Returns nil if err is nil.
func WrapInput(source string, item int, err error) error {
	if err == nil {
		return nil
	}
	return &InputError{Source: source, Item: item, Err: err}
}

func (e *InputError) Error() string {
	source := e.Source
	if source == "" {
		source = "input"
	}
	if e.Item >= 0 {
		return fmt.Sprintf("%s (item %d): %s", source, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %s", source, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Type checkers
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

func IsInputError(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// UserSuggestion returns a suggestion string if err is a UserError.
func UserSuggestion(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Suggestion
	}
	return ""
}
