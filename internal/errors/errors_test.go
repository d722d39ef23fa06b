package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "results[0].properties[\"Name\"].type",
		Message: "property has no type discriminant",
	}

	expected := `validation error for results[0].properties["Name"].type: property has no type discriminant`
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true for ValidationError")
	}
}

func TestTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{
			name:    "generic error",
			err:     errors.New("generic error"),
			checker: IsValidationError,
			want:    false,
		},
		{
			name:    "wrapped validation error",
			err:     fmt.Errorf("normalize: %w", &ValidationError{Field: "f", Message: "m"}),
			checker: IsValidationError,
			want:    true,
		},
		{
			name:    "user error",
			err:     NewUserError("bad flag", ""),
			checker: IsUserError,
			want:    true,
		},
		{
			name:    "input error",
			err:     WrapInput("stdin", -1, errors.New("boom")),
			checker: IsInputError,
			want:    true,
		},
		{
			name:    "input error is not user error",
			err:     WrapInput("stdin", -1, errors.New("boom")),
			checker: IsUserError,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.checker(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserError(t *testing.T) {
	base := errors.New("unexpected end of JSON input")
	err := WrapUserError(base, "failed to decode pages", "Pass the raw query response")

	if !strings.Contains(err.Error(), "failed to decode pages") {
		t.Errorf("message missing from %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected UserError to unwrap to the base error")
	}
	if got := UserSuggestion(err); got != "Pass the raw query response" {
		t.Errorf("UserSuggestion = %q", got)
	}
	if got := UserSuggestion(errors.New("plain")); got != "" {
		t.Errorf("UserSuggestion for plain error = %q, want empty", got)
	}

	plain := NewUserError("no input", "")
	if plain.Error() != "no input" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "no input")
	}
}

func TestInputError(t *testing.T) {
	base := errors.New("invalid character '}'")

	withItem := WrapInput("pages.ndjson", 3, base)
	if withItem.Error() != "pages.ndjson (item 3): invalid character '}'" {
		t.Errorf("unexpected message %q", withItem.Error())
	}
	if !errors.Is(withItem, base) {
		t.Error("expected InputError to unwrap to the base error")
	}

	whole := WrapInput("stdin", -1, base)
	if whole.Error() != "stdin: invalid character '}'" {
		t.Errorf("unexpected message %q", whole.Error())
	}

	if WrapInput("stdin", 0, nil) != nil {
		t.Error("WrapInput(nil) should return nil")
	}
}

func TestInputError_DefaultSource(t *testing.T) {
	err := WrapInput("", 0, errors.New("bad"))
	if err.Error() != "input (item 0): bad" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
