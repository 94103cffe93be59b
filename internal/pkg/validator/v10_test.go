package validator

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,password"`
	FirstName string `validate:"omitempty,alphaspace"`
}

func TestNewV10Validator(t *testing.T) {
	// Construction registers custom rules and their translations on top of
	// the library defaults; key collisions must not surface as errors.
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	if err := v.Validate(sample{Email: "a@b.com", Password: "long-enough", FirstName: "Ada Lovelace"}); err != nil {
		t.Fatalf("Validate(valid) error = %v", err)
	}
}

func TestV10ValidatorFieldErrors(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	err = v.Validate(sample{Email: "nope", Password: "short", FirstName: "Ada99"})
	if err == nil {
		t.Fatal("Validate() = nil, want field errors")
	}

	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want FieldErrors", err)
	}

	if msg := fe["password"]; !strings.Contains(msg, "8-72 characters") {
		t.Fatalf("password message = %q, want the custom translation", msg)
	}
	if msg := fe["first_name"]; !strings.Contains(msg, "letters and spaces") {
		t.Fatalf("first_name message = %q, want the custom translation", msg)
	}
	if _, ok := fe["email"]; !ok {
		t.Fatal("email error is missing")
	}
}

func TestV10ValidatorPasswordBounds(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"minimum length", strings.Repeat("x", 8), true},
		{"bcrypt ceiling", strings.Repeat("x", 72), true},
		{"too short", strings.Repeat("x", 7), false},
		{"too long", strings.Repeat("x", 73), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(sample{Email: "a@b.com", Password: tt.password})
			if (err == nil) != tt.valid {
				t.Fatalf("Validate(len=%d) error = %v, want valid=%v", len(tt.password), err, tt.valid)
			}
		})
	}
}
