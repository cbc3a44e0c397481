package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72
	MaxBioLength     = 250
)

var (
	emailRegex = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
)

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Please add an email"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Please add a valid email"}
	}
	return nil
}

// NormalizeEmail trims surrounding whitespace. Case is preserved, so lookups
// must go through the same function.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ValidatePassword enforces the password length bounds. The upper bound is
// in bytes since bcrypt refuses longer input.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "Please add a Password"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be atleast 6 characters"}
	}
	if len(password) > MaxPasswordBytes {
		return &ValidationError{Field: "password", Message: "Password must not exceed 72 bytes"}
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return &ValidationError{Field: "bio", Message: "Bio should not exceed 250 characters"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
