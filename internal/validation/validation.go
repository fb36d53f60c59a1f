// Package validation provides input validation for account forms
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email address")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits, and . - _")
	ErrUsernameLength   = errors.New("username must be between 3 and 30 characters")
	ErrPasswordLength   = errors.New("password must be at least 8 characters")
	ErrPasswordWeak     = errors.New("password must contain both letters and digits")
)

var (
	emailRegexp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ValidateEmail checks that email looks like an email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 || !emailRegexp.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateUsername checks username length and character set
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) < 3 || len(username) > 30 {
		return ErrUsernameLength
	}
	if !usernameRegexp.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordLength
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordWeak
	}
	return nil
}
