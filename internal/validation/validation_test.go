package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid", "user@example.com", nil},
		{"valid with subdomain", "user@mail.example.co.uk", nil},
		{"empty", "", ErrEmailRequired},
		{"whitespace only", "   ", ErrEmailRequired},
		{"missing at", "userexample.com", ErrEmailInvalid},
		{"missing domain dot", "user@example", ErrEmailInvalid},
		{"contains space", "us er@example.com", ErrEmailInvalid},
		{"too long", strings.Repeat("a", 250) + "@x.com", ErrEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"valid", "quiz_fan.42", nil},
		{"valid with hyphen", "quiz-fan", nil},
		{"empty", "", ErrUsernameRequired},
		{"too short", "ab", ErrUsernameLength},
		{"too long", strings.Repeat("a", 31), ErrUsernameLength},
		{"invalid characters", "quiz fan!", ErrUsernameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "secret123", nil},
		{"too short", "abc1", ErrPasswordLength},
		{"letters only", "abcdefgh", ErrPasswordWeak},
		{"digits only", "12345678", ErrPasswordWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
