package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quizhub/internal/database"
	"quizhub/internal/repository"
	"quizhub/internal/tokenstore"
	"quizhub/internal/validation"
)

func newAuthEnv(t *testing.T) *AuthService {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	tokens := tokenstore.New("", "", "test-secret", time.Hour)
	return NewAuthService(userRepo, profileRepo, tokens, &EmailService{}, 24*time.Hour, 30*24*time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuthEnv(t)

	user, err := auth.Register("alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q", user.Username)
	}
	// First account on a fresh install is the superuser
	if !user.IsSuperuser {
		t.Error("first registered user should be superuser")
	}

	second, err := auth.Register("bob", "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.IsSuperuser {
		t.Error("second user should not be superuser")
	}

	// Login by username
	got, session, err := auth.Login("alice", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != user.ID || session.ID == "" {
		t.Error("login returned wrong user or empty session")
	}

	// Login by email
	if _, _, err := auth.Login("alice@example.com", "secret123", false); err != nil {
		t.Fatalf("Login by email failed: %v", err)
	}

	// Wrong password
	if _, _, err := auth.Login("alice", "wrong-password", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	// Unknown account
	if _, _, err := auth.Login("nobody", "secret123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := newAuthEnv(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"short username", "ab", "a@b.com", "secret123", validation.ErrUsernameLength},
		{"bad email", "alice", "not-an-email", "secret123", validation.ErrEmailInvalid},
		{"short password", "alice", "a@b.com", "abc1", validation.ErrPasswordLength},
		{"weak password", "alice", "a@b.com", "abcdefgh", validation.ErrPasswordWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Register(tt.username, tt.email, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	auth := newAuthEnv(t)

	if _, err := auth.Register("alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := auth.Register("alice", "other@example.com", "secret123"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username err = %v, want ErrUserExists", err)
	}
	if _, err := auth.Register("alice2", "alice@example.com", "secret123"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate email err = %v, want ErrUserExists", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	auth := newAuthEnv(t)

	if _, err := auth.Register("alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, session, err := auth.Login("alice", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	user, err := auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatal("session did not resolve to the user")
	}

	if err := auth.Logout(session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	user, err = auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if user != nil {
		t.Error("session valid after logout")
	}

	// Garbage session IDs resolve to nobody
	user, err = auth.ValidateSession("not-a-session")
	if err != nil || user != nil {
		t.Errorf("unknown session: user=%v err=%v", user, err)
	}
}

func TestOAuthLoginCreatesAndLinks(t *testing.T) {
	auth := newAuthEnv(t)

	// First OAuth sign-in creates an account
	user, session, err := auth.OAuthLogin("google", "sub-123", "carol@example.com", "Carol Smith")
	if err != nil {
		t.Fatalf("OAuthLogin failed: %v", err)
	}
	if session.ID == "" {
		t.Error("no session opened")
	}
	if user.Email != "carol@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	// Repeat sign-in resolves to the same account
	again, _, err := auth.OAuthLogin("google", "sub-123", "carol@example.com", "Carol Smith")
	if err != nil {
		t.Fatalf("repeat OAuthLogin failed: %v", err)
	}
	if again.ID != user.ID {
		t.Error("repeat sign-in created a new account")
	}

	// A password account with a matching email gets linked, not duplicated
	local, err := auth.Register("dave", "dave@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	linked, _, err := auth.OAuthLogin("google", "sub-456", "dave@example.com", "Dave")
	if err != nil {
		t.Fatalf("OAuthLogin failed: %v", err)
	}
	if linked.ID != local.ID {
		t.Error("matching email was not linked to the existing account")
	}
}

func TestPasswordResetUnavailableWithoutRedis(t *testing.T) {
	auth := newAuthEnv(t)

	if _, err := auth.Register("alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := auth.ForgotPassword(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrResetUnavailable) {
		t.Fatalf("err = %v, want ErrResetUnavailable", err)
	}
}
