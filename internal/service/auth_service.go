package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quizhub/internal/models"
	"quizhub/internal/repository"
	"quizhub/internal/security"
	"quizhub/internal/tokenstore"
	"quizhub/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already taken")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrResetUnavailable   = errors.New("password reset is not available")
	ErrInvalidResetToken  = errors.New("reset link is invalid or has expired")
)

// AuthService handles registration, login, sessions, and password reset
type AuthService struct {
	userRepo         *repository.UserRepository
	profileRepo      *repository.ProfileRepository
	tokens           *tokenstore.Store
	email            *EmailService
	sessionDuration  time.Duration
	rememberDuration time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	tokens *tokenstore.Store,
	email *EmailService,
	sessionDuration, rememberDuration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		tokens:           tokens,
		email:            email,
		sessionDuration:  sessionDuration,
		rememberDuration: rememberDuration,
	}
}

// Register creates a new account with a profile. The very first account
// created becomes a superuser so a fresh install always has an admin.
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetUserByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.userRepo.GetUserByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(username, email, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.profileRepo.Create(user.ID); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return user, nil
}

// Login authenticates by username or email and opens a session.
// With rememberMe the session lasts the long remember duration.
func (s *AuthService) Login(usernameOrEmail, password string, rememberMe bool) (*models.User, *models.Session, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)

	user, err := s.userRepo.GetUserByUsername(usernameOrEmail)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetUserByEmail(strings.ToLower(usernameOrEmail))
		if err != nil {
			return nil, nil, err
		}
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	session, err := s.openSession(user.ID, rememberMe)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// OAuthLogin signs a user in from a verified external identity, creating
// the account on first sign-in. An existing account with the same email
// is linked to the provider instead of duplicated.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.User, *models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, err
	}

	if user == nil && email != "" {
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, err
		}
		if user != nil {
			user.OAuthProvider = provider
			user.OAuthSubject = subject
			if err := s.userRepo.UpdateUser(user); err != nil {
				return nil, nil, fmt.Errorf("failed to link account: %w", err)
			}
		}
	}

	if user == nil {
		username, err := s.uniqueUsername(email, name)
		if err != nil {
			return nil, nil, err
		}
		user, err = s.userRepo.CreateOAuthUser(username, email, provider, subject)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		if _, err := s.profileRepo.Create(user.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	session, err := s.openSession(user.ID, true)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// uniqueUsername derives a username from the email or display name,
// suffixing a counter until it is free.
func (s *AuthService) uniqueUsername(email, name string) (string, error) {
	base := ""
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	} else if name != "" {
		base = strings.ToLower(strings.ReplaceAll(name, " ", "."))
	}
	base = sanitizeUsername(base)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		existing, err := s.userRepo.GetUserByUsername(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}

func (s *AuthService) openSession(userID int64, remember bool) (*models.Session, error) {
	duration := s.sessionDuration
	if remember {
		duration = s.rememberDuration
	}
	sessionID := security.GenerateSessionID()
	session, err := s.userRepo.CreateSession(sessionID, userID, time.Now().Add(duration))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession resolves a session cookie value to its user. Expired
// sessions are deleted on sight.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, nil
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Logout deletes the session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() error {
	return s.userRepo.DeleteExpiredSessions()
}

// ForgotPassword issues a reset token and emails it to the account's
// address. An unknown email is not an error: the caller always shows the
// same confirmation, so the endpoint does not reveal which emails exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	if !s.tokens.Enabled() {
		return ErrResetUnavailable
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		log.Printf("Password reset requested for unknown email")
		return nil
	}

	token, err := s.tokens.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	return s.email.SendPasswordReset(ctx, email, token)
}

// ResetPassword consumes a reset token and sets the new password.
// The token is single use: a second attempt with the same token fails.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}
	if !s.tokens.Enabled() {
		return ErrResetUnavailable
	}

	email, err := s.tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrInvalidToken) {
			return ErrInvalidResetToken
		}
		return err
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(user.ID, hash)
}
