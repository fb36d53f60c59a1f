package models

import "time"

// User represents an account in the system
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	OAuthProvider string
	OAuthSubject  string
	IsSuperuser   bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns the user's full name, falling back to the username
func (u *User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return u.Username
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
