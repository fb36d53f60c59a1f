package handlers

import "time"

// zeroTime makes a session cookie last only for the browser session
var zeroTime time.Time

const (
	SessionCookieName = "session_id"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrNotFound            = "Not found"
	ErrInternalServerError = "Internal server error"
)
