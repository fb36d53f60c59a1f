package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"quizhub/internal/security"
	"quizhub/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	templates            *template.Template
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

func (h *AuthHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// redirectIfLoggedIn sends an already-authenticated user to the dashboard
func (h *AuthHandler) redirectIfLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	user, err := h.authService.ValidateSession(cookie.Value)
	if err != nil || user == nil {
		return false
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	return true
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}

	h.render(w, "login.tmpl", map[string]interface{}{
		"Title":          "Login - QuizHub",
		"OAuthProviders": h.oauthProviderViews(),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	rememberMe := r.FormValue("remember_me") == "on"

	user, session, err := h.authService.Login(username, password, rememberMe)
	if err != nil {
		msg := "Invalid username or password"
		if errors.Is(err, service.ErrAccountDisabled) {
			msg = "This account has been disabled"
		}
		h.render(w, "login.tmpl", map[string]interface{}{
			"Title":          "Login - QuizHub",
			"Error":          msg,
			"Username":       username,
			"OAuthProviders": h.oauthProviderViews(),
		})
		return
	}

	// Remember-me sessions get an expiring cookie; otherwise the cookie
	// lives only for the browser session.
	expires := session.ExpiresAt
	if !rememberMe {
		expires = zeroTime
	}
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, expires))

	log.Printf("User %s logged in", user.Username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfLoggedIn(w, r) {
		return
	}

	h.render(w, "register.tmpl", map[string]interface{}{
		"Title":          "Register - QuizHub",
		"OAuthProviders": h.oauthProviderViews(),
	})
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.authService.Register(username, email, password)
	if err != nil {
		h.render(w, "register.tmpl", map[string]interface{}{
			"Title":          "Register - QuizHub",
			"Error":          err.Error(),
			"Username":       username,
			"Email":          email,
			"OAuthProviders": h.oauthProviderViews(),
		})
		return
	}

	// Log the new user straight in
	_, session, err := h.authService.Login(user.Username, password, false)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, zeroTime))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Error deleting session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowForgotPassword renders the reset request page
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot_password.tmpl", map[string]interface{}{
		"Title": "Forgot Password - QuizHub",
	})
}

// ForgotPassword sends a reset link. The confirmation shown is the same
// whether or not the email matches an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	if err := h.authService.ForgotPassword(r.Context(), email); err != nil {
		if errors.Is(err, service.ErrResetUnavailable) {
			h.render(w, "forgot_password.tmpl", map[string]interface{}{
				"Title": "Forgot Password - QuizHub",
				"Error": "Password reset is not available right now",
			})
			return
		}
		log.Printf("Error handling password reset request: %v", err)
	}

	h.render(w, "forgot_password.tmpl", map[string]interface{}{
		"Title":   "Forgot Password - QuizHub",
		"Message": "If that email is registered, a reset link is on its way",
	})
}

// ShowResetPassword renders the new-password form for a token link
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
		return
	}

	h.render(w, "reset_password.tmpl", map[string]interface{}{
		"Title": "Reset Password - QuizHub",
		"Token": token,
	})
}

// ResetPassword sets a new password from a valid token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	renderError := func(msg string) {
		h.render(w, "reset_password.tmpl", map[string]interface{}{
			"Title": "Reset Password - QuizHub",
			"Token": token,
			"Error": msg,
		})
	}

	if password != confirm {
		renderError("Passwords do not match")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			renderError("This reset link is invalid or has expired")
		case errors.Is(err, service.ErrResetUnavailable):
			renderError("Password reset is not available right now")
		default:
			renderError(err.Error())
		}
		return
	}

	h.render(w, "login.tmpl", map[string]interface{}{
		"Title":          "Login - QuizHub",
		"Message":        "Password updated, you can log in now",
		"OAuthProviders": h.oauthProviderViews(),
	})
}
