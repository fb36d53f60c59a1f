package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"quizhub/internal/service"
)

// ProfileHandler serves the profile settings page
type ProfileHandler struct {
	profileService *service.ProfileService
	contentService *service.ContentService
	middleware     *Middleware
	templates      *template.Template
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, contentService *service.ContentService, middleware *Middleware, templates *template.Template) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		contentService: contentService,
		middleware:     middleware,
		templates:      templates,
	}
}

func (h *ProfileHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

func (h *ProfileHandler) showProfile(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	user := GetUserFromContext(r.Context())

	profile, err := h.profileService.Get(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading profile", err)
		return
	}

	categories, err := h.contentService.ListCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing categories", err)
		return
	}

	h.render(w, "profile.tmpl", map[string]interface{}{
		"Title":      "Profile - QuizHub",
		"User":       user,
		"IsAdmin":    IsAdminFromContext(r.Context()),
		"Profile":    profile,
		"Categories": categories,
		"Error":      errMsg,
		"Message":    successMsg,
		"CSRFToken":  h.middleware.CSRFToken(r),
	})
}

// ShowProfile renders the profile settings page
func (h *ProfileHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	h.showProfile(w, r, "", "")
}

// UpdateProfile saves the profile settings form
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	upd := service.PreferenceUpdate{
		Avatar:              r.FormValue("avatar"),
		Bio:                 r.FormValue("bio"),
		PreferredDifficulty: r.FormValue("preferred_difficulty"),
		Theme:               r.FormValue("theme"),
		EmailNotifications:  r.FormValue("email_notifications") == "on",
	}

	if count, err := strconv.Atoi(r.FormValue("questions_per_quiz")); err == nil {
		upd.QuestionsPerQuiz = count
	}
	if raw := r.FormValue("preferred_category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			upd.PreferredCategoryID = &id
		}
	}

	if _, err := h.profileService.UpdatePreferences(user.ID, upd); err != nil {
		if errors.Is(err, service.ErrInvalidPreference) {
			h.showProfile(w, r, err.Error(), "")
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error updating profile", err)
		return
	}

	h.showProfile(w, r, "", "Profile updated")
}
