package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"quizhub/internal/models"
	"quizhub/internal/service"
)

// QuizHandler serves the public pages and the quiz browsing flow
type QuizHandler struct {
	contentService *service.ContentService
	profileService *service.ProfileService
	middleware     *Middleware
	templates      *template.Template
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(contentService *service.ContentService, profileService *service.ProfileService, middleware *Middleware, templates *template.Template) *QuizHandler {
	return &QuizHandler{
		contentService: contentService,
		profileService: profileService,
		middleware:     middleware,
		templates:      templates,
	}
}

func (h *QuizHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Home renders the landing page with the category catalog
func (h *QuizHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	categories, err := h.contentService.ListCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing categories", err)
		return
	}

	h.render(w, "home.tmpl", map[string]interface{}{
		"Title":      "QuizHub",
		"Categories": categories,
	})
}

// Dashboard renders the user's stats, recent attempts, and the leaderboard
func (h *QuizHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	dashboard, err := h.profileService.Dashboard(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building dashboard", err)
		return
	}

	h.render(w, "dashboard.tmpl", map[string]interface{}{
		"Title":     "Dashboard - QuizHub",
		"User":      user,
		"IsAdmin":   IsAdminFromContext(r.Context()),
		"Dashboard": dashboard,
	})
}

// Browse renders all categories with their subcategories
func (h *QuizHandler) Browse(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	categories, err := h.contentService.BrowseCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error browsing categories", err)
		return
	}

	h.render(w, "browse.tmpl", map[string]interface{}{
		"Title":      "Browse Quizzes - QuizHub",
		"User":       user,
		"IsAdmin":    IsAdminFromContext(r.Context()),
		"Categories": categories,
	})
}

// CategoryDetail renders one category and its subcategories
func (h *QuizHandler) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID", "", nil)
		return
	}

	detail, err := h.contentService.GetCategoryDetail(id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading category", err)
		return
	}

	h.render(w, "category.tmpl", map[string]interface{}{
		"Title":    detail.Category.Name + " - QuizHub",
		"User":     user,
		"IsAdmin":  IsAdminFromContext(r.Context()),
		"Category": detail,
	})
}

// ShowStartForm renders the quiz options form for a subcategory, with the
// user's preferred difficulty and question count preselected.
func (h *QuizHandler) ShowStartForm(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subcategory ID", "", nil)
		return
	}

	subcategory, err := h.contentService.GetSubcategory(id)
	if err != nil {
		if errors.Is(err, service.ErrSubcategoryNotFound) {
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading subcategory", err)
		return
	}

	profile, err := h.profileService.Get(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading profile", err)
		return
	}

	h.render(w, "start_quiz.tmpl", map[string]interface{}{
		"Title":        "Start Quiz - QuizHub",
		"User":         user,
		"IsAdmin":      IsAdminFromContext(r.Context()),
		"Subcategory":  subcategory,
		"Difficulties": []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard},
		"Preferred":    profile.PreferredDifficulty,
		"Count":        profile.QuestionsPerQuiz,
		"CSRFToken":    h.middleware.CSRFToken(r),
	})
}
