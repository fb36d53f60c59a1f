package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"quizhub/internal/service"
)

// AdminHandler serves the admin panel: site stats, user management, and
// catalog maintenance.
type AdminHandler struct {
	adminService   *service.AdminService
	contentService *service.ContentService
	middleware     *Middleware
	templates      *template.Template
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, contentService *service.ContentService, middleware *Middleware, templates *template.Template) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		contentService: contentService,
		middleware:     middleware,
		templates:      templates,
	}
}

func (h *AdminHandler) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// Dashboard renders the admin landing page with site-wide counts
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.adminService.Counts()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading admin counts", err)
		return
	}

	h.render(w, "admin_dashboard.tmpl", map[string]interface{}{
		"Title":   "Admin - QuizHub",
		"User":    GetUserFromContext(r.Context()),
		"IsAdmin": true,
		"Counts":  counts,
	})
}

// ListUsers renders the user management page
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing users", err)
		return
	}

	h.render(w, "admin_users.tmpl", map[string]interface{}{
		"Title":     "Manage Users - QuizHub",
		"User":      GetUserFromContext(r.Context()),
		"IsAdmin":   true,
		"Users":     users,
		"CSRFToken": h.middleware.CSRFToken(r),
	})
}

// ShowEditUser renders the edit form for one account
func (h *AdminHandler) ShowEditUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID", "", nil)
		return
	}

	target, err := h.adminService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading user", err)
		return
	}

	h.render(w, "admin_edit_user.tmpl", map[string]interface{}{
		"Title":     "Edit User - QuizHub",
		"User":      GetUserFromContext(r.Context()),
		"IsAdmin":   true,
		"Target":    target,
		"CSRFToken": h.middleware.CSRFToken(r),
	})
}

// UpdateUser saves the account edit form
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	edit := service.UserEdit{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		IsActive:  r.FormValue("is_active") == "on",
	}

	if err := h.adminService.UpdateUser(id, edit); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error updating user", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/users", http.StatusSeeOther)
}

// ToggleQuizAdmin grants or revokes quiz admin for another user
func (h *AdminHandler) ToggleQuizAdmin(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	grant := r.FormValue("is_quiz_admin") == "on"

	if err := h.adminService.SetQuizAdmin(actor.ID, id, grant); err != nil {
		switch {
		case errors.Is(err, service.ErrCannotEditSelf):
			respondWithError(w, http.StatusBadRequest, "You cannot change your own admin status", "", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error toggling quiz admin", err)
		}
		return
	}

	http.Redirect(w, r, "/admin-panel/users", http.StatusSeeOther)
}

// ListCategories renders the category management page
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.contentService.BrowseCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing categories", err)
		return
	}

	h.render(w, "admin_categories.tmpl", map[string]interface{}{
		"Title":      "Manage Categories - QuizHub",
		"User":       GetUserFromContext(r.Context()),
		"IsAdmin":    true,
		"Categories": categories,
		"CSRFToken":  h.middleware.CSRFToken(r),
	})
}

// CreateCategory handles the new-category form
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	_, err := h.contentService.CreateCategory(
		r.FormValue("name"),
		r.FormValue("description"),
		r.FormValue("icon"),
	)
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) {
			respondWithError(w, http.StatusBadRequest, "Name is required", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error creating category", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/categories", http.StatusSeeOther)
}

// UpdateCategory handles the edit-category form
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	err := h.contentService.UpdateCategory(id,
		r.FormValue("name"),
		r.FormValue("description"),
		r.FormValue("icon"),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrNameRequired):
			respondWithError(w, http.StatusBadRequest, "Name is required", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error updating category", err)
		}
		return
	}

	http.Redirect(w, r, "/admin-panel/categories", http.StatusSeeOther)
}

// DeleteCategory removes a category and its subcategories
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID", "", nil)
		return
	}

	if err := h.contentService.DeleteCategory(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting category", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/categories", http.StatusSeeOther)
}

// ListSubcategories renders the subcategory management page
func (h *AdminHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := h.contentService.ListAllSubcategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing subcategories", err)
		return
	}

	categories, err := h.contentService.ListCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing categories", err)
		return
	}

	h.render(w, "admin_subcategories.tmpl", map[string]interface{}{
		"Title":         "Manage Subcategories - QuizHub",
		"User":          GetUserFromContext(r.Context()),
		"IsAdmin":       true,
		"Subcategories": subcategories,
		"Categories":    categories,
		"CSRFToken":     h.middleware.CSRFToken(r),
	})
}

// CreateSubcategory handles the new-subcategory form
func (h *AdminHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category", "", nil)
		return
	}

	_, err = h.contentService.CreateSubcategory(
		r.FormValue("name"),
		r.FormValue("description"),
		categoryID,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrNameRequired):
			respondWithError(w, http.StatusBadRequest, "Name is required", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error creating subcategory", err)
		}
		return
	}

	http.Redirect(w, r, "/admin-panel/subcategories", http.StatusSeeOther)
}

// UpdateSubcategory handles the edit-subcategory form
func (h *AdminHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid subcategory ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category", "", nil)
		return
	}

	err = h.contentService.UpdateSubcategory(id,
		r.FormValue("name"),
		r.FormValue("description"),
		categoryID,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubcategoryNotFound), errors.Is(err, service.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrNameRequired):
			respondWithError(w, http.StatusBadRequest, "Name is required", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error updating subcategory", err)
		}
		return
	}

	http.Redirect(w, r, "/admin-panel/subcategories", http.StatusSeeOther)
}

// DeleteSubcategory removes a subcategory
func (h *AdminHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid subcategory ID", "", nil)
		return
	}

	if err := h.contentService.DeleteSubcategory(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting subcategory", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/subcategories", http.StatusSeeOther)
}

// ListQuizzes renders the generated quizzes page
func (h *AdminHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.adminService.ListQuizzes()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing quizzes", err)
		return
	}

	h.render(w, "admin_quizzes.tmpl", map[string]interface{}{
		"Title":     "Manage Quizzes - QuizHub",
		"User":      GetUserFromContext(r.Context()),
		"IsAdmin":   true,
		"Quizzes":   quizzes,
		"CSRFToken": h.middleware.CSRFToken(r),
	})
}

// DeleteQuiz removes a quiz with its questions and attempts
func (h *AdminHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid quiz ID", "", nil)
		return
	}

	if err := h.adminService.DeleteQuiz(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting quiz", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/quizzes", http.StatusSeeOther)
}

// ListAttempts renders all attempts across users
func (h *AdminHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.adminService.ListAttempts()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing attempts", err)
		return
	}

	h.render(w, "admin_attempts.tmpl", map[string]interface{}{
		"Title":     "Quiz Attempts - QuizHub",
		"User":      GetUserFromContext(r.Context()),
		"IsAdmin":   true,
		"Attempts":  attempts,
		"CSRFToken": h.middleware.CSRFToken(r),
	})
}

// DeleteAttempt removes one attempt
func (h *AdminHandler) DeleteAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	if err := h.adminService.DeleteAttempt(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting attempt", err)
		return
	}

	http.Redirect(w, r, "/admin-panel/attempts", http.StatusSeeOther)
}
