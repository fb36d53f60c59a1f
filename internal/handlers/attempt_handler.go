package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"quizhub/internal/service"
)

// AttemptHandler serves the quiz attempt lifecycle: start, take, answer,
// submit, results, history.
type AttemptHandler struct {
	attemptService *service.AttemptService
	middleware     *Middleware
	templates      *template.Template
}

// NewAttemptHandler creates a new attempt handler
func NewAttemptHandler(attemptService *service.AttemptService, middleware *Middleware, templates *template.Template) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		middleware:     middleware,
		templates:      templates,
	}
}

func (h *AttemptHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Start creates a fresh quiz and attempt, then redirects to the take page
func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	subcategoryID, err := strconv.ParseInt(r.FormValue("subcategory_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subcategory", "", nil)
		return
	}

	difficulty := r.FormValue("difficulty")
	if difficulty == "" {
		difficulty = "medium"
	}

	count, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil || count < 1 || count > 50 {
		count = 10
	}

	attempt, err := h.attemptService.Start(r.Context(), user.ID, subcategoryID, difficulty, count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubcategoryNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrGenerationFailed):
			h.render(w, "start_failed.tmpl", map[string]interface{}{
				"Title": "Quiz Unavailable - QuizHub",
				"User":  user,
			})
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error starting quiz", err)
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/take/%d", attempt.ID), http.StatusSeeOther)
}

// Take renders the quiz-taking page for an in-progress attempt
func (h *AttemptHandler) Take(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	attemptID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	state, err := h.attemptService.GetForTaking(attemptID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptCompleted):
			http.Redirect(w, r, fmt.Sprintf("/results/%d", attemptID), http.StatusSeeOther)
		case errors.Is(err, service.ErrAttemptNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrAccessDenied):
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading attempt", err)
		}
		return
	}

	h.render(w, "take_quiz.tmpl", map[string]interface{}{
		"Title":     state.Quiz.Title + " - QuizHub",
		"User":      user,
		"Attempt":   state.Attempt,
		"Quiz":      state.Quiz,
		"Questions": state.Questions,
		"Answered":  state.Answered,
		"CSRFToken": h.middleware.CSRFToken(r),
	})
}

// Answer saves one answer and the attempt's progress. The quiz page calls
// it via fetch with the X-Requested-With header; plain form posts fall back
// to redirects.
func (h *AttemptHandler) Answer(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	attemptID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	// question_id and answer travel together; a post without them still
	// updates the progress fields.
	var questionID int64
	if raw := r.FormValue("question_id"); raw != "" {
		questionID, _ = strconv.ParseInt(raw, 10, 64)
	}
	selectedAnswer := r.FormValue("answer")

	currentQuestion, err := strconv.Atoi(r.FormValue("current_question"))
	if err != nil {
		currentQuestion = 0
	}

	// A garbled timer value is dropped rather than zeroing the clock
	var timeRemaining *int
	if raw := r.FormValue("time_remaining"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			timeRemaining = &v
		}
	}

	err = h.attemptService.RecordAnswer(attemptID, user.ID, questionID, selectedAnswer, currentQuestion, timeRemaining)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptCompleted):
			// Late save after submission. Tell the page to move on.
			if isAJAX(r) {
				respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
			} else {
				http.Redirect(w, r, fmt.Sprintf("/results/%d", attemptID), http.StatusSeeOther)
			}
		case errors.Is(err, service.ErrInvalidQuestion):
			if isAJAX(r) {
				respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid question"})
			} else {
				respondWithError(w, http.StatusBadRequest, "Invalid question", "", nil)
			}
		case errors.Is(err, service.ErrAttemptNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrAccessDenied):
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error recording answer", err)
		}
		return
	}

	if isAJAX(r) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/take/%d", attemptID), http.StatusSeeOther)
}

// Submit finalizes the attempt and redirects to the results page.
// Submitting an already-completed attempt just redirects.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	attemptID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	var questionID int64
	if raw := r.FormValue("question_id"); raw != "" {
		questionID, _ = strconv.ParseInt(raw, 10, 64)
	}
	selectedAnswer := r.FormValue("answer")

	_, err = h.attemptService.Submit(attemptID, user.ID, questionID, selectedAnswer)
	if err != nil && !errors.Is(err, service.ErrAttemptCompleted) {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrAccessDenied):
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error submitting quiz", err)
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/results/%d", attemptID), http.StatusSeeOther)
}

// Results renders the scored breakdown for an attempt
func (h *AttemptHandler) Results(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	attemptID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	results, err := h.attemptService.Results(attemptID, user.ID, IsAdminFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		case errors.Is(err, service.ErrAccessDenied):
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading results", err)
		}
		return
	}

	h.render(w, "results.tmpl", map[string]interface{}{
		"Title":   "Results - QuizHub",
		"User":    user,
		"IsAdmin": IsAdminFromContext(r.Context()),
		"Results": results,
	})
}

// History renders the user's past attempts
func (h *AttemptHandler) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	attempts, err := h.attemptService.History(user.ID, 100)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading history", err)
		return
	}

	h.render(w, "history.tmpl", map[string]interface{}{
		"Title":    "Quiz History - QuizHub",
		"User":     user,
		"IsAdmin":  IsAdminFromContext(r.Context()),
		"Attempts": attempts,
	})
}
