package service

import (
	"errors"
	"fmt"

	"quizhub/internal/models"
	"quizhub/internal/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrCannotEditSelf = errors.New("cannot change your own admin status")
)

// AdminService backs the admin panel: user management and site-wide views
// over quizzes and attempts.
type AdminService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	contentRepo *repository.ContentRepository
	quizRepo    *repository.QuizRepository
	attemptRepo *repository.AttemptRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	contentRepo *repository.ContentRepository,
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		contentRepo: contentRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
	}
}

// SiteCounts are the headline numbers on the admin dashboard
type SiteCounts struct {
	Users             int
	Categories        int
	Quizzes           int
	CompletedAttempts int
}

// Counts gathers the admin dashboard totals
func (s *AdminService) Counts() (*SiteCounts, error) {
	users, err := s.userRepo.CountUsers()
	if err != nil {
		return nil, err
	}
	categories, err := s.contentRepo.CountCategories()
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.CountQuizzes()
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.CountCompleted()
	if err != nil {
		return nil, err
	}
	return &SiteCounts{
		Users:             users,
		Categories:        categories,
		Quizzes:           quizzes,
		CompletedAttempts: attempts,
	}, nil
}

// UserWithProfile pairs an account with its profile for the users list
type UserWithProfile struct {
	User    models.User
	Profile *models.UserProfile
}

// ListUsers returns every account with its profile attached
func (s *AdminService) ListUsers() ([]UserWithProfile, error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, err
	}

	result := make([]UserWithProfile, 0, len(users))
	for _, u := range users {
		profile, err := s.profileRepo.GetByUserID(u.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, UserWithProfile{User: u, Profile: profile})
	}
	return result, nil
}

// GetUser returns one account with its profile
func (s *AdminService) GetUser(id int64) (*UserWithProfile, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile, err := s.profileRepo.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	return &UserWithProfile{User: *user, Profile: profile}, nil
}

// SetQuizAdmin grants or revokes quiz admin on another user's profile.
// Admins cannot toggle their own flag, so the site always keeps at least
// one working admin.
func (s *AdminService) SetQuizAdmin(actorID, targetID int64, isAdmin bool) error {
	if actorID == targetID {
		return ErrCannotEditSelf
	}
	user, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if _, err := s.profileRepo.GetOrCreate(targetID); err != nil {
		return err
	}
	return s.profileRepo.SetQuizAdmin(targetID, isAdmin)
}

// UserEdit carries the account fields editable from the admin panel
type UserEdit struct {
	FirstName string
	LastName  string
	IsActive  bool
}

// UpdateUser edits an account's name and active flag
func (s *AdminService) UpdateUser(id int64, edit UserEdit) error {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.FirstName = edit.FirstName
	user.LastName = edit.LastName
	user.IsActive = edit.IsActive
	if err := s.userRepo.UpdateUser(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ListQuizzes returns every generated quiz, newest first
func (s *AdminService) ListQuizzes() ([]models.Quiz, error) {
	return s.quizRepo.ListQuizzes()
}

// DeleteQuiz removes a quiz with its questions and attempts
func (s *AdminService) DeleteQuiz(id int64) error {
	return s.quizRepo.DeleteQuiz(id)
}

// ListAttempts returns every attempt across all users, newest first
func (s *AdminService) ListAttempts() ([]models.AttemptWithQuiz, error) {
	return s.attemptRepo.ListAll()
}

// DeleteAttempt removes one attempt and its answers
func (s *AdminService) DeleteAttempt(id int64) error {
	return s.attemptRepo.DeleteAttempt(id)
}
