package service

import (
	"errors"
	"fmt"

	"quizhub/internal/models"
	"quizhub/internal/repository"
)

var ErrInvalidPreference = errors.New("invalid preference value")

// ProfileService manages user profiles, dashboard stats, and the leaderboard
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	attemptRepo *repository.AttemptRepository
	contentRepo *repository.ContentRepository
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo *repository.ProfileRepository,
	attemptRepo *repository.AttemptRepository,
	contentRepo *repository.ContentRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		attemptRepo: attemptRepo,
		contentRepo: contentRepo,
	}
}

// Get returns the user's profile, creating a default one if missing
func (s *ProfileService) Get(userID int64) (*models.UserProfile, error) {
	return s.profileRepo.GetOrCreate(userID)
}

// PreferenceUpdate carries the editable profile fields
type PreferenceUpdate struct {
	Avatar              string
	Bio                 string
	PreferredDifficulty string
	PreferredCategoryID *int64
	QuestionsPerQuiz    int
	Theme               string
	EmailNotifications  bool
}

// UpdatePreferences validates and saves the user's quiz and display settings
func (s *ProfileService) UpdatePreferences(userID int64, upd PreferenceUpdate) (*models.UserProfile, error) {
	if !models.ValidDifficulty(upd.PreferredDifficulty) {
		return nil, fmt.Errorf("%w: difficulty %q", ErrInvalidPreference, upd.PreferredDifficulty)
	}
	if upd.Theme != models.ThemeLight && upd.Theme != models.ThemeDark && upd.Theme != models.ThemeAuto {
		return nil, fmt.Errorf("%w: theme %q", ErrInvalidPreference, upd.Theme)
	}
	if upd.QuestionsPerQuiz < 1 || upd.QuestionsPerQuiz > 50 {
		return nil, fmt.Errorf("%w: questions per quiz %d", ErrInvalidPreference, upd.QuestionsPerQuiz)
	}
	if upd.PreferredCategoryID != nil {
		category, err := s.contentRepo.GetCategory(*upd.PreferredCategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, fmt.Errorf("%w: unknown category", ErrInvalidPreference)
		}
	}

	profile, err := s.profileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	profile.Avatar = upd.Avatar
	profile.Bio = upd.Bio
	profile.PreferredDifficulty = upd.PreferredDifficulty
	profile.PreferredCategoryID = upd.PreferredCategoryID
	profile.QuestionsPerQuiz = upd.QuestionsPerQuiz
	profile.Theme = upd.Theme
	profile.EmailNotifications = upd.EmailNotifications

	if err := s.profileRepo.UpdatePreferences(profile); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return profile, nil
}

// Dashboard is everything the user dashboard page renders
type Dashboard struct {
	Profile        *models.UserProfile
	RecentAttempts []models.AttemptWithQuiz
	Stats          *repository.UserAttemptStats
	Leaderboard    []repository.LeaderboardEntry
	Rank           int
}

// Dashboard assembles the user's recent activity, aggregate stats, and
// their position on the points leaderboard.
func (s *ProfileService) Dashboard(userID int64) (*Dashboard, error) {
	profile, err := s.profileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.attemptRepo.ListForUser(userID, 5)
	if err != nil {
		return nil, err
	}

	stats, err := s.attemptRepo.StatsForUser(userID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.profileRepo.Leaderboard(10)
	if err != nil {
		return nil, err
	}

	rank, err := s.profileRepo.RankOfUser(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Profile:        profile,
		RecentAttempts: recent,
		Stats:          stats,
		Leaderboard:    leaderboard,
		Rank:           rank,
	}, nil
}
