package service

import (
	"context"
	"errors"
	"testing"

	"quizhub/internal/models"
)

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.profileRepo, env.attemptRepo, env.contentRepo)

	updated, err := profiles.UpdatePreferences(env.userID, PreferenceUpdate{
		Bio:                 "quiz enjoyer",
		PreferredDifficulty: models.DifficultyHard,
		PreferredCategoryID: &env.categoryID,
		QuestionsPerQuiz:    15,
		Theme:               models.ThemeDark,
		EmailNotifications:  true,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences failed: %v", err)
	}
	if updated.PreferredDifficulty != models.DifficultyHard || updated.QuestionsPerQuiz != 15 {
		t.Errorf("preferences not applied: %+v", updated)
	}

	reloaded, err := profiles.Get(env.userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if reloaded.Bio != "quiz enjoyer" || reloaded.Theme != models.ThemeDark || !reloaded.EmailNotifications {
		t.Errorf("preferences not persisted: %+v", reloaded)
	}
}

func TestUpdatePreferencesValidation(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.profileRepo, env.attemptRepo, env.contentRepo)

	unknownCategory := int64(9999)
	tests := []struct {
		name string
		upd  PreferenceUpdate
	}{
		{"bad difficulty", PreferenceUpdate{PreferredDifficulty: "extreme", Theme: "light", QuestionsPerQuiz: 10}},
		{"bad theme", PreferenceUpdate{PreferredDifficulty: "easy", Theme: "neon", QuestionsPerQuiz: 10}},
		{"zero questions", PreferenceUpdate{PreferredDifficulty: "easy", Theme: "light", QuestionsPerQuiz: 0}},
		{"too many questions", PreferenceUpdate{PreferredDifficulty: "easy", Theme: "light", QuestionsPerQuiz: 51}},
		{"unknown category", PreferenceUpdate{PreferredDifficulty: "easy", Theme: "light", QuestionsPerQuiz: 10, PreferredCategoryID: &unknownCategory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := profiles.UpdatePreferences(env.userID, tt.upd); !errors.Is(err, ErrInvalidPreference) {
				t.Errorf("err = %v, want ErrInvalidPreference", err)
			}
		})
	}
}

func TestDashboardAggregates(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.profileRepo, env.attemptRepo, env.contentRepo)

	// alice completes a quiz with one correct answer
	attempt := env.start(t, "easy", 2)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, questions[0].ID, "A", 0, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// bob completes a quiz scoring zero, landing below alice
	bobID := env.newUser(t, "bob")
	bobAttempt, err := env.attempts.Start(context.Background(), bobID, env.subcategoryID, "easy", 2)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := env.attempts.Submit(bobAttempt.ID, bobID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	dashboard, err := profiles.Dashboard(env.userID)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if dashboard.Stats.CompletedCount != 1 {
		t.Errorf("completed count = %d, want 1", dashboard.Stats.CompletedCount)
	}
	if len(dashboard.RecentAttempts) != 1 {
		t.Errorf("recent attempts = %d, want 1", len(dashboard.RecentAttempts))
	}
	if dashboard.Rank != 1 {
		t.Errorf("rank = %d, want 1", dashboard.Rank)
	}
	if len(dashboard.Leaderboard) < 2 {
		t.Fatalf("leaderboard has %d entries, want at least 2", len(dashboard.Leaderboard))
	}
	if dashboard.Leaderboard[0].Username != "alice" {
		t.Errorf("leaderboard top = %q, want alice", dashboard.Leaderboard[0].Username)
	}
	if dashboard.Leaderboard[0].TotalPoints != 10 {
		t.Errorf("top points = %d, want 10", dashboard.Leaderboard[0].TotalPoints)
	}

	bobDashboard, err := profiles.Dashboard(bobID)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if bobDashboard.Rank != 2 {
		t.Errorf("bob rank = %d, want 2", bobDashboard.Rank)
	}
}
