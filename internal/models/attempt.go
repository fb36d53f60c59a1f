package models

import (
	"fmt"
	"time"
)

// Attempt status values. An attempt moves from in_progress to completed
// exactly once and is never reopened.
const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
)

// QuizAttempt is one user's run through a generated quiz
type QuizAttempt struct {
	ID              int64
	UserID          int64
	QuizID          int64
	Score           int
	TotalQuestions  int
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	CurrentQuestion int
	TimeRemaining   *int // seconds, client-reported, advisory only
}

// IsCompleted reports whether the attempt has been finalized
func (a *QuizAttempt) IsCompleted() bool {
	return a.Status == AttemptCompleted
}

// Percentage returns the attempt's score as a rounded percentage
func (a *QuizAttempt) Percentage() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return int(float64(a.Score)/float64(a.TotalQuestions)*100 + 0.5)
}

// TimeTaken formats the wall-clock duration between start and completion
func (a *QuizAttempt) TimeTaken() string {
	if a.CompletedAt == nil {
		return "N/A"
	}
	total := int(a.CompletedAt.Sub(a.StartedAt).Seconds())
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// UserAnswer records the selected answer for one question of an attempt.
// At most one row exists per (attempt, question) pair; re-answering
// overwrites the previous row.
type UserAnswer struct {
	ID             int64
	AttemptID      int64
	QuestionID     int64
	SelectedAnswer *string
	IsCorrect      bool
}

// AttemptWithQuiz pairs an attempt with its quiz for history and admin listings
type AttemptWithQuiz struct {
	Attempt  QuizAttempt
	Quiz     Quiz
	Username string
}

// QuestionResult is the per-question breakdown shown on the results page
type QuestionResult struct {
	Question       Question
	SelectedAnswer *string
	IsCorrect      bool
}
