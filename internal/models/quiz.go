package models

import "time"

// Difficulty tiers and their point multipliers
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether s is a recognized difficulty tier
func ValidDifficulty(s string) bool {
	return s == DifficultyEasy || s == DifficultyMedium || s == DifficultyHard
}

// PointsPerCorrect returns the points awarded per correct answer for a
// difficulty tier. Unknown tiers score as hard.
func PointsPerCorrect(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 15
	default:
		return 20
	}
}

// Quiz is a generated set of questions. Quizzes are created fresh for every
// attempt and never shared between users.
type Quiz struct {
	ID            int64
	Title         string
	Difficulty    string
	SubcategoryID int64
	TimeLimit     int // seconds
	CreatedAt     time.Time
}

// Question is a single multiple-choice question belonging to a quiz
type Question struct {
	ID            int64
	QuizID        int64
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string // "A".."D"
	Explanation   string
	Order         int
}

// Option returns the option text for an answer letter
func (q *Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}
