package models

import "testing"

func TestPointsPerCorrect(t *testing.T) {
	tests := []struct {
		difficulty string
		want       int
	}{
		{DifficultyEasy, 10},
		{DifficultyMedium, 15},
		{DifficultyHard, 20},
		{"unknown", 20},
	}

	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			if got := PointsPerCorrect(tt.difficulty); got != tt.want {
				t.Errorf("PointsPerCorrect(%q) = %d, want %d", tt.difficulty, got, tt.want)
			}
		})
	}
}

func TestAttemptPercentage(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  int
	}{
		{"perfect", 10, 10, 100},
		{"zero", 0, 10, 0},
		{"rounds up", 2, 3, 67},
		{"no questions", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &QuizAttempt{Score: tt.score, TotalQuestions: tt.total}
			if got := a.Percentage(); got != tt.want {
				t.Errorf("Percentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQuestionOption(t *testing.T) {
	q := &Question{OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d"}

	tests := []struct {
		letter string
		want   string
	}{
		{"A", "a"},
		{"B", "b"},
		{"C", "c"},
		{"D", "d"},
		{"E", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := q.Option(tt.letter); got != tt.want {
			t.Errorf("Option(%q) = %q, want %q", tt.letter, got, tt.want)
		}
	}
}
