package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubGenerator struct {
	questions []GeneratedQuestion
	err       error
}

func (s *stubGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	return s.questions, s.err
}

func TestFallbackWithoutInnerGenerator(t *testing.T) {
	gen := WithFallback(nil)

	questions, err := gen.Generate(context.Background(), "Physics", "easy", 5)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(questions))
	}

	for i, q := range questions {
		wantText := fmt.Sprintf("Sample question %d about Physics (easy)", i+1)
		if q.Question != wantText {
			t.Errorf("question %d text = %q, want %q", i, q.Question, wantText)
		}
		if q.CorrectAnswer != "A" {
			t.Errorf("question %d correct answer = %q, want A", i, q.CorrectAnswer)
		}
		if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
			t.Errorf("question %d has an empty option", i)
		}
	}
}

func TestFallbackOnInnerError(t *testing.T) {
	inner := &stubGenerator{err: errors.New("api unavailable")}
	gen := WithFallback(inner)

	questions, err := gen.Generate(context.Background(), "History", "hard", 3)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
}

func TestFallbackPassesThroughInnerQuestions(t *testing.T) {
	inner := &stubGenerator{questions: []GeneratedQuestion{
		{Question: "Real question", CorrectAnswer: "B"},
	}}
	gen := WithFallback(inner)

	questions, err := gen.Generate(context.Background(), "Music", "medium", 1)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "Real question" {
		t.Fatalf("inner questions not passed through: %+v", questions)
	}
}
