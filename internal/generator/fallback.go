package generator

import (
	"context"
	"fmt"
	"log"
)

// FallbackGenerator wraps another generator and substitutes deterministic
// placeholder questions whenever the inner generator is missing or fails.
// Its Generate never returns an error and never returns fewer than count
// questions, so quiz starts cannot fail on generation problems.
type FallbackGenerator struct {
	inner Generator
}

// WithFallback decorates a generator with the placeholder fallback. A nil
// inner generator (no API credentials configured) is allowed.
func WithFallback(inner Generator) *FallbackGenerator {
	return &FallbackGenerator{inner: inner}
}

// Generate delegates to the inner generator and falls back to placeholders
// on any error.
func (g *FallbackGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	if g.inner != nil {
		questions, err := g.inner.Generate(ctx, topic, difficulty, count)
		if err == nil {
			return questions, nil
		}
		log.Printf("Question generation failed, using placeholders: %v", err)
	}
	return placeholderQuestions(topic, difficulty, count), nil
}

func placeholderQuestions(topic, difficulty string, count int) []GeneratedQuestion {
	questions := make([]GeneratedQuestion, count)
	for i := range questions {
		questions[i] = GeneratedQuestion{
			Question:      fmt.Sprintf("Sample question %d about %s (%s)", i+1, topic, difficulty),
			OptionA:       "Option A",
			OptionB:       "Option B",
			OptionC:       "Option C",
			OptionD:       "Option D",
			CorrectAnswer: "A",
			Explanation:   "This is a sample question generated as a placeholder.",
		}
	}
	return questions
}
