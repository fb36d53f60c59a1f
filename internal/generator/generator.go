// Package generator produces multiple-choice quiz questions for a topic and
// difficulty. The primary implementation calls OpenAI; a fallback decorator
// guarantees the attempt lifecycle always receives questions.
package generator

import "context"

// GeneratedQuestion is one question as returned by a generator, before it is
// persisted as a quiz question.
type GeneratedQuestion struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Generator produces count questions about a topic at a difficulty tier
type Generator interface {
	Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error)
}
