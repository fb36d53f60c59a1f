package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator generates questions with an OpenAI chat model
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate asks the model for count questions as strict JSON and returns the
// parsed array as-is. The response is trusted: no answer validation, no
// deduplication, no length enforcement.
func (g *OpenAIGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleSystem,
					Content: "You are a quiz question generator. Respond with strict JSON only, " +
						"no prose and no Markdown fences.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(topic, difficulty, count),
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	content := stripCodeFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	return payload.Questions, nil
}

func buildPrompt(topic, difficulty string, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d %s-difficulty multiple choice questions about %s.\n\n", count, difficulty, topic)
	sb.WriteString("Return JSON of the form:\n")
	sb.WriteString(`{"questions": [{"question": "...", "option_a": "...", "option_b": "...", ` +
		`"option_c": "...", "option_d": "...", "correct_answer": "A", "explanation": "..."}]}`)
	sb.WriteString("\n\ncorrect_answer must be one of A, B, C, or D. " +
		"Each explanation should briefly state why the answer is correct.")
	return sb.String()
}

// stripCodeFences removes a wrapping ```json ... ``` block if the model
// ignored the no-fences instruction.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
