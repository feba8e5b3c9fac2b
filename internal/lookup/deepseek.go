package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"

	"github.com/notexe/vocab-trainer/internal/config"
)

const explainSystemPrompt = "You are a helpful ESL assistant."

// Explainer produces short AI explanations of vocabulary items via the
// DeepSeek API.
type Explainer struct {
	client deepseek.Client
	model  string
}

// NewExplainer creates an Explainer from the DeepSeek config.
func NewExplainer(cfg config.DeepSeekConfig) (*Explainer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("DeepSeek API key is required")
	}

	client, err := deepseek.NewClient(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek client: %w", err)
	}

	return &Explainer{client: client, model: cfg.Model}, nil
}

// Explain returns a concise learner-level explanation of the word or phrase:
// the main meaning and one example sentence.
func (e *Explainer) Explain(ctx context.Context, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("empty term")
	}

	prompt := fmt.Sprintf(
		"Explain %q simply for an ESL learner. Main meaning and 1 example. Concise. If it is a phrase, explain the phrase.",
		term)

	temp := float32(0.7)
	chatReq := &request.ChatCompletionsRequest{
		Model: e.model,
		Messages: []*request.Message{
			{Role: "system", Content: explainSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   150,
		Temperature: &temp,
		Stream:      false,
	}

	resp, err := e.client.CallChatCompletionsChat(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("DeepSeek API request failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("DeepSeek returned no explanation")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
