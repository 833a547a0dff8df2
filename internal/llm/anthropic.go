// Package llm implements the completion boundary against the Anthropic
// Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/daisukegoma-max/gsc-hearing-app/internal/domain"
)

// AnthropicClient calls the Messages API with a fixed model and token budget.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates the completion client.
func NewAnthropicClient(apiKey, model string, maxTokens int64) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends the system prompt and the ordered transcript and returns the
// generated text. Any transport error, non-success status or response without
// a text block is reported as an error; the caller treats all of them as a
// completion-boundary failure.
func (c *AnthropicClient) Complete(ctx context.Context, system string, transcript []domain.Message) (string, error) {
	params := make([]anthropic.MessageParam, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case domain.RoleUser:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case domain.RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  params,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("no text content in model response")
}
