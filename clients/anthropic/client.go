package anthropic

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 1024

// AnthropicClient generates decision completions through the Anthropic
// Messages API. It is the synchronous alternative to the Grid client and
// satisfies the same clients.CompletionClient interface.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	log.Printf("🧠 Starting Anthropic completion (model: %s, prompt: %d chars)", c.model, len(prompt))

	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("completion contained no text content")
	}

	log.Printf("🧠 Completed successfully - received Anthropic completion (%d chars)", len(text))
	return text, nil
}
