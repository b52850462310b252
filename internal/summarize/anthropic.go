package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"IntelDigest/internal/ports"
)

// AnthropicProvider summarizes through the official Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ ports.Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider builds a provider; model may be empty to use the default.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	m := anthropic.ModelClaude3_5HaikuLatest
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicProvider{client: &client, model: m}
}

// Name identifies the provider in chain logs.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Attempt requests one message completion; any API error is a
// chain-recoverable failure.
func (p *AnthropicProvider) Attempt(ctx context.Context, text string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic returned no content")
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}
