package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"IntelDigest/internal/ports"
)

// OpenAIProvider summarizes through the official OpenAI SDK.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ ports.Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a provider; model may be empty to use the default.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	chatModel := openai.ChatModelGPT4oMini
	if model != "" {
		chatModel = openai.ChatModel(model)
	}
	return &OpenAIProvider{client: &client, model: chatModel}
}

// Name identifies the provider in chain logs.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Attempt requests one chat completion; any API error is a chain-recoverable
// failure.
func (p *OpenAIProvider) Attempt(ctx context.Context, text string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
