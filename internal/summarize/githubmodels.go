package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"IntelDigest/internal/ports"
)

// GitHubModelsProvider calls the GitHub Models inference endpoint, an
// OpenAI-compatible chat completions API authenticated with a bearer token.
type GitHubModelsProvider struct {
	endpoint   string
	model      string
	token      string
	httpClient *http.Client
}

var _ ports.Provider = (*GitHubModelsProvider)(nil)

// NewGitHubModelsProvider builds a provider from endpoint, model, and token.
func NewGitHubModelsProvider(endpoint, model, token string) *GitHubModelsProvider {
	return &GitHubModelsProvider{
		endpoint: endpoint,
		model:    model,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the provider in chain logs.
func (p *GitHubModelsProvider) Name() string {
	return "github-models"
}

// Attempt posts one chat completion request. Any non-2xx status, including
// authentication rejections and rate limits, is a failure the chain recovers
// from; there is no retry here.
func (p *GitHubModelsProvider) Attempt(ctx context.Context, text string) (string, error) {
	if p.token == "" || p.endpoint == "" || p.model == "" {
		return "", fmt.Errorf("github models provider misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": text},
		},
		"max_tokens":  500,
		"temperature": 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("github models error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
