package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

const systemPrompt = "You are an investment-intelligence analyst. Summarize news items " +
	"in a neutral morning-brief style. Keep key facts, names, and numbers. " +
	"Never speculate beyond the source text."

// Chain tries summarization providers strictly in configured order. The first
// provider that returns a non-failure result wins; every failure is logged as
// a non-fatal condition and the chain advances. An exhausted chain falls back
// to the item's original body, which counts as success rather than failure.
// A chain with zero providers is valid and equivalent to immediate fallback.
type Chain struct {
	providers []ports.Provider
	logger    *slog.Logger
}

// NewChain builds the fallback chain from whatever providers configuration
// produced. Nil providers are skipped.
func NewChain(providers []ports.Provider, logger *slog.Logger) *Chain {
	kept := make([]ports.Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept, logger: logger}
}

// Len reports how many providers are configured.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Summarize runs the chain for one item, mutating Body and Summarized in
// place. OriginalBody is never touched. Providers are stateless per call, so
// one item's exhausted chain cannot corrupt a sibling's attempt.
func (c *Chain) Summarize(ctx context.Context, item *domain.Item) {
	prompt := itemPrompt(item)
	for _, p := range c.providers {
		summary, err := p.Attempt(ctx, prompt)
		if err != nil {
			c.warn("summarize attempt failed", "provider", p.Name(), "title", item.Title, "error", err)
			continue
		}
		summary = strings.TrimSpace(summary)
		if summary == "" {
			c.warn("summarize attempt returned empty result", "provider", p.Name(), "title", item.Title)
			continue
		}
		item.Body = summary
		item.Summarized = true
		return
	}
	// Implicit identity provider: original text, unchanged.
	item.Body = item.OriginalBody
	item.Summarized = false
}

// Overview asks the chain for a report-level executive summary across all
// surviving items. An empty string means no provider succeeded; the report is
// rendered without the overview block and the run is unaffected.
func (c *Chain) Overview(ctx context.Context, items []domain.Item) string {
	if len(items) == 0 || len(c.providers) == 0 {
		return ""
	}
	prompt := overviewPrompt(items)
	for _, p := range c.providers {
		overview, err := p.Attempt(ctx, prompt)
		if err != nil {
			c.warn("overview attempt failed", "provider", p.Name(), "error", err)
			continue
		}
		if overview = strings.TrimSpace(overview); overview != "" {
			return overview
		}
	}
	return ""
}

func itemPrompt(item *domain.Item) string {
	var b strings.Builder
	b.WriteString("Summarize the following news item in at most 80 words. ")
	b.WriteString("Output only the summary.\n\n")
	fmt.Fprintf(&b, "Title: %s\nContent: %s\nSource: %s\n", item.Title, item.OriginalBody, item.Source)
	return b.String()
}

func overviewPrompt(items []domain.Item) string {
	var b strings.Builder
	b.WriteString("Write one cohesive paragraph (150-250 words) summarizing today's ")
	b.WriteString("intelligence items below, ordered by importance, followed by a short ")
	b.WriteString("outlook for the coming days based only on these items. ")
	b.WriteString("No headings, no bullet lists.\n\n")
	limit := len(items)
	if limit > 40 {
		limit = 40
	}
	for i := 0; i < limit; i++ {
		item := items[i]
		fmt.Fprintf(&b, "[%d] [%s] %s | %s\n", i+1, item.Category, item.Title, snippet(item.Body, 150))
	}
	return b.String()
}

func snippet(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (c *Chain) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
