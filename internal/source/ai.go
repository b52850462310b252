package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"IntelDigest/internal/config"
	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

var (
	aiKeywords = []string{
		"ai", "artificial intelligence", "machine learning", "llm",
		"openai", "anthropic", "gemini", "deepmind", "gpt", "claude",
		"model", "agent", "chatbot",
	}
	// Research-paper announcements read poorly in a news digest.
	aiExclusions = []string{"arxiv", "paper", "preprint"}

	hnKeywords = []string{
		"ai", "llm", "gpt", "claude", "gemini", "openai", "anthropic",
		"machine learning", "neural", "model", "agent",
	}
)

const (
	hnTopStoriesURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	hnItemURLFmt    = "https://hacker-news.firebaseio.com/v0/item/%d.json"
	hnScanDepth     = 30
	hnMaxStories    = 8
)

// AISource combines AI-industry RSS feeds with a scan of the Hacker News
// front page. The HN leg is best-effort: if it fails while the feeds
// succeeded, the category degrades to partial rather than failed.
type AISource struct {
	feeds  *RSSSource
	hn     *hnClient
	logger *slog.Logger
}

var _ ports.Source = (*AISource)(nil)

// NewAISource covers AI industry news plus Hacker News discussion.
func NewAISource(feeds config.FeedsConfig, fetcher *FeedFetcher, client *http.Client, maxItems int, logger *slog.Logger) *AISource {
	rss := NewRSSSource(domain.CategoryAI, []Group{
		{URLs: feeds.AI, Keywords: aiKeywords, Exclude: aiExclusions, Window: WindowToday},
	}, fetcher, maxItems, logger)
	return &AISource{
		feeds:  rss,
		hn:     newHNClient(client),
		logger: logger,
	}
}

// Category identifies the bucket this adapter feeds.
func (s *AISource) Category() domain.Category {
	return domain.CategoryAI
}

// Fetch merges the RSS result with Hacker News stories.
func (s *AISource) Fetch(ctx context.Context) domain.FetchResult {
	res := s.feeds.Fetch(ctx)

	stories, err := s.hn.topAIStories(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("hacker news scan failed", "error", err)
		}
		if res.Status == domain.StatusOK {
			res.Status = domain.StatusPartial
			res.Reason = fmt.Sprintf("hacker news unreachable: %v", err)
		}
		return res
	}
	if res.Status == domain.StatusFailed && len(stories) > 0 {
		// HN alone still carried the category.
		res = domain.FetchResult{Category: domain.CategoryAI, Status: domain.StatusPartial,
			Reason: res.Reason}
	}
	res.Entries = append(res.Entries, stories...)
	return res
}

type hnClient struct {
	client   *http.Client
	topURL   string
	itemURL  string
	maxScan  int
	maxTaken int
	now      func() time.Time
}

func newHNClient(client *http.Client) *hnClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &hnClient{
		client:   client,
		topURL:   hnTopStoriesURL,
		itemURL:  hnItemURLFmt,
		maxScan:  hnScanDepth,
		maxTaken: hnMaxStories,
		now:      time.Now,
	}
}

type hnItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

func (c *hnClient) topAIStories(ctx context.Context) ([]domain.RawEntry, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.topURL, &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if len(ids) > c.maxScan {
		ids = ids[:c.maxScan]
	}

	entries := make([]domain.RawEntry, 0, c.maxTaken)
	for _, id := range ids {
		if len(entries) >= c.maxTaken {
			break
		}
		var item hnItem
		if err := c.getJSON(ctx, fmt.Sprintf(c.itemURL, id), &item); err != nil {
			continue
		}
		if item.Type != "story" || item.Title == "" {
			continue
		}
		if !containsAny(strings.ToLower(item.Title), hnKeywords) {
			continue
		}
		// Same relevance bar as the RSS leg: no research-paper posts, and
		// front-page longevity does not make an old story news again.
		if excluded(item.Title, aiExclusions) {
			continue
		}
		if !sameUTCDay(time.Unix(item.Time, 0), c.now()) {
			continue
		}
		link := item.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
		}
		entries = append(entries, domain.RawEntry{
			Title:     item.Title,
			Body:      item.Title,
			Link:      link,
			Published: time.Unix(item.Time, 0).UTC().Format(time.RFC3339),
			Source:    "Hacker News",
		})
	}
	return entries, nil
}

func (c *hnClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
