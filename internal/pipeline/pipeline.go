package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"IntelDigest/internal/dedup"
	"IntelDigest/internal/domain"
	"IntelDigest/internal/normalize"
	"IntelDigest/internal/ports"
	"IntelDigest/internal/summarize"
)

// Pipeline runs one digest cycle: fetch every category concurrently,
// normalize and deduplicate, summarize through the provider chain, and
// decide whether the day's result is worth delivering.
type Pipeline struct {
	sources              []ports.Source
	chain                *summarize.Chain
	logger               *slog.Logger
	fetchConcurrency     int
	summarizeConcurrency int
	sourceTimeout        time.Duration
}

// Deps carries the pipeline's collaborators.
type Deps struct {
	Sources              []ports.Source
	Chain                *summarize.Chain
	Logger               *slog.Logger
	FetchConcurrency     int
	SummarizeConcurrency int
	SourceTimeout        time.Duration
}

// New builds a pipeline, applying defaults for unset limits.
func New(deps Deps) *Pipeline {
	p := &Pipeline{
		sources:              deps.Sources,
		chain:                deps.Chain,
		logger:               deps.Logger,
		fetchConcurrency:     deps.FetchConcurrency,
		summarizeConcurrency: deps.SummarizeConcurrency,
		sourceTimeout:        deps.SourceTimeout,
	}
	if p.fetchConcurrency <= 0 {
		p.fetchConcurrency = 4
	}
	if p.summarizeConcurrency <= 0 {
		p.summarizeConcurrency = 3
	}
	if p.sourceTimeout <= 0 {
		p.sourceTimeout = 60 * time.Second
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Run executes one full cycle. It always returns a result with every
// category key present; a run where nothing was collected comes back with
// HasContent false rather than an error.
func (p *Pipeline) Run(ctx context.Context) domain.RunResult {
	started := time.Now()
	results := p.fetchAll(ctx)

	res := domain.RunResult{
		Items:    make(map[domain.Category][]domain.Item, len(domain.Categories)),
		Statuses: make(map[domain.Category]domain.SourceStatus, len(domain.Categories)),
	}
	for _, cat := range domain.Categories {
		res.Items[cat] = nil
		res.Statuses[cat] = domain.SourceStatus{Status: domain.StatusFailed, Reason: "no source configured"}
	}

	for _, fr := range results {
		items := res.Items[fr.Category]
		for _, raw := range fr.Entries {
			item, ok := normalize.Normalize(fr.Category, raw)
			if !ok {
				continue
			}
			items = append(items, item)
		}
		res.Items[fr.Category] = items
		res.Statuses[fr.Category] = domain.SourceStatus{Status: fr.Status, Reason: fr.Reason}
	}

	total := 0
	for _, cat := range domain.Categories {
		res.Items[cat] = dedup.Deduplicate(res.Items[cat])
		total += len(res.Items[cat])
	}

	p.summarizeAll(ctx, res.Items)

	res.HasContent = total > 0
	p.logger.Info("pipeline run finished",
		"items", total,
		"hasContent", res.HasContent,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return res
}

// fetchAll fans out over the sources with a bounded worker count. Each
// source gets its own timeout so one stalled upstream cannot consume the
// whole run budget, and a panicking adapter is reported as a failed
// category instead of tearing the process down.
func (p *Pipeline) fetchAll(ctx context.Context) []domain.FetchResult {
	results := make([]domain.FetchResult, len(p.sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fetchConcurrency)

	for i, src := range p.sources {
		g.Go(func() error {
			results[i] = p.fetchOne(ctx, src)
			return nil
		})
	}
	// Workers never return errors; failures become per-category statuses.
	_ = g.Wait()
	return results
}

func (p *Pipeline) fetchOne(ctx context.Context, src ports.Source) (result domain.FetchResult) {
	cat := src.Category()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("source panicked", "category", cat, "panic", r)
			result = domain.Failed(cat, fmt.Sprintf("source panicked: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
	defer cancel()

	result = src.Fetch(ctx)
	if result.Category == "" {
		result.Category = cat
	}
	p.logger.Info("source fetched",
		"category", cat,
		"status", result.Status,
		"entries", len(result.Entries))
	return result
}

// summarizeAll rewrites item bodies through the provider chain with a
// bounded number of in-flight requests. The chain already degrades failed
// items to their original body, so there is nothing to collect here.
func (p *Pipeline) summarizeAll(ctx context.Context, items map[domain.Category][]domain.Item) {
	if p.chain == nil || p.chain.Len() == 0 {
		return
	}

	sem := make(chan struct{}, p.summarizeConcurrency)
	var wg sync.WaitGroup
	for _, cat := range domain.Categories {
		list := items[cat]
		for i := range list {
			wg.Add(1)
			sem <- struct{}{}
			go func(item *domain.Item) {
				defer wg.Done()
				defer func() { <-sem }()
				p.chain.Summarize(ctx, item)
			}(&list[i])
		}
	}
	wg.Wait()
}

// Overview produces the chain's cross-category digest line, empty when no
// provider is configured.
func (p *Pipeline) Overview(ctx context.Context, res domain.RunResult) string {
	if p.chain == nil {
		return ""
	}
	var all []domain.Item
	for _, cat := range domain.Categories {
		all = append(all, res.Items[cat]...)
	}
	return p.chain.Overview(ctx, all)
}
