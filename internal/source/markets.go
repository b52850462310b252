package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"IntelDigest/internal/config"
	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

// QuoteClient is the slice of the Finnhub API the market sources use. The
// indirection keeps the sources testable without network access.
type QuoteClient interface {
	Quote(ctx context.Context, symbol string) (current, previousClose, changePercent float64, err error)
}

type FinnhubQuotes struct {
	api *finnhub.DefaultApiService
}

var _ QuoteClient = (*FinnhubQuotes)(nil)

// NewFinnhubQuotes builds the shared quote client for the indices and movers
// sources.
func NewFinnhubQuotes(apiKey string) *FinnhubQuotes {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &FinnhubQuotes{api: finnhub.NewAPIClient(cfg).DefaultApi}
}

func (f *FinnhubQuotes) Quote(ctx context.Context, symbol string) (float64, float64, float64, error) {
	quote, _, err := f.api.Quote(ctx).Symbol(symbol).Execute()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return float64(quote.GetC()), float64(quote.GetPc()), float64(quote.GetDp()), nil
}

// IndicesSource reports the daily move of the tracked index ETFs as synthetic
// digest entries, one per index.
type IndicesSource struct {
	indices []config.IndexConfig
	quotes  QuoteClient
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.Source = (*IndicesSource)(nil)

// NewIndicesSource covers the major index ETF snapshot.
func NewIndicesSource(indices []config.IndexConfig, quotes QuoteClient, logger *slog.Logger) *IndicesSource {
	return &IndicesSource{indices: indices, quotes: quotes, logger: logger, now: time.Now}
}

// Category identifies the bucket this adapter feeds.
func (s *IndicesSource) Category() domain.Category {
	return domain.CategoryIndices
}

// Fetch quotes each configured index. Individual symbols fail independently.
func (s *IndicesSource) Fetch(ctx context.Context) domain.FetchResult {
	if s.quotes == nil {
		return domain.Failed(domain.CategoryIndices, "quote provider not configured")
	}

	published := s.now().UTC().Format(time.RFC3339)
	var (
		entries []domain.RawEntry
		failed  int
		lastErr error
	)
	for _, idx := range s.indices {
		current, prev, pct, err := s.quotes.Quote(ctx, idx.Symbol)
		if err != nil {
			failed++
			lastErr = err
			if s.logger != nil {
				s.logger.Debug("index quote failed", "symbol", idx.Symbol, "error", err)
			}
			continue
		}
		entries = append(entries, domain.RawEntry{
			Title:     fmt.Sprintf("%s: %+.2f%%", idx.Name, pct),
			Body:      fmt.Sprintf("%s (%s) at %.2f, previous close %.2f, change %+.2f%%.", idx.Name, idx.Symbol, current, prev, pct),
			Link:      quoteLink(idx.Symbol),
			Published: published,
			Source:    "Finnhub",
		})
	}

	switch {
	case len(s.indices) == 0:
		return domain.FetchResult{Category: domain.CategoryIndices, Status: domain.StatusOK}
	case failed == len(s.indices):
		return domain.Failed(domain.CategoryIndices, fmt.Sprintf("all quotes failed: %v", lastErr))
	case failed > 0:
		return domain.FetchResult{Category: domain.CategoryIndices, Entries: entries, Status: domain.StatusPartial,
			Reason: fmt.Sprintf("%d of %d quotes failed", failed, len(s.indices))}
	default:
		return domain.FetchResult{Category: domain.CategoryIndices, Entries: entries, Status: domain.StatusOK}
	}
}

// MoversSource scans the watchlist for stocks whose daily move crosses the
// surge threshold.
type MoversSource struct {
	watchlist []string
	threshold float64
	quotes    QuoteClient
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.Source = (*MoversSource)(nil)

// NewMoversSource covers the surge-stock scan.
func NewMoversSource(market config.MarketConfig, quotes QuoteClient, logger *slog.Logger) *MoversSource {
	threshold := market.SurgeThreshold
	if threshold <= 0 {
		threshold = 7.0
	}
	return &MoversSource{
		watchlist: market.Watchlist,
		threshold: threshold,
		quotes:    quotes,
		logger:    logger,
		now:       time.Now,
	}
}

// Category identifies the bucket this adapter feeds.
func (s *MoversSource) Category() domain.Category {
	return domain.CategoryMovers
}

type mover struct {
	symbol  string
	current float64
	pct     float64
}

// Fetch quotes the whole watchlist and keeps symbols at or above the surge
// threshold, largest move first. A day with no surging stock is a successful
// fetch with zero entries.
func (s *MoversSource) Fetch(ctx context.Context) domain.FetchResult {
	if s.quotes == nil {
		return domain.Failed(domain.CategoryMovers, "quote provider not configured")
	}

	var (
		movers  []mover
		failed  int
		lastErr error
	)
	for _, symbol := range s.watchlist {
		current, _, pct, err := s.quotes.Quote(ctx, symbol)
		if err != nil {
			failed++
			lastErr = err
			if s.logger != nil {
				s.logger.Debug("watchlist quote failed", "symbol", symbol, "error", err)
			}
			continue
		}
		if pct >= s.threshold {
			movers = append(movers, mover{symbol: symbol, current: current, pct: pct})
		}
	}

	sort.Slice(movers, func(i, j int) bool { return movers[i].pct > movers[j].pct })

	published := s.now().UTC().Format(time.RFC3339)
	entries := make([]domain.RawEntry, 0, len(movers))
	for _, m := range movers {
		entries = append(entries, domain.RawEntry{
			Title:     fmt.Sprintf("%s surged %+.2f%%", m.symbol, m.pct),
			Body:      fmt.Sprintf("%s trading at %.2f, up %+.2f%% on the day.", m.symbol, m.current, m.pct),
			Link:      quoteLink(m.symbol),
			Published: published,
			Source:    "Finnhub",
		})
	}

	switch {
	case len(s.watchlist) == 0:
		return domain.FetchResult{Category: domain.CategoryMovers, Status: domain.StatusOK}
	case failed == len(s.watchlist):
		return domain.Failed(domain.CategoryMovers, fmt.Sprintf("all quotes failed: %v", lastErr))
	case failed > 0:
		return domain.FetchResult{Category: domain.CategoryMovers, Entries: entries, Status: domain.StatusPartial,
			Reason: fmt.Sprintf("%d of %d quotes failed", failed, len(s.watchlist))}
	default:
		return domain.FetchResult{Category: domain.CategoryMovers, Entries: entries, Status: domain.StatusOK}
	}
}

func quoteLink(symbol string) string {
	return "https://finance.yahoo.com/quote/" + strings.ToUpper(symbol)
}
