package source

import (
	"log/slog"

	"IntelDigest/internal/config"
	"IntelDigest/internal/domain"
)

// Relevance predicates per category. Deliberately plain substring matching;
// anything smarter belongs upstream in feed selection.
var (
	energyKeywords = []string{"energy", "power", "electricity", "price", "supply", "grid", "policy"}
	goldKeywords   = []string{"gold", "precious metal", "bullion", "mining", "copper"}
	oilKeywords    = []string{"oil", "crude", "wti", "brent"}
	milKeywords    = []string{"military", "defense", "pentagon", "ukraine", "nato", "army"}
	spaceKeywords  = []string{"spacex", "starlink", "launch", "contract", "aerospace", "satellite", "rocket", "space"}
	fedKeywords    = []string{"fed", "federal reserve", "fomc", "interest rate", "monetary policy", "powell"}
)

// NewEnergySource covers energy / power / electricity news.
func NewEnergySource(feeds config.FeedsConfig, fetcher *FeedFetcher, maxItems int, logger *slog.Logger) *RSSSource {
	return NewRSSSource(domain.CategoryEnergy, []Group{
		{URLs: feeds.Energy, Keywords: energyKeywords, Window: WindowToday},
	}, fetcher, maxItems, logger)
}

// NewCommoditiesSource covers gold, oil, and military headlines. Gold keeps a
// strict today window; oil and military accept yesterday too, since those
// publishers' timezones would otherwise empty the sections.
func NewCommoditiesSource(feeds config.FeedsConfig, fetcher *FeedFetcher, maxItems int, logger *slog.Logger) *RSSSource {
	return NewRSSSource(domain.CategoryCommodities, []Group{
		{URLs: feeds.Gold, Keywords: goldKeywords, Window: WindowToday},
		{URLs: feeds.Oil, Keywords: oilKeywords, Window: WindowTodayOrYesterday},
		{URLs: feeds.Military, Keywords: milKeywords, Window: WindowTodayOrYesterday},
	}, fetcher, maxItems, logger)
}

// NewSpaceSource covers commercial spaceflight news.
func NewSpaceSource(feeds config.FeedsConfig, fetcher *FeedFetcher, maxItems int, logger *slog.Logger) *RSSSource {
	return NewRSSSource(domain.CategorySpace, []Group{
		{URLs: feeds.Space, Keywords: spaceKeywords, Window: WindowToday},
	}, fetcher, maxItems, logger)
}

// NewFedSource covers central-bank signals, ordering official releases ahead
// of press coverage.
func NewFedSource(feeds config.FeedsConfig, fetcher *FeedFetcher, maxItems int, logger *slog.Logger) *RSSSource {
	return NewRSSSource(domain.CategoryFed, []Group{
		{URLs: feeds.Fed, Keywords: fedKeywords, Window: WindowToday, OfficialHost: "federalreserve.gov"},
	}, fetcher, maxItems, logger)
}
