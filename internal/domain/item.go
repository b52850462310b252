package domain

import "time"

// Category identifies one of the eight fixed topical buckets the pipeline
// always produces, even if empty.
type Category string

const (
	CategoryFigures     Category = "figures"
	CategoryEnergy      Category = "energy"
	CategoryCommodities Category = "commodities"
	CategoryAI          Category = "ai"
	CategorySpace       Category = "space"
	CategoryFed         Category = "fed"
	CategoryIndices     Category = "indices"
	CategoryMovers      Category = "movers"
)

// Categories is the closed category set in report order.
var Categories = []Category{
	CategoryFigures,
	CategoryEnergy,
	CategoryCommodities,
	CategoryAI,
	CategorySpace,
	CategoryFed,
	CategoryIndices,
	CategoryMovers,
}

// Title returns a human-readable section heading for the category.
func (c Category) Title() string {
	switch c {
	case CategoryFigures:
		return "Public Figures"
	case CategoryEnergy:
		return "Energy & Power"
	case CategoryCommodities:
		return "Gold, Oil & Defense"
	case CategoryAI:
		return "AI Products"
	case CategorySpace:
		return "Commercial Space"
	case CategoryFed:
		return "Federal Reserve"
	case CategoryIndices:
		return "Market Indices"
	case CategoryMovers:
		return "Top Movers"
	}
	return string(c)
}

// FetchStatus tags the outcome of one source adapter call.
type FetchStatus string

const (
	StatusOK      FetchStatus = "ok"
	StatusPartial FetchStatus = "partial"
	StatusFailed  FetchStatus = "failed"
)

// RawEntry is what an adapter extracts from one upstream record before
// normalization. Published stays unparsed text; the normalizer owns parsing.
type RawEntry struct {
	Title     string
	Body      string
	Link      string
	Published string
	Source    string
}

// FetchResult is the output of one adapter attempt. A failed result never
// carries entries; an empty entries slice with StatusOK means the source was
// reachable but had nothing relevant.
type FetchResult struct {
	Category Category
	Entries  []RawEntry
	Status   FetchStatus
	Reason   string
}

// Failed builds a failed result with a human-readable reason.
func Failed(cat Category, reason string) FetchResult {
	return FetchResult{Category: cat, Status: StatusFailed, Reason: reason}
}

// Item is the uniform unit the pipeline processes after normalization.
// OriginalBody is retained forever; summarization mutates Body only.
type Item struct {
	Category     Category
	Title        string
	Body         string
	OriginalBody string
	Link         string
	PublishedAt  time.Time // zero when the source date was unparseable
	Source       string
	IdentityKey  string
	Summarized   bool
}

// SourceStatus is the per-category observability record kept on the run result.
type SourceStatus struct {
	Status FetchStatus
	Reason string
}

// RunResult is the orchestrator's final artifact for one run. Items always
// holds all eight categories; categories that yielded nothing map to empty
// slices, never missing keys.
type RunResult struct {
	Items      map[Category][]Item
	Statuses   map[Category]SourceStatus
	HasContent bool
}
