package source

import (
	"context"
	"time"
)

// Platform identifies which platform a hot item came from.
type Platform string

const (
	PlatformWeibo    Platform = "weibo"
	PlatformZhihu    Platform = "zhihu"
	PlatformBilibili Platform = "bilibili"
	PlatformRSS      Platform = "rss"
)

// HeatItem is the standardized hot-search entry produced by every fetcher.
// Items live for a single aggregation cycle and are never mutated after
// the fetcher returns them.
type HeatItem struct {
	Keyword    string         `json:"keyword"`
	HeatScore  float64        `json:"raw_heat_score"`
	Platform   Platform       `json:"platform"`
	ObservedAt time.Time      `json:"observed_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Fetcher is the interface every platform adapter must implement.
//
// FetchTrending returns the platform's current hot list, at most limit
// entries. A failing fetcher is isolated by the aggregator: its error
// never aborts the other platforms.
//
// Weight is an informational influence coefficient in [0, 1]. It is not
// folded into scoring.
type Fetcher interface {
	Platform() Platform
	FetchTrending(ctx context.Context, limit int) ([]HeatItem, error)
	Weight() float64
}

// AllPlatforms returns all known platform identifiers.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformWeibo,
		PlatformZhihu,
		PlatformBilibili,
		PlatformRSS,
	}
}
