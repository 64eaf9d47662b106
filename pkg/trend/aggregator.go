package trend

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"truetrend/pkg/source"
)

// DefaultFetchTimeout bounds a single platform fetch so one slow platform
// cannot stall a whole aggregation cycle.
const DefaultFetchTimeout = 30 * time.Second

var (
	// ErrInvalidLimit rejects non-positive item limits before any fetch.
	ErrInvalidLimit = errors.New("limit must be positive")
	// ErrUnknownPlatform rejects platforms with no registered fetcher.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Merged combines every platform observation for one canonicalized keyword
// within a single aggregation cycle. It is frozen after the merge pass.
type Merged struct {
	Keyword        string                             `json:"keyword"`
	Platforms      []source.Platform                  `json:"platforms"`
	PlatformCount  int                                `json:"platform_count"`
	HeatByPlatform map[source.Platform]float64        `json:"heat_by_platform"`
	HeatScore      float64                            `json:"raw_heat_score"`
	FirstSeen      time.Time                          `json:"first_seen"`
	LastSeen       time.Time                          `json:"last_seen"`
	Metadata       map[source.Platform]map[string]any `json:"metadata,omitempty"`
}

// Aggregator drives concurrent multi-platform fetches through the cache
// and merges same-keyword items. Each cycle owns its working set
// exclusively; the cache is the only state shared across cycles.
type Aggregator struct {
	cache        *Cache
	fetchers     []source.Fetcher
	fetchTimeout time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewAggregator creates an aggregator over the given fetchers. Fetcher
// registration order fixes the platform iteration order during the merge,
// which keeps output deterministic for fixed fetcher output.
func NewAggregator(cache *Cache, fetchers []source.Fetcher, fetchTimeout time.Duration, log zerolog.Logger) *Aggregator {
	if cache == nil {
		cache = NewCache(0)
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Aggregator{
		cache:        cache,
		fetchers:     fetchers,
		fetchTimeout: fetchTimeout,
		log:          log,
		now:          time.Now,
	}
}

// Platforms returns the registered platforms in registration order.
func (a *Aggregator) Platforms() []source.Platform {
	out := make([]source.Platform, len(a.fetchers))
	for i, f := range a.fetchers {
		out[i] = f.Platform()
	}
	return out
}

// FetchAndMerge fetches every platform concurrently, merges same-keyword
// items and returns trends ordered by total heat descending, ties broken
// by earliest first-seen and then by keyword. A failing or timed-out
// platform contributes zero items without aborting the cycle.
func (a *Aggregator) FetchAndMerge(ctx context.Context, limitPerPlatform int, useCache bool) ([]Merged, error) {
	if limitPerPlatform <= 0 {
		return nil, ErrInvalidLimit
	}

	// One result slot per fetcher; no shared mutable state between
	// goroutines.
	results := make([][]source.HeatItem, len(a.fetchers))

	var g errgroup.Group
	for i, f := range a.fetchers {
		g.Go(func() error {
			items, err := a.fetchOne(ctx, f, limitPerPlatform, useCache)
			if err != nil {
				a.log.Warn().
					Str("platform", string(f.Platform())).
					Err(err).
					Msg("platform fetch failed, contributing zero items")
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	merged := a.merge(results)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].HeatScore != merged[j].HeatScore {
			return merged[i].HeatScore > merged[j].HeatScore
		}
		if !merged[i].FirstSeen.Equal(merged[j].FirstSeen) {
			return merged[i].FirstSeen.Before(merged[j].FirstSeen)
		}
		return merged[i].Keyword < merged[j].Keyword
	})

	return merged, nil
}

// FetchPlatform is the direct cache-aware single-platform path.
func (a *Aggregator) FetchPlatform(ctx context.Context, platform source.Platform, limit int, useCache bool) ([]source.HeatItem, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	for _, f := range a.fetchers {
		if f.Platform() == platform {
			return a.fetchOne(ctx, f, limit, useCache)
		}
	}
	return nil, ErrUnknownPlatform
}

func (a *Aggregator) fetchOne(ctx context.Context, f source.Fetcher, limit int, useCache bool) ([]source.HeatItem, error) {
	fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	items, err := a.cache.GetOrFetch(fctx, f.Platform(), func(c context.Context) ([]source.HeatItem, error) {
		return f.FetchTrending(c, limit)
	}, useCache)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (a *Aggregator) merge(results [][]source.HeatItem) []Merged {
	byKey := make(map[string]*Merged)
	var order []string

	for i := range results {
		platform := a.fetchers[i].Platform()
		for _, item := range results[i] {
			key := NormalizeKeyword(item.Keyword)

			m, ok := byKey[key]
			if !ok {
				m = &Merged{
					Keyword:        item.Keyword, // first literal spelling wins
					HeatByPlatform: make(map[source.Platform]float64),
					Metadata:       make(map[source.Platform]map[string]any),
					FirstSeen:      item.ObservedAt,
				}
				byKey[key] = m
				order = append(order, key)
			}

			if _, seen := m.HeatByPlatform[platform]; !seen {
				m.Platforms = append(m.Platforms, platform)
			}
			m.HeatByPlatform[platform] += item.HeatScore
			m.HeatScore += item.HeatScore

			if item.ObservedAt.Before(m.FirstSeen) {
				m.FirstSeen = item.ObservedAt
			}
			if item.Metadata != nil {
				m.Metadata[platform] = item.Metadata
			}
		}
	}

	now := a.now().UTC()
	out := make([]Merged, 0, len(order))
	for _, key := range order {
		m := byKey[key]
		m.PlatformCount = len(m.Platforms)
		m.LastSeen = now
		out = append(out, *m)
	}
	return out
}
