package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSFeed is a named RSS/Atom hot-list feed URL.
type RSSFeed struct {
	Name string
	URL  string
}

// RSS treats a set of RSS/Atom feeds as one additional platform, so that
// aggregator-style news portals without a dedicated API can still feed the
// merge. Feeds carry no native heat, so heat is derived from feed position.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
}

// NewRSS creates an RSS fetcher over the given feeds.
func NewRSS(feeds []RSSFeed) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

func (r *RSS) Platform() Platform { return PlatformRSS }

// Weight is conservative: feed curation varies too much to trust highly.
func (r *RSS) Weight() float64 { return 0.6 }

func (r *RSS) FetchTrending(ctx context.Context, limit int) ([]HeatItem, error) {
	var all []HeatItem
	var lastErr error

	for _, feed := range r.feeds {
		items, err := r.fetchFeed(ctx, feed, limit)
		if err != nil {
			lastErr = err
			continue
		}
		all = append(all, items...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feed RSSFeed, limit int) ([]HeatItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "truetrend/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	now := time.Now().UTC()
	entries := parsed.Items
	if len(entries) > limit {
		entries = entries[:limit]
	}

	var items []HeatItem
	for i, entry := range entries {
		if entry.Title == "" {
			continue
		}

		observed := now
		if entry.PublishedParsed != nil {
			observed = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			observed = entry.UpdatedParsed.UTC()
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		items = append(items, HeatItem{
			Keyword:    entry.Title,
			HeatScore:  float64((len(entries) - i) * 100),
			Platform:   PlatformRSS,
			ObservedAt: observed,
			Metadata: map[string]any{
				"rank":      i + 1,
				"feed_name": feed.Name,
				"url":       link,
			},
		})
	}

	return items, nil
}
