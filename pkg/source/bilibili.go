package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	bilibiliHotwordAPI  = "https://s.search.bilibili.com/main/hotword"
	bilibiliTrendingAPI = "https://api.bilibili.com/x/web-interface/search/square"
)

// Bilibili fetches the Bilibili hot-search keywords.
//
// The hotword API carries no native heat value, so heat is estimated from
// the list position: the top slot of an n-entry list is worth n*10000.
type Bilibili struct {
	client *http.Client
}

// NewBilibili creates a Bilibili fetcher.
func NewBilibili() *Bilibili {
	return &Bilibili{client: &http.Client{Timeout: 30 * time.Second}}
}

func (b *Bilibili) Platform() Platform { return PlatformBilibili }

// Weight reflects Bilibili's younger, niche-heavy audience.
func (b *Bilibili) Weight() float64 { return 0.8 }

func (b *Bilibili) FetchTrending(ctx context.Context, limit int) ([]HeatItem, error) {
	items, err := b.fetchHotword(ctx)
	if err != nil || len(items) == 0 {
		items, err = b.fetchTrendingSquare(ctx, limit)
		if err != nil {
			return nil, err
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type bilibiliHotwordResp struct {
	Code int `json:"code"`
	List []struct {
		Keyword  string `json:"keyword"`
		ShowName string `json:"show_name"`
		Icon     string `json:"icon"`
	} `json:"list"`
}

func (b *Bilibili) fetchHotword(ctx context.Context) ([]HeatItem, error) {
	var payload bilibiliHotwordResp
	if err := b.getJSON(ctx, bilibiliHotwordAPI, &payload); err != nil {
		return nil, err
	}
	if payload.Code != 0 {
		return nil, fmt.Errorf("bilibili hotword code %d", payload.Code)
	}

	now := time.Now().UTC()
	total := len(payload.List)
	var items []HeatItem

	for i, entry := range payload.List {
		if entry.Keyword == "" {
			continue
		}
		items = append(items, HeatItem{
			Keyword:    entry.Keyword,
			HeatScore:  float64((total - i) * 10_000),
			Platform:   PlatformBilibili,
			ObservedAt: now,
			Metadata: map[string]any{
				"rank":      i + 1,
				"show_name": entry.ShowName,
				"icon":      entry.Icon,
				"url":       "https://search.bilibili.com/all?keyword=" + url.QueryEscape(entry.Keyword),
			},
		})
	}

	return items, nil
}

type bilibiliSquareResp struct {
	Code int `json:"code"`
	Data struct {
		Trending struct {
			List []struct {
				Keyword   string  `json:"keyword"`
				ShowName  string  `json:"show_name"`
				HeatScore float64 `json:"heat_score"`
				Icon      string  `json:"icon"`
			} `json:"list"`
		} `json:"trending"`
	} `json:"data"`
}

func (b *Bilibili) fetchTrendingSquare(ctx context.Context, limit int) ([]HeatItem, error) {
	var payload bilibiliSquareResp
	if err := b.getJSON(ctx, fmt.Sprintf("%s?limit=%d", bilibiliTrendingAPI, limit), &payload); err != nil {
		return nil, err
	}
	if payload.Code != 0 {
		return nil, fmt.Errorf("bilibili trending code %d", payload.Code)
	}

	now := time.Now().UTC()
	list := payload.Data.Trending.List
	var items []HeatItem

	for i, entry := range list {
		keyword := entry.Keyword
		if keyword == "" {
			keyword = entry.ShowName
		}
		if keyword == "" {
			continue
		}

		heat := entry.HeatScore
		if heat == 0 {
			heat = float64((len(list) - i) * 10_000)
		}

		items = append(items, HeatItem{
			Keyword:    keyword,
			HeatScore:  heat,
			Platform:   PlatformBilibili,
			ObservedAt: now,
			Metadata: map[string]any{
				"rank":      i + 1,
				"show_name": entry.ShowName,
				"icon":      entry.Icon,
				"url":       "https://search.bilibili.com/all?keyword=" + url.QueryEscape(keyword),
			},
		})
	}

	return items, nil
}

func (b *Bilibili) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create bilibili request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.bilibili.com/")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch bilibili: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bilibili status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode bilibili: %w", err)
	}
	return nil
}
