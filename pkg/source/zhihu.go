package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const zhihuHotAPI = "https://www.zhihu.com/api/v3/feed/topstory/hot-lists/total"

// Zhihu fetches the Zhihu hot list.
type Zhihu struct {
	client *http.Client
	cookie string
}

// NewZhihu creates a Zhihu fetcher. The cookie is optional.
func NewZhihu(cookie string) *Zhihu {
	return &Zhihu{
		client: &http.Client{Timeout: 30 * time.Second},
		cookie: cookie,
	}
}

func (z *Zhihu) Platform() Platform { return PlatformZhihu }

// Weight is slightly below Weibo: Zhihu skews toward long-form discussion.
func (z *Zhihu) Weight() float64 { return 0.85 }

type zhihuHotResp struct {
	Data []struct {
		Target struct {
			ID      json.Number `json:"id"`
			Title   string      `json:"title"`
			Excerpt string      `json:"excerpt"`
		} `json:"target"`
		DetailText string `json:"detail_text"`
	} `json:"data"`
}

func (z *Zhihu) FetchTrending(ctx context.Context, limit int) ([]HeatItem, error) {
	url := fmt.Sprintf("%s?limit=%d&desktop=true", zhihuHotAPI, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create zhihu request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.zhihu.com/hot")
	if z.cookie != "" {
		req.Header.Set("Cookie", z.cookie)
	}

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch zhihu hot list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zhihu hot list status %d", resp.StatusCode)
	}

	var payload zhihuHotResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode zhihu hot list: %w", err)
	}

	now := time.Now().UTC()
	var items []HeatItem

	for i, entry := range payload.Data {
		if i >= limit {
			break
		}
		title := entry.Target.Title
		if title == "" {
			continue
		}

		questionID := entry.Target.ID.String()
		items = append(items, HeatItem{
			Keyword:    title,
			HeatScore:  parseHeatText(entry.DetailText),
			Platform:   PlatformZhihu,
			ObservedAt: now,
			Metadata: map[string]any{
				"rank":        i + 1,
				"excerpt":     entry.Target.Excerpt,
				"question_id": questionID,
				"url":         "https://www.zhihu.com/question/" + questionID,
			},
		})
	}

	return items, nil
}
