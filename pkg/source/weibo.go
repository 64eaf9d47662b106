package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	weiboHotURL      = "https://s.weibo.com/top/summary?cate=realtimehot"
	weiboMobileAPI   = "https://m.weibo.cn/api/container/getIndex"
	weiboContainerID = "106003type=25&t=3&disable_hot=1&filter_type=realtimehot"
)

// Weibo fetches the Weibo realtime hot-search board.
//
// The desktop board HTML is the primary path; the mobile container API is
// the fallback when the board serves an empty or login-gated page.
type Weibo struct {
	client *http.Client
	cookie string
}

// NewWeibo creates a Weibo fetcher. The cookie is optional and only needed
// when the board starts redirecting anonymous requests to a login wall.
func NewWeibo(cookie string) *Weibo {
	return &Weibo{
		client: &http.Client{Timeout: 30 * time.Second},
		cookie: cookie,
	}
}

func (w *Weibo) Platform() Platform { return PlatformWeibo }

// Weight reflects Weibo's outsized share of public-opinion traffic.
func (w *Weibo) Weight() float64 { return 0.9 }

func (w *Weibo) FetchTrending(ctx context.Context, limit int) ([]HeatItem, error) {
	items, err := w.fetchBoard(ctx)
	if err != nil || len(items) == 0 {
		items, err = w.fetchMobileAPI(ctx)
		if err != nil {
			return nil, err
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (w *Weibo) fetchBoard(ctx context.Context) ([]HeatItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weiboHotURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create weibo request: %w", err)
	}
	w.setHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weibo board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weibo board status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse weibo board: %w", err)
	}
	return parseWeiboBoard(doc), nil
}

// parseWeiboBoard extracts hot-search rows from the board table. Rows that
// are missing a keyword link (header rows, ads) are skipped.
func parseWeiboBoard(doc *goquery.Document) []HeatItem {
	now := time.Now().UTC()
	var items []HeatItem

	doc.Find("#pl_top_realtimehot table tr, table.table tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		rank := 0
		if txt := strings.TrimSpace(cells.Eq(0).Text()); txt != "" {
			fmt.Sscanf(txt, "%d", &rank)
		}

		link := cells.Eq(1).Find("a").First()
		keyword := strings.TrimSpace(link.Text())
		if keyword == "" {
			return
		}

		itemURL, _ := link.Attr("href")
		if itemURL != "" && !strings.HasPrefix(itemURL, "http") {
			itemURL = "https://s.weibo.com" + itemURL
		}

		heat := parseHeatText(strings.TrimSpace(cells.Eq(1).Find("span").First().Text()))

		tag := ""
		if cls, ok := cells.Eq(1).Find("i").First().Attr("class"); ok {
			switch {
			case strings.Contains(cls, "icon-txt-new"):
				tag = "新"
			case strings.Contains(cls, "icon-txt-hot"):
				tag = "热"
			case strings.Contains(cls, "icon-txt-fei"):
				tag = "沸"
			case strings.Contains(cls, "icon-txt-bao"):
				tag = "爆"
			}
		}

		items = append(items, HeatItem{
			Keyword:    keyword,
			HeatScore:  heat,
			Platform:   PlatformWeibo,
			ObservedAt: now,
			Metadata: map[string]any{
				"rank": rank,
				"tag":  tag,
				"url":  itemURL,
			},
		})
	})

	return items
}

type weiboContainerResp struct {
	Ok   int `json:"ok"`
	Data struct {
		Cards []struct {
			CardGroup []struct {
				Desc     string          `json:"desc"`
				DescExtr json.RawMessage `json:"desc_extr"`
				Scheme   string          `json:"scheme"`
			} `json:"card_group"`
		} `json:"cards"`
	} `json:"data"`
}

func (w *Weibo) fetchMobileAPI(ctx context.Context) ([]HeatItem, error) {
	url := weiboMobileAPI + "?containerid=" + weiboContainerID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create weibo api request: %w", err)
	}
	w.setHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weibo api: %w", err)
	}
	defer resp.Body.Close()

	var payload weiboContainerResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weibo api: %w", err)
	}
	if payload.Ok != 1 {
		return nil, fmt.Errorf("weibo api not ok")
	}

	now := time.Now().UTC()
	var items []HeatItem

	for _, card := range payload.Data.Cards {
		for _, entry := range card.CardGroup {
			if entry.Desc == "" {
				continue
			}

			// desc_extr is either a bare number or a display string
			// like "233万", depending on the board position.
			heat := 0.0
			if len(entry.DescExtr) > 0 {
				var n float64
				if err := json.Unmarshal(entry.DescExtr, &n); err == nil {
					heat = n
				} else {
					var s string
					if err := json.Unmarshal(entry.DescExtr, &s); err == nil {
						heat = parseHeatText(s)
					}
				}
			}

			items = append(items, HeatItem{
				Keyword:    entry.Desc,
				HeatScore:  heat,
				Platform:   PlatformWeibo,
				ObservedAt: now,
				Metadata: map[string]any{
					"rank": len(items) + 1,
					"url":  entry.Scheme,
				},
			})
		}
	}

	return items, nil
}

func (w *Weibo) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Referer", "https://weibo.com/")
	if w.cookie != "" {
		req.Header.Set("Cookie", w.cookie)
	}
}
