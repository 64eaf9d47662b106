package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL serves the day-indexed Weibo hot-search archive
// maintained at justjavac/weibo-trending-hot-search.
const DefaultBaseURL = "https://raw.githubusercontent.com/justjavac/weibo-trending-hot-search/master/raw"

const dateLayout = "2006-01-02"

// MinDate is the earliest day available in the public archive.
var MinDate = time.Date(2020, 11, 24, 0, 0, 0, 0, time.UTC)

var (
	// ErrBadDate rejects dates that are not YYYY-MM-DD.
	ErrBadDate = errors.New("date must be YYYY-MM-DD")
	// ErrDateOutOfRange rejects dates before the archive start or in the
	// future.
	ErrDateOutOfRange = errors.New("date outside the archive range")
)

// Provider supplies the day-indexed historical corpus. A day with no data
// returns an empty slice, not an error.
type Provider interface {
	FetchDay(ctx context.Context, date string) ([]HotItem, error)
}

// DayCache persists fetched day payloads so repeated range queries do not
// refetch the archive. Implemented by the SQLite store.
type DayCache interface {
	GetArchiveDay(ctx context.Context, date string) ([]HotItem, bool, error)
	SaveArchiveDay(ctx context.Context, date string, items []HotItem) error
}

// GitHubProvider fetches day files from the raw GitHub archive. Day
// payloads are cached through the optional DayCache and additionally held
// in memory for the life of the provider.
type GitHubProvider struct {
	client  *http.Client
	baseURL string
	cache   DayCache
	log     zerolog.Logger

	mu  sync.RWMutex
	mem map[string][]HotItem
}

// NewGitHubProvider creates a provider. An empty baseURL selects the
// public archive; cache may be nil.
func NewGitHubProvider(baseURL string, cache DayCache, log zerolog.Logger) *GitHubProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GitHubProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		cache:   cache,
		log:     log,
		mem:     make(map[string][]HotItem),
	}
}

// FetchDay returns one day's archived hot-search list. 404 days yield an
// empty result. Dates outside the archive range are rejected before any
// fetch.
func (g *GitHubProvider) FetchDay(ctx context.Context, date string) ([]HotItem, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	g.mu.RLock()
	items, ok := g.mem[date]
	g.mu.RUnlock()
	if ok {
		return items, nil
	}

	if g.cache != nil {
		items, ok, err := g.cache.GetArchiveDay(ctx, date)
		if err != nil {
			g.log.Warn().Str("date", date).Err(err).Msg("archive day cache read failed")
		} else if ok {
			g.remember(date, items)
			return items, nil
		}
	}

	items, err := g.fetchRemote(ctx, date)
	if err != nil {
		return nil, err
	}

	g.remember(date, items)
	if g.cache != nil {
		if err := g.cache.SaveArchiveDay(ctx, date, items); err != nil {
			g.log.Warn().Str("date", date).Err(err).Msg("archive day cache write failed")
		}
	}
	return items, nil
}

func (g *GitHubProvider) remember(date string, items []HotItem) {
	g.mu.Lock()
	g.mem[date] = items
	g.mu.Unlock()
}

func (g *GitHubProvider) fetchRemote(ctx context.Context, date string) ([]HotItem, error) {
	url := fmt.Sprintf("%s/%s.json", g.baseURL, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create archive request %s: %w", date, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch archive day %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []HotItem{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive day %s status %d", date, resp.StatusCode)
	}

	var raw []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode archive day %s: %w", date, err)
	}

	items := make([]HotItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, HotItem{Title: r.Title, Date: date, URL: r.URL})
	}
	return items, nil
}

// ValidateDate checks format and archive range before any fetch happens.
func ValidateDate(date string) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ErrBadDate
	}
	if d.Before(MinDate) || d.After(time.Now().UTC()) {
		return ErrDateOutOfRange
	}
	return nil
}

// FetchRange collects every day in [start, end] inclusive. Individual
// failed days are skipped so a long range query stays best-effort; range
// bounds themselves are validated up front.
func FetchRange(ctx context.Context, p Provider, start, end string) ([]HotItem, error) {
	if err := ValidateDate(start); err != nil {
		return nil, err
	}
	if err := ValidateDate(end); err != nil {
		return nil, err
	}

	startDate, _ := time.Parse(dateLayout, start)
	endDate, _ := time.Parse(dateLayout, end)
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end before start", ErrDateOutOfRange)
	}

	var all []HotItem
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		items, err := p.FetchDay(ctx, d.Format(dateLayout))
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

// FetchMonth collects one calendar month, clamped to the archive range.
func FetchMonth(ctx context.Context, p Provider, year, month int) ([]HotItem, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrDateOutOfRange, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return fetchClamped(ctx, p, start, end)
}

// FetchYear collects one calendar year, clamped to the archive range.
func FetchYear(ctx context.Context, p Provider, year int) ([]HotItem, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return fetchClamped(ctx, p, start, end)
}

func fetchClamped(ctx context.Context, p Provider, start, end time.Time) ([]HotItem, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if start.Before(MinDate) {
		start = MinDate
	}
	if end.After(today) {
		end = today
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: no archived days in range", ErrDateOutOfRange)
	}
	return FetchRange(ctx, p, start.Format(dateLayout), end.Format(dateLayout))
}
