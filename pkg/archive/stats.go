package archive

import (
	"math"
	"sort"
	"time"
)

// HotItem is one archived hot-search entry. The corpus is supplied
// externally and items are never mutated.
type HotItem struct {
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
	URL   string `json:"url"`
}

// KeywordStats aggregates one surviving keyword's appearances over the
// queried range. A stats record lives for a single query.
type KeywordStats struct {
	Keyword          string         `json:"keyword"`
	TotalAppearances int            `json:"total_appearances"`
	DaysOnList       int            `json:"days_on_list"`
	DateCounts       map[string]int `json:"date_counts,omitempty"`
	FirstSeen        string         `json:"first_seen"`
	LastSeen         string         `json:"last_seen"`
	PeakDate         string         `json:"peak_date"`
	PeakIntensity    int            `json:"peak_intensity"`
	AvgPerDay        float64        `json:"avg_appearances_per_day"`
	LifespanDays     int            `json:"lifespan_days"`
	BurstScore       float64        `json:"burst_score"`
}

// SortBy selects the descending sort key for aggregated stats.
type SortBy string

const (
	SortByBurst SortBy = "burst"
	SortByTotal SortBy = "total"
	SortByDays  SortBy = "days"
)

// AggregateOptions controls filtering and ordering of archive stats.
type AggregateOptions struct {
	// FilterDenylist drops recurring-noise titles before grouping.
	FilterDenylist bool
	SortBy         SortBy
}

// DefaultAggregateOptions filters the denylist and sorts by burst score.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{FilterDenylist: true, SortBy: SortByBurst}
}

// Aggregate groups archive items by exact title (post-filter), computes
// per-keyword statistics and the burst score, and returns the result
// sorted descending by the chosen key, ties broken by keyword. The same
// corpus always yields the same output.
func Aggregate(items []HotItem, opts AggregateOptions) []KeywordStats {
	if opts.SortBy == "" {
		opts.SortBy = SortByBurst
	}

	byKeyword := make(map[string]*KeywordStats)
	var order []string

	for _, item := range items {
		if opts.FilterDenylist && Denylisted(item.Title) {
			continue
		}

		st, ok := byKeyword[item.Title]
		if !ok {
			st = &KeywordStats{
				Keyword:    item.Title,
				DateCounts: make(map[string]int),
				FirstSeen:  item.Date,
				LastSeen:   item.Date,
			}
			byKeyword[item.Title] = st
			order = append(order, item.Title)
		}

		st.TotalAppearances++
		st.DateCounts[item.Date]++
		if item.Date < st.FirstSeen {
			st.FirstSeen = item.Date
		}
		if item.Date > st.LastSeen {
			st.LastSeen = item.Date
		}
	}

	out := make([]KeywordStats, 0, len(order))
	for _, keyword := range order {
		st := byKeyword[keyword]
		st.DaysOnList = len(st.DateCounts)

		// Modal date; earliest wins on ties for reproducibility.
		dates := make([]string, 0, len(st.DateCounts))
		for d := range st.DateCounts {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		for _, d := range dates {
			if st.DateCounts[d] > st.PeakIntensity {
				st.PeakDate = d
				st.PeakIntensity = st.DateCounts[d]
			}
		}

		st.LifespanDays = lifespanDays(st.FirstSeen, st.LastSeen)
		st.AvgPerDay = round2(float64(st.TotalAppearances) / float64(st.DaysOnList))
		st.BurstScore = BurstScore(st.TotalAppearances, st.DaysOnList, st.LifespanDays)
		out = append(out, *st)
	}

	sort.SliceStable(out, func(i, j int) bool {
		var ki, kj float64
		switch opts.SortBy {
		case SortByTotal:
			ki, kj = float64(out[i].TotalAppearances), float64(out[j].TotalAppearances)
		case SortByDays:
			ki, kj = float64(out[i].DaysOnList), float64(out[j].DaysOnList)
		default:
			ki, kj = out[i].BurstScore, out[j].BurstScore
		}
		if ki != kj {
			return ki > kj
		}
		return out[i].Keyword < out[j].Keyword
	})

	return out
}

// BurstScore ranks short, concentrated viral events above long-running
// recurring topics:
//
//	burst = total × daysWeight(days) × (total/days) × lifespanPenalty(span)
//
// Rounded to 2 decimals; zero days on list yields 0.
func BurstScore(totalAppearances, daysOnList, lifespanDays int) float64 {
	if daysOnList == 0 {
		return 0
	}

	concentration := float64(totalAppearances) / float64(daysOnList)
	burst := float64(totalAppearances) *
		daysWeight(daysOnList) *
		concentration *
		lifespanPenalty(lifespanDays)
	return round2(burst)
}

// daysWeight peaks for 3-10 day events, the typical shape of a genuine
// viral story: one-day topics are likely ordinary news, while topics
// listed beyond ten days decay as recurring fixtures.
func daysWeight(daysOnList int) float64 {
	switch {
	case daysOnList == 1:
		return 0.3
	case daysOnList == 2:
		return 0.6
	case daysOnList <= 10:
		return 1.0
	default:
		return 1.0 / (math.Log(float64(daysOnList)) / math.Log(5))
	}
}

// lifespanPenalty discounts topics whose first-to-last span stretches far
// beyond a news cycle: those are intermittent fixtures, not events.
func lifespanPenalty(lifespanDays int) float64 {
	switch {
	case lifespanDays <= 14:
		return 1.0
	case lifespanDays <= 30:
		return 0.8
	case lifespanDays <= 60:
		return 0.5
	default:
		return 0.3
	}
}

func lifespanDays(first, last string) int {
	firstDate, err1 := time.Parse("2006-01-02", first)
	lastDate, err2 := time.Parse("2006-01-02", last)
	if err1 != nil || err2 != nil || lastDate.Before(firstDate) {
		return 1
	}
	return int(lastDate.Sub(firstDate).Hours()/24) + 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
