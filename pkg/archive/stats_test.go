package archive

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBurstScoreSingleAppearance(t *testing.T) {
	// 1 × 0.3 × 1 × 1.0
	if got := BurstScore(1, 1, 1); got != 0.30 {
		t.Errorf("BurstScore(1,1,1) = %v, want 0.30", got)
	}
}

func TestBurstScore(t *testing.T) {
	tests := []struct {
		name                 string
		total, days, lifespan int
		want                 float64
	}{
		{"zero days", 5, 0, 1, 0},
		{"two days", 6, 2, 2, 10.8},          // 6 × 0.6 × 3 × 1.0
		{"viral week", 20, 5, 5, 80.0},       // 20 × 1.0 × 4 × 1.0
		{"month span", 20, 5, 20, 64.0},      // 20 × 1.0 × 4 × 0.8
		{"two month span", 20, 5, 45, 40.0},  // 20 × 1.0 × 4 × 0.5
		{"fixture span", 20, 5, 100, 24.0},   // 20 × 1.0 × 4 × 0.3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BurstScore(tt.total, tt.days, tt.lifespan); got != tt.want {
				t.Errorf("BurstScore(%d,%d,%d) = %v, want %v", tt.total, tt.days, tt.lifespan, got, tt.want)
			}
		})
	}
}

func TestDaysWeightDecay(t *testing.T) {
	// Beyond ten days the weight is 1/log_5(d), strictly below 1.
	d25 := daysWeight(25)
	want := 1.0 / (math.Log(25) / math.Log(5))
	if math.Abs(d25-want) > 1e-9 {
		t.Errorf("daysWeight(25) = %v, want %v", d25, want)
	}
	if daysWeight(11) >= daysWeight(10) {
		t.Error("weight must drop past the ten-day plateau")
	}
}

func TestAggregateGroupsByExactTitle(t *testing.T) {
	items := []HotItem{
		{Title: "某地突发山洪", Date: "2023-07-01"},
		{Title: "某地突发山洪", Date: "2023-07-01"},
		{Title: "某地突发山洪", Date: "2023-07-02"},
		{Title: "另一件事", Date: "2023-07-01"},
	}

	stats := Aggregate(items, AggregateOptions{FilterDenylist: false, SortBy: SortByTotal})
	if len(stats) != 2 {
		t.Fatalf("got %d keywords, want 2", len(stats))
	}

	flood := stats[0]
	if flood.Keyword != "某地突发山洪" {
		t.Fatalf("top keyword = %q", flood.Keyword)
	}
	if flood.TotalAppearances != 3 || flood.DaysOnList != 2 {
		t.Errorf("total=%d days=%d, want 3/2", flood.TotalAppearances, flood.DaysOnList)
	}
	if flood.FirstSeen != "2023-07-01" || flood.LastSeen != "2023-07-02" {
		t.Errorf("span %s..%s", flood.FirstSeen, flood.LastSeen)
	}
	if flood.PeakDate != "2023-07-01" || flood.PeakIntensity != 2 {
		t.Errorf("peak %s/%d, want 2023-07-01/2", flood.PeakDate, flood.PeakIntensity)
	}
	if flood.AvgPerDay != 1.5 {
		t.Errorf("AvgPerDay = %v, want 1.5", flood.AvgPerDay)
	}
	if flood.LifespanDays != 2 {
		t.Errorf("LifespanDays = %d, want 2", flood.LifespanDays)
	}
}

func TestAggregatePeakTieBreaksEarliest(t *testing.T) {
	items := []HotItem{
		{Title: "话题", Date: "2023-07-03"},
		{Title: "话题", Date: "2023-07-01"},
	}

	stats := Aggregate(items, AggregateOptions{FilterDenylist: false})
	if stats[0].PeakDate != "2023-07-01" {
		t.Errorf("PeakDate = %s, want the earliest of tied dates", stats[0].PeakDate)
	}
}

func TestAggregateFiltersDenylist(t *testing.T) {
	items := []HotItem{
		{Title: "王者荣耀内测", Date: "2023-07-01"},
		{Title: "某地突发山洪", Date: "2023-07-01"},
	}

	stats := Aggregate(items, DefaultAggregateOptions())
	if len(stats) != 1 {
		t.Fatalf("got %d keywords, want 1 after denylist filter", len(stats))
	}
	if stats[0].Keyword != "某地突发山洪" {
		t.Errorf("surviving keyword = %q", stats[0].Keyword)
	}

	unfiltered := Aggregate(items, AggregateOptions{FilterDenylist: false})
	if len(unfiltered) != 2 {
		t.Errorf("got %d keywords unfiltered, want 2", len(unfiltered))
	}
}

func TestAggregateSortOrders(t *testing.T) {
	items := []HotItem{
		// Burst winner: concentrated two-day event.
		{Title: "爆发事件", Date: "2023-07-01"},
		{Title: "爆发事件", Date: "2023-07-01"},
		{Title: "爆发事件", Date: "2023-07-02"},
		{Title: "爆发事件", Date: "2023-07-02"},
		// Days winner: appears once a day over a long stretch.
		{Title: "常驻话题", Date: "2023-07-01"},
		{Title: "常驻话题", Date: "2023-07-05"},
		{Title: "常驻话题", Date: "2023-07-10"},
	}

	byBurst := Aggregate(items, AggregateOptions{FilterDenylist: false, SortBy: SortByBurst})
	if byBurst[0].Keyword != "爆发事件" {
		t.Errorf("burst sort top = %q, want 爆发事件", byBurst[0].Keyword)
	}

	byDays := Aggregate(items, AggregateOptions{FilterDenylist: false, SortBy: SortByDays})
	if byDays[0].Keyword != "常驻话题" {
		t.Errorf("days sort top = %q, want 常驻话题", byDays[0].Keyword)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	items := []HotItem{
		{Title: "甲", Date: "2023-07-01"},
		{Title: "乙", Date: "2023-07-01"},
		{Title: "丙", Date: "2023-07-02"},
	}

	first := Aggregate(items, AggregateOptions{FilterDenylist: false})
	second := Aggregate(items, AggregateOptions{FilterDenylist: false})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Aggregate not deterministic (-first +second):\n%s", diff)
	}
}

func TestLifespanDays(t *testing.T) {
	tests := []struct {
		first, last string
		want        int
	}{
		{"2023-07-01", "2023-07-01", 1},
		{"2023-07-01", "2023-07-03", 3},
		{"bad", "2023-07-03", 1},
		{"2023-07-05", "2023-07-01", 1}, // inverted degrades to 1
	}

	for _, tt := range tests {
		if got := lifespanDays(tt.first, tt.last); got != tt.want {
			t.Errorf("lifespanDays(%q, %q) = %d, want %d", tt.first, tt.last, got, tt.want)
		}
	}
}
