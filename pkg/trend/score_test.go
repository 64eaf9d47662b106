package trend

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"truetrend/pkg/source"
)

func TestPlatformMultiplier(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		count int
		want  float64
	}{
		{0, 0},
		{1, 0.3},
		{2, 1.0},
		{3, 1.5},
		{4, 2.25},
		{10, 5.0}, // 1.5^8 > 5, capped
	}

	for _, tt := range tests {
		if got := s.PlatformMultiplier(tt.count); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PlatformMultiplier(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestPlatformMultiplierMonotonic(t *testing.T) {
	s := NewScorer()
	prev := s.PlatformMultiplier(2)
	for n := 3; n <= 20; n++ {
		cur := s.PlatformMultiplier(n)
		if cur < prev {
			t.Fatalf("PlatformMultiplier(%d) = %v < PlatformMultiplier(%d) = %v", n, cur, n-1, prev)
		}
		if cur > 5.0 {
			t.Fatalf("PlatformMultiplier(%d) = %v exceeds cap", n, cur)
		}
		prev = cur
	}
	if s.PlatformMultiplier(1) >= s.PlatformMultiplier(2) {
		t.Error("single platform must score below two platforms")
	}
}

func TestLongevityFactor(t *testing.T) {
	s := NewScorer()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		first time.Time
		last  time.Time
		want  float64
	}{
		{"same instant", base, base, 1.0},
		{"same day", base, base.Add(5 * time.Hour), 1.0},
		{"three day span", base, base.Add(48 * time.Hour), 2.0}, // log2(4)
		{"zero first", time.Time{}, base, 1.0},
		{"zero last", base, time.Time{}, 1.0},
		{"inverted", base, base.Add(-24 * time.Hour), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.LongevityFactor(tt.first, tt.last); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LongevityFactor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarketingPenalty(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name    string
		keyword string
		flagged bool
		want    float64
	}{
		{"flagged wins", "普通话题", true, 0.8},
		{"launch event", "华为发布会", false, 0.5},
		{"endorsement", "某明星代言官宣", false, 0.5},
		{"shopping festival", "双十一预售开启", false, 0.5},
		{"fan campaign", "为爱豆打榜", false, 0.5},
		{"618 prefix", "618大促攻略", false, 0.5},
		{"organic news", "某地突发地震", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.MarketingPenalty(tt.keyword, tt.flagged); got != tt.want {
				t.Errorf("MarketingPenalty(%q, %v) = %v, want %v", tt.keyword, tt.flagged, got, tt.want)
			}
		})
	}
}

func TestScoreEndToEnd(t *testing.T) {
	// Two platforms report 1000 and 1500 for the same keyword on the same
	// day with no marketing match: RealScore = 2500 × 1.0 × 1.0 × 1 = 2500.00.
	s := NewScorer()
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	m := Merged{
		Keyword:       "某地突发地震",
		Platforms:     []source.Platform{source.PlatformWeibo, source.PlatformZhihu},
		PlatformCount: 2,
		HeatByPlatform: map[source.Platform]float64{
			source.PlatformWeibo: 1000,
			source.PlatformZhihu: 1500,
		},
		HeatScore: 2500,
		FirstSeen: day,
		LastSeen:  day.Add(2 * time.Hour),
	}

	got := s.Score(m, false)
	if got.RealScore != 2500.00 {
		t.Errorf("RealScore = %v, want 2500.00", got.RealScore)
	}
	want := Breakdown{BaseHeat: 2500, PlatformMultiplier: 1.0, LongevityFactor: 1.0, MarketingPenalty: 0}
	if diff := cmp.Diff(want, got.Breakdown); diff != "" {
		t.Errorf("Breakdown mismatch (-want +got):\n%s", diff)
	}
	if got.IsMarketing {
		t.Error("organic keyword must not be flagged as marketing")
	}
}

func TestScoreMarketingFlagged(t *testing.T) {
	s := NewScorer()
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	m := Merged{Keyword: "新品预售", PlatformCount: 1, HeatScore: 1000, FirstSeen: day, LastSeen: day}

	got := s.Score(m, false)
	// 1000 × 0.3 × 1.0 × (1 − 0.5)
	if got.RealScore != 150.00 {
		t.Errorf("RealScore = %v, want 150.00", got.RealScore)
	}
	if !got.IsMarketing {
		t.Error("pattern-matched keyword must be flagged as marketing")
	}
}

func TestProcessAllIdempotent(t *testing.T) {
	s := NewScorer()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	input := []Merged{
		{Keyword: "乙话题", PlatformCount: 2, HeatScore: 800, FirstSeen: day, LastSeen: day},
		{Keyword: "甲话题", PlatformCount: 2, HeatScore: 800, FirstSeen: day, LastSeen: day},
		{Keyword: "丙话题", PlatformCount: 3, HeatScore: 500, FirstSeen: day, LastSeen: day},
	}

	first := s.ProcessAll(input)
	second := s.ProcessAll(input)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ProcessAll not idempotent (-first +second):\n%s", diff)
	}

	// Equal scores tie-break by keyword.
	if first[0].RealScore == first[1].RealScore && first[0].Keyword > first[1].Keyword {
		t.Errorf("tied scores out of keyword order: %q before %q", first[0].Keyword, first[1].Keyword)
	}
	for i := 1; i < len(first); i++ {
		if first[i].RealScore > first[i-1].RealScore {
			t.Errorf("scores not descending at %d: %v > %v", i, first[i].RealScore, first[i-1].RealScore)
		}
	}
}
