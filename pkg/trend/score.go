package trend

import (
	"math"
	"regexp"
	"sort"
	"time"
)

// marketingPatterns flags keywords that look like commercial campaigns,
// product launches, endorsement pushes, shopping festivals or organized
// fan campaigns. Matching is case-insensitive and anchored at the start.
var marketingPatterns = []*regexp.Regexp{
	// commercial activity
	regexp.MustCompile(`(?i)^.*发布会$`),
	regexp.MustCompile(`(?i)^.*新品.*`),
	regexp.MustCompile(`(?i)^.*代言.*`),
	regexp.MustCompile(`(?i)^.*官宣.*`),
	regexp.MustCompile(`(?i)^.*预售.*`),
	regexp.MustCompile(`(?i)^.*大促.*`),
	regexp.MustCompile(`(?i)^.*折扣.*`),
	regexp.MustCompile(`(?i)^.*满减.*`),

	// shopping festivals
	regexp.MustCompile(`(?i)^618.*`),
	regexp.MustCompile(`(?i)^.*618$`),
	regexp.MustCompile(`(?i)^双十一.*`),
	regexp.MustCompile(`(?i)^.*双十一$`),
	regexp.MustCompile(`(?i)^双11.*`),
	regexp.MustCompile(`(?i)^.*双11$`),
	regexp.MustCompile(`(?i)^双十二.*`),
	regexp.MustCompile(`(?i)^.*双十二$`),

	// fan campaigns
	regexp.MustCompile(`(?i)^.*生日快乐$`),
	regexp.MustCompile(`(?i)^.*应援.*`),
	regexp.MustCompile(`(?i)^.*打榜.*`),
	regexp.MustCompile(`(?i)^.*超话.*`),
	regexp.MustCompile(`(?i)^.*出道.*周年`),

	// branded hashtags
	regexp.MustCompile(`(?i)^#.*品牌.*#$`),
}

// Breakdown exposes every input of the RealScore formula for audit.
type Breakdown struct {
	BaseHeat           float64 `json:"base_heat"`
	PlatformMultiplier float64 `json:"platform_multiplier"`
	LongevityFactor    float64 `json:"longevity_factor"`
	MarketingPenalty   float64 `json:"marketing_penalty"`
}

// Scored is a Merged trend with its objectivity-weighted score attached.
type Scored struct {
	Merged
	RealScore   float64   `json:"real_score"`
	Breakdown   Breakdown `json:"score_breakdown"`
	IsMarketing bool      `json:"is_marketing"`
}

// Scorer computes RealScore, the objectivity-weighted hotness score:
//
//	RealScore = heat × M(platforms) × L(duration) × (1 − marketing penalty)
//
// Cross-platform corroboration is rewarded, single-source spikes are
// discounted as likely inauthentic, sustained presence earns a sub-linear
// bonus and suspected marketing content is penalized. Score is a pure
// function of its inputs.
type Scorer struct{}

// NewScorer creates a scorer.
func NewScorer() *Scorer { return &Scorer{} }

// PlatformMultiplier rewards cross-platform corroboration: a single
// platform is discounted to 0.3, two platforms are the cross-validated
// baseline and each further platform multiplies by 1.5, capped at 5.
func (s *Scorer) PlatformMultiplier(platformCount int) float64 {
	switch {
	case platformCount <= 0:
		return 0
	case platformCount == 1:
		return 0.3
	case platformCount == 2:
		return 1.0
	default:
		return math.Min(math.Pow(1.5, float64(platformCount-2)), 5.0)
	}
}

// LongevityFactor rewards sustained presence: log2(daysActive+1), where
// daysActive counts the calendar days from first to last sighting
// inclusive (same day ⇒ 1 ⇒ factor 1.0). Missing or inverted timestamps
// degrade the factor to the neutral 1.0 instead of failing the item.
func (s *Scorer) LongevityFactor(firstSeen, lastSeen time.Time) float64 {
	if firstSeen.IsZero() || lastSeen.IsZero() || lastSeen.Before(firstSeen) {
		return 1.0
	}
	daysActive := int(lastSeen.Sub(firstSeen).Hours()/24) + 1
	return math.Log2(float64(daysActive) + 1)
}

// MarketingPenalty returns 0.8 for explicitly flagged items, 0.5 for
// keywords matching the marketing pattern set, 0 otherwise.
func (s *Scorer) MarketingPenalty(keyword string, flagged bool) float64 {
	if flagged {
		return 0.8
	}
	for _, p := range marketingPatterns {
		if p.MatchString(keyword) {
			return 0.5
		}
	}
	return 0
}

// Score computes the RealScore for one merged trend. flagged marks items
// already known to be marketing content. Scoring never fails: malformed
// inputs degrade individual factors instead.
func (s *Scorer) Score(m Merged, flagged bool) Scored {
	breakdown := Breakdown{
		BaseHeat:           m.HeatScore,
		PlatformMultiplier: s.PlatformMultiplier(m.PlatformCount),
		LongevityFactor:    s.LongevityFactor(m.FirstSeen, m.LastSeen),
		MarketingPenalty:   s.MarketingPenalty(m.Keyword, flagged),
	}

	real := m.HeatScore *
		breakdown.PlatformMultiplier *
		breakdown.LongevityFactor *
		(1 - breakdown.MarketingPenalty)

	return Scored{
		Merged:      m,
		RealScore:   round2(real),
		Breakdown:   breakdown,
		IsMarketing: flagged || breakdown.MarketingPenalty > 0,
	}
}

// ProcessAll scores every trend and returns them ordered by RealScore
// descending, ties broken by keyword for determinism. Re-running on
// unchanged input yields identical output.
func (s *Scorer) ProcessAll(trends []Merged) []Scored {
	out := make([]Scored, 0, len(trends))
	for _, m := range trends {
		out = append(out, s.Score(m, false))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RealScore != out[j].RealScore {
			return out[i].RealScore > out[j].RealScore
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
