package trend

import (
	"math"
	"sort"
	"time"
)

// Phase labels one day of a keyword's life.
type Phase string

const (
	PhaseBirth   Phase = "birth"
	PhaseRise    Phase = "rise"
	PhasePeak    Phase = "peak"
	PhaseDecline Phase = "decline"
	PhaseDeath   Phase = "death"
)

// DailyHeat is a keyword's heat summed across platforms for one day.
type DailyHeat struct {
	Date time.Time `json:"date"`
	Heat float64   `json:"heat_score"`
}

// LifecyclePoint is a DailyHeat with its phase label.
type LifecyclePoint struct {
	DailyHeat
	Phase Phase `json:"phase"`
}

// Lifecycle is a keyword's full birth-to-death curve.
type Lifecycle struct {
	Keyword   string           `json:"keyword"`
	Points    []LifecyclePoint `json:"data_points"`
	BirthDate time.Time        `json:"birth_date"`
	PeakDate  time.Time        `json:"peak_date"`
	DeathDate *time.Time       `json:"death_date,omitempty"`
	TotalDays int              `json:"total_days"`
}

// SeriesPoint is one raw time-series observation for a keyword.
type SeriesPoint struct {
	Timestamp time.Time
	Heat      float64
}

// RollUpDaily sums heat per calendar day (UTC) across platforms and
// returns the days sorted ascending.
func RollUpDaily(points []SeriesPoint) []DailyHeat {
	byDay := make(map[time.Time]float64)
	for _, p := range points {
		day := p.Timestamp.UTC().Truncate(24 * time.Hour)
		byDay[day] += p.Heat
	}

	out := make([]DailyHeat, 0, len(byDay))
	for day, heat := range byDay {
		out = append(out, DailyHeat{Date: day, Heat: heat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SegmentLifecycle labels each point of an ascending daily series with its
// phase. The peak day is the day of maximum heat, earliest on ties. For
// index i over N points with date d the branches are evaluated in this
// exact order:
//
//	1. i < floor(0.2·N)  → birth
//	2. d before peak     → rise
//	3. d == peak         → peak
//	4. i > floor(0.8·N)  → death
//	5. otherwise         → decline
//
// The branch order is load-bearing: the birth and death index ranges are
// not mutually exclusive with the date branches for small N, so reordering
// changes the labels.
func SegmentLifecycle(points []DailyHeat) []LifecyclePoint {
	n := len(points)
	if n == 0 {
		return nil
	}

	peak := points[0].Date
	peakHeat := points[0].Heat
	for _, p := range points[1:] {
		if p.Heat > peakHeat {
			peak = p.Date
			peakHeat = p.Heat
		}
	}

	birthCut := int(math.Floor(0.2 * float64(n)))
	deathCut := int(math.Floor(0.8 * float64(n)))

	out := make([]LifecyclePoint, n)
	for i, p := range points {
		var phase Phase
		switch {
		case i < birthCut:
			phase = PhaseBirth
		case p.Date.Before(peak):
			phase = PhaseRise
		case p.Date.Equal(peak):
			phase = PhasePeak
		case i > deathCut:
			phase = PhaseDeath
		default:
			phase = PhaseDecline
		}
		out[i] = LifecyclePoint{DailyHeat: p, Phase: phase}
	}
	return out
}

// BuildLifecycleFromSeries rolls up a keyword's raw observations and
// segments the result.
func BuildLifecycleFromSeries(keyword string, points []SeriesPoint) Lifecycle {
	return BuildLifecycle(keyword, RollUpDaily(points))
}

// BuildLifecycle segments an ascending daily series into a full
// lifecycle. The death date is only reported for series longer than a
// single day.
func BuildLifecycle(keyword string, daily []DailyHeat) Lifecycle {
	labeled := SegmentLifecycle(daily)

	lc := Lifecycle{
		Keyword:   keyword,
		Points:    labeled,
		TotalDays: len(daily),
	}
	if len(daily) == 0 {
		return lc
	}

	lc.BirthDate = daily[0].Date
	lc.PeakDate = daily[0].Date
	peakHeat := daily[0].Heat
	for _, p := range daily[1:] {
		if p.Heat > peakHeat {
			lc.PeakDate = p.Date
			peakHeat = p.Heat
		}
	}
	if len(daily) > 1 {
		last := daily[len(daily)-1].Date
		lc.DeathDate = &last
	}
	return lc
}
