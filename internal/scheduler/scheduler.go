// Package scheduler runs the periodic aggregation cycle: fetch all
// platforms, merge, score, and persist one snapshot batch.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"truetrend/internal/store"
	"truetrend/pkg/trend"
)

// Scheduler drives aggregation cycles on a fixed interval.
type Scheduler struct {
	agg      *trend.Aggregator
	scorer   *trend.Scorer
	store    store.Store
	interval time.Duration
	limit    int
	log      zerolog.Logger
}

// New creates a scheduler. A non-positive interval falls back to ten
// minutes.
func New(agg *trend.Aggregator, scorer *trend.Scorer, st store.Store, interval time.Duration, limitPerPlatform int, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if limitPerPlatform <= 0 {
		limitPerPlatform = 30
	}
	return &Scheduler{
		agg:      agg,
		scorer:   scorer,
		store:    st,
		interval: interval,
		limit:    limitPerPlatform,
		log:      log,
	}
}

// Run executes one cycle immediately, then on every tick until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// RunOnce executes a single aggregation cycle and returns the scored
// trends.
func (s *Scheduler) RunOnce(ctx context.Context) ([]trend.Scored, error) {
	merged, err := s.agg.FetchAndMerge(ctx, s.limit, true)
	if err != nil {
		return nil, err
	}

	scored := s.scorer.ProcessAll(merged)
	if s.store != nil {
		if err := s.store.SaveCycle(ctx, scored); err != nil {
			return scored, err
		}
	}
	return scored, nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	scored, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("aggregation cycle failed")
		return
	}
	s.log.Info().
		Int("trends", len(scored)).
		Dur("elapsed", time.Since(start)).
		Msg("aggregation cycle complete")
}
