package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"truetrend/pkg/archive"
	"truetrend/pkg/source"
	"truetrend/pkg/trend"
)

// Store persists scored-trend snapshots per aggregation cycle and caches
// archive day payloads.
type Store interface {
	SaveCycle(ctx context.Context, trends []trend.Scored) error
	LatestTrends(ctx context.Context, limit int) ([]trend.Scored, error)
	KeywordDailyHeat(ctx context.Context, keyword string) ([]trend.DailyHeat, error)

	SaveArchiveDay(ctx context.Context, date string, items []archive.HotItem) error
	GetArchiveDay(ctx context.Context, date string) ([]archive.HotItem, bool, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type snapshotRow struct {
	ID             int64     `db:"id"`
	Keyword        string    `db:"keyword"`
	Normalized     string    `db:"normalized"`
	Platforms      string    `db:"platforms"`
	PlatformCount  int       `db:"platform_count"`
	HeatByPlatform string    `db:"heat_by_platform"`
	HeatScore      float64   `db:"heat_score"`
	RealScore      float64   `db:"real_score"`
	Breakdown      string    `db:"breakdown"`
	IsMarketing    bool      `db:"is_marketing"`
	FirstSeen      time.Time `db:"first_seen"`
	LastSeen       time.Time `db:"last_seen"`
	CapturedAt     time.Time `db:"captured_at"`
}

// SaveCycle stores one aggregation cycle's scored trends under a single
// capture timestamp.
func (s *SQLiteStore) SaveCycle(ctx context.Context, trends []trend.Scored) error {
	if len(trends) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle tx: %w", err)
	}
	defer tx.Rollback()

	capturedAt := time.Now().UTC()
	for _, t := range trends {
		platformsJSON, _ := json.Marshal(t.Platforms)
		heatJSON, _ := json.Marshal(t.HeatByPlatform)
		breakdownJSON, _ := json.Marshal(t.Breakdown)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO trend_snapshots
				(keyword, normalized, platforms, platform_count, heat_by_platform,
				 heat_score, real_score, breakdown, is_marketing,
				 first_seen, last_seen, captured_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.Keyword, trend.NormalizeKeyword(t.Keyword), string(platformsJSON),
			t.PlatformCount, string(heatJSON), t.HeatScore, t.RealScore,
			string(breakdownJSON), t.IsMarketing, t.FirstSeen, t.LastSeen, capturedAt)
		if err != nil {
			return fmt.Errorf("insert snapshot %q: %w", t.Keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cycle: %w", err)
	}
	return nil
}

// LatestTrends returns the most recent cycle's trends ordered by
// RealScore descending.
func (s *SQLiteStore) LatestTrends(ctx context.Context, limit int) ([]trend.Scored, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM trend_snapshots
		WHERE captured_at = (SELECT MAX(captured_at) FROM trend_snapshots)
		ORDER BY real_score DESC, keyword ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest trends: %w", err)
	}

	out := make([]trend.Scored, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToScored(r))
	}
	return out, nil
}

func rowToScored(r snapshotRow) trend.Scored {
	var platforms []source.Platform
	var heat map[source.Platform]float64
	var breakdown trend.Breakdown
	json.Unmarshal([]byte(r.Platforms), &platforms)
	json.Unmarshal([]byte(r.HeatByPlatform), &heat)
	json.Unmarshal([]byte(r.Breakdown), &breakdown)

	return trend.Scored{
		Merged: trend.Merged{
			Keyword:        r.Keyword,
			Platforms:      platforms,
			PlatformCount:  r.PlatformCount,
			HeatByPlatform: heat,
			HeatScore:      r.HeatScore,
			FirstSeen:      r.FirstSeen,
			LastSeen:       r.LastSeen,
		},
		RealScore:   r.RealScore,
		Breakdown:   breakdown,
		IsMarketing: r.IsMarketing,
	}
}

// KeywordDailyHeat returns a keyword's per-day heat across stored cycles,
// taking the day's highest observed total, sorted ascending. This feeds
// lifecycle segmentation.
func (s *SQLiteStore) KeywordDailyHeat(ctx context.Context, keyword string) ([]trend.DailyHeat, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT date(captured_at) AS day, MAX(heat_score) AS heat
		FROM trend_snapshots
		WHERE normalized = ?
		GROUP BY day
		ORDER BY day
	`, trend.NormalizeKeyword(keyword))
	if err != nil {
		return nil, fmt.Errorf("daily heat %q: %w", keyword, err)
	}
	defer rows.Close()

	var out []trend.DailyHeat
	for rows.Next() {
		var day string
		var heat float64
		if err := rows.Scan(&day, &heat); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		out = append(out, trend.DailyHeat{Date: date, Heat: heat})
	}
	return out, rows.Err()
}

// SaveArchiveDay caches one archive day's payload wholesale.
func (s *SQLiteStore) SaveArchiveDay(ctx context.Context, date string, items []archive.HotItem) error {
	payload, _ := json.Marshal(items)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archive_days (date, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, date, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save archive day %s: %w", date, err)
	}
	return nil
}

// GetArchiveDay returns a cached archive day, reporting whether it was
// present.
func (s *SQLiteStore) GetArchiveDay(ctx context.Context, date string) ([]archive.HotItem, bool, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM archive_days WHERE date = ?", date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get archive day %s: %w", date, err)
	}

	var items []archive.HotItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, false, fmt.Errorf("decode archive day %s: %w", date, err)
	}
	return items, true, nil
}
