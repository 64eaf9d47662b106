package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"truetrend/internal/config"
	"truetrend/internal/scheduler"
	"truetrend/internal/store"
	"truetrend/pkg/archive"
	"truetrend/pkg/server"
	"truetrend/pkg/source"
	"truetrend/pkg/trend"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Logging.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func buildFetchers(cfg *config.Config) []source.Fetcher {
	var fetchers []source.Fetcher

	if cfg.Sources.Weibo.Enabled {
		fetchers = append(fetchers, source.NewWeibo(cfg.Sources.Weibo.Cookie))
	}
	if cfg.Sources.Zhihu.Enabled {
		fetchers = append(fetchers, source.NewZhihu(cfg.Sources.Zhihu.Cookie))
	}
	if cfg.Sources.Bilibili.Enabled {
		fetchers = append(fetchers, source.NewBilibili())
	}
	if cfg.Sources.RSS.Enabled && len(cfg.Sources.RSS.Feeds) > 0 {
		feeds := make([]source.RSSFeed, len(cfg.Sources.RSS.Feeds))
		for i, f := range cfg.Sources.RSS.Feeds {
			feeds[i] = source.RSSFeed{Name: f.Name, URL: f.URL}
		}
		fetchers = append(fetchers, source.NewRSS(feeds))
	}

	return fetchers
}

func buildAggregator(cfg *config.Config, log zerolog.Logger) *trend.Aggregator {
	cache := trend.NewCache(cfg.Aggregation.ParseCacheTTL())
	return trend.NewAggregator(cache, buildFetchers(cfg), cfg.Aggregation.ParseFetchTimeout(), log)
}

func runTrends(jsonOutput bool, limit int, hideMarketing, save, noCache bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	agg := buildAggregator(cfg, log)
	scorer := trend.NewScorer()

	merged, err := agg.FetchAndMerge(context.Background(), cfg.Aggregation.LimitPerPlatform, !noCache)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	scored := scorer.ProcessAll(merged)

	if save {
		db, err := store.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()
		if err := db.SaveCycle(context.Background(), scored); err != nil {
			return fmt.Errorf("save cycle: %w", err)
		}
	}

	var out []trend.Scored
	for _, t := range scored {
		if hideMarketing && t.IsMarketing {
			continue
		}
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(out) == 0 {
		fmt.Println("no trends found (all platforms may have failed)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REAL SCORE\tHEAT\tPLATFORMS\tMARKETING\tKEYWORD")
	for _, t := range out {
		fmt.Fprintf(w, "%.2f\t%.0f\t%s\t%v\t%s\n",
			t.RealScore, t.HeatScore, joinPlatforms(t.Platforms), t.IsMarketing, t.Keyword)
	}
	return w.Flush()
}

func runPlatformTrends(platform string, jsonOutput bool, limit int, noCache bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	agg := buildAggregator(cfg, log)
	items, err := agg.FetchPlatform(context.Background(), source.Platform(platform), limit, !noCache)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", platform, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HEAT\tOBSERVED\tKEYWORD")
	for _, it := range items {
		fmt.Fprintf(w, "%.0f\t%s\t%s\n", it.HeatScore, it.ObservedAt.Format("15:04:05"), it.Keyword)
	}
	return w.Flush()
}

func runLifecycle(keyword string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	daily, err := db.KeywordDailyHeat(context.Background(), keyword)
	if err != nil {
		return fmt.Errorf("daily heat: %w", err)
	}
	if len(daily) == 0 {
		fmt.Printf("no stored history for %q (run: truetrend trends --save)\n", keyword)
		return nil
	}

	lc := trend.BuildLifecycle(keyword, daily)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lc)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tHEAT\tPHASE")
	for _, p := range lc.Points {
		fmt.Fprintf(w, "%s\t%.0f\t%s\n", p.Date.Format("2006-01-02"), p.Heat, p.Phase)
	}
	w.Flush()

	fmt.Printf("\nbirth %s, peak %s", lc.BirthDate.Format("2006-01-02"), lc.PeakDate.Format("2006-01-02"))
	if lc.DeathDate != nil {
		fmt.Printf(", death %s", lc.DeathDate.Format("2006-01-02"))
	}
	fmt.Printf(" (%d days tracked)\n", lc.TotalDays)
	return nil
}

func runArchiveDay(date string, jsonOutput bool, limit int, sortBy string, noFilter bool) error {
	return archiveReport(jsonOutput, limit, sortBy, noFilter, func(ctx context.Context, p archive.Provider) ([]archive.HotItem, error) {
		return p.FetchDay(ctx, date)
	})
}

func runArchiveMonth(yearArg, monthArg string, jsonOutput bool, limit int, sortBy string, noFilter bool) error {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return fmt.Errorf("invalid year %q", yearArg)
	}
	month, err := strconv.Atoi(monthArg)
	if err != nil {
		return fmt.Errorf("invalid month %q", monthArg)
	}
	return archiveReport(jsonOutput, limit, sortBy, noFilter, func(ctx context.Context, p archive.Provider) ([]archive.HotItem, error) {
		return archive.FetchMonth(ctx, p, year, month)
	})
}

func runArchiveYear(yearArg string, jsonOutput bool, limit int, sortBy string, noFilter bool) error {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return fmt.Errorf("invalid year %q", yearArg)
	}
	return archiveReport(jsonOutput, limit, sortBy, noFilter, func(ctx context.Context, p archive.Provider) ([]archive.HotItem, error) {
		return archive.FetchYear(ctx, p, year)
	})
}

func archiveReport(jsonOutput bool, limit int, sortBy string, noFilter bool, fetch func(context.Context, archive.Provider) ([]archive.HotItem, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	opts := archive.DefaultAggregateOptions()
	opts.FilterDenylist = !noFilter
	switch archive.SortBy(sortBy) {
	case archive.SortByBurst, archive.SortByTotal, archive.SortByDays:
		opts.SortBy = archive.SortBy(sortBy)
	default:
		return fmt.Errorf("sort must be burst, total, or days, got %q", sortBy)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	provider := archive.NewGitHubProvider(cfg.Archive.BaseURL, db, log)

	items, err := fetch(context.Background(), provider)
	if err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}

	stats := archive.Aggregate(items, opts)
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	if len(stats) == 0 {
		fmt.Println("no archived keywords in range")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BURST\tTOTAL\tDAYS\tPEAK DATE\tKEYWORD")
	for _, s := range stats {
		fmt.Fprintf(w, "%.2f\t%d\t%d\t%s\t%s\n",
			s.BurstScore, s.TotalAppearances, s.DaysOnList, s.PeakDate, s.Keyword)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	agg := buildAggregator(cfg, log)
	provider := archive.NewGitHubProvider(cfg.Archive.BaseURL, db, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(agg, trend.NewScorer(), db, provider, port, log)
	return srv.Start(ctx)
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	agg := buildAggregator(cfg, log)
	scorer := trend.NewScorer()
	provider := archive.NewGitHubProvider(cfg.Archive.BaseURL, db, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(agg, scorer, db, cfg.Schedule.ParseAggregateInterval(), cfg.Aggregation.LimitPerPlatform, log)
	go sched.Run(ctx)

	srv := server.New(agg, scorer, db, provider, port, log)
	return srv.Start(ctx)
}

func joinPlatforms(platforms []source.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
