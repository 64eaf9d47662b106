// Package server exposes the aggregation, lifecycle, archive, and
// sentiment engines over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"truetrend/internal/store"
	"truetrend/pkg/archive"
	"truetrend/pkg/sentiment"
	"truetrend/pkg/source"
	"truetrend/pkg/trend"
)

// Server is the HTTP API.
type Server struct {
	agg      *trend.Aggregator
	scorer   *trend.Scorer
	store    store.Store
	provider archive.Provider
	analyzer *sentiment.Analyzer
	log      zerolog.Logger
	port     int
}

// New creates a server. store may be nil when running without
// persistence; the lifecycle endpoint then reports no data.
func New(agg *trend.Aggregator, scorer *trend.Scorer, st store.Store, provider archive.Provider, port int, log zerolog.Logger) *Server {
	return &Server{
		agg:      agg,
		scorer:   scorer,
		store:    st,
		provider: provider,
		analyzer: sentiment.NewAnalyzer(),
		log:      log,
		port:     port,
	}
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/trends", s.handleTrends)
	mux.HandleFunc("GET /api/v1/trends/{platform}", s.handlePlatformTrends)
	mux.HandleFunc("GET /api/v1/lifecycle", s.handleLifecycle)
	mux.HandleFunc("GET /api/v1/archive/daily", s.handleArchiveDaily)
	mux.HandleFunc("GET /api/v1/archive/monthly", s.handleArchiveMonthly)
	mux.HandleFunc("GET /api/v1/archive/yearly", s.handleArchiveYearly)
	mux.HandleFunc("POST /api/v1/sentiment", s.handleSentiment)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Int("port", s.port).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"platforms": s.agg.Platforms(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

// trendItem is a scored trend annotated with keyword sentiment for API
// consumers.
type trendItem struct {
	trend.Scored
	Sentiment sentiment.Label `json:"sentiment"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	minPlatforms := queryInt(r, "min_platforms", 0)
	includeMarketing := queryBool(r, "include_marketing", true)
	useCache := queryBool(r, "use_cache", true)

	merged, err := s.agg.FetchAndMerge(r.Context(), s.clampLimit(limit), useCache)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	scored := s.scorer.ProcessAll(merged)

	items := make([]trendItem, 0, len(scored))
	for _, t := range scored {
		if !includeMarketing && t.IsMarketing {
			continue
		}
		if t.PlatformCount < minPlatforms {
			continue
		}
		res := s.analyzer.Analyze(t.Keyword)
		items = append(items, trendItem{Scored: t, Sentiment: res.Label})
		if len(items) >= limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(items),
		"trends": items,
	})
}

func (s *Server) handlePlatformTrends(w http.ResponseWriter, r *http.Request) {
	platform := source.Platform(r.PathValue("platform"))
	limit := queryInt(r, "limit", 50)
	useCache := queryBool(r, "use_cache", true)

	items, err := s.agg.FetchPlatform(r.Context(), platform, limit, useCache)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"platform": platform,
		"count":    len(items),
		"items":    items,
	})
}

func (s *Server) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no history for keyword")
		return
	}

	daily, err := s.store.KeywordDailyHeat(r.Context(), keyword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(daily) == 0 {
		writeError(w, http.StatusNotFound, "no history for keyword")
		return
	}

	writeJSON(w, http.StatusOK, trend.BuildLifecycle(keyword, daily))
}

func (s *Server) handleArchiveDaily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	items, err := s.provider.FetchDay(r.Context(), date)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.writeArchiveStats(w, r, items, map[string]any{"date": date})
}

func (s *Server) handleArchiveMonthly(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().UTC().Year())
	month := queryInt(r, "month", int(time.Now().UTC().Month()))

	items, err := archive.FetchMonth(r.Context(), s.provider, year, month)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.writeArchiveStats(w, r, items, map[string]any{"year": year, "month": month})
}

func (s *Server) handleArchiveYearly(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().UTC().Year())

	items, err := archive.FetchYear(r.Context(), s.provider, year)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	s.writeArchiveStats(w, r, items, map[string]any{"year": year})
}

func (s *Server) writeArchiveStats(w http.ResponseWriter, r *http.Request, items []archive.HotItem, meta map[string]any) {
	opts := archive.DefaultAggregateOptions()
	opts.FilterDenylist = queryBool(r, "filter", true)
	if sort := r.URL.Query().Get("sort"); sort != "" {
		switch archive.SortBy(sort) {
		case archive.SortByBurst, archive.SortByTotal, archive.SortByDays:
			opts.SortBy = archive.SortBy(sort)
		default:
			writeError(w, http.StatusBadRequest, "sort must be burst, total, or days")
			return
		}
	}

	stats := archive.Aggregate(items, opts)
	limit := queryInt(r, "limit", 100)
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}

	resp := map[string]any{
		"raw_items": len(items),
		"keywords":  stats,
		"count":     len(stats),
	}
	for k, v := range meta {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts is required")
		return
	}

	results := s.analyzer.AnalyzeBatch(req.Texts)
	dominant, avg := s.analyzer.Dominant(req.Texts)

	writeJSON(w, http.StatusOK, map[string]any{
		"results":        results,
		"dominant":       dominant,
		"avg_confidence": avg,
	})
}

func (s *Server) clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

// writeAPIError maps validation sentinels to 400 and everything else to
// 502 since remaining failures come from upstream platforms.
func writeAPIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trend.ErrInvalidLimit),
		errors.Is(err, trend.ErrUnknownPlatform),
		errors.Is(err, archive.ErrBadDate),
		errors.Is(err, archive.ErrDateOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryBool(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
