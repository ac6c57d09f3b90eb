package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/stat"

	"kokorolog/internal/logging"
	"kokorolog/internal/store"
)

// Stats summarizes posting volume across the window.
type Stats struct {
	MeanPerDay   float64 `json:"mean_per_day"`
	StdDevPerDay float64 `json:"stddev_per_day"`
	ActiveDays   int     `json:"active_days"`
	PeakDay      string  `json:"peak_day"`
	PeakCount    int     `json:"peak_count"`
}

// WeeklyReport is the full weekly payload: the digest plus the raw
// day-by-day breakdown it was computed from.
type WeeklyReport struct {
	WeekView
	ClassID   string         `json:"class_id"`
	RangeDays int            `json:"range_days"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Daily     []DayCount     `json:"daily"`
	Totals    map[string]int `json:"totals"`
	Stats     Stats          `json:"stats"`
}

// WeeklyCompact is the lightweight view of a WeeklyReport.
type WeeklyCompact struct {
	Headline  string   `json:"headline"`
	TextShort string   `json:"text_short"`
	KPI       KPI      `json:"kpi"`
	ASCIIRows []string `json:"ascii_rows"`
	Coach     Coach    `json:"coach"`
	Days      int      `json:"days"`
	ClassID   string   `json:"class_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

// Compact strips the report down to what a chat surface renders.
func (r *WeeklyReport) Compact() *WeeklyCompact {
	return &WeeklyCompact{
		Headline:  r.Headline,
		TextShort: r.TextShort,
		KPI:       r.KPI,
		ASCIIRows: r.ASCIIRows,
		Coach:     r.Coach,
		Days:      r.RangeDays,
		ClassID:   r.ClassID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// Dashboard is the per-day counts/ratios feed for the teacher UI.
type Dashboard struct {
	ClassID   string     `json:"class_id"`
	RangeDays int        `json:"range_days"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Daily     []DayCount `json:"daily"`
}

type cacheEntry struct {
	at     time.Time
	report *WeeklyReport
}

// Generator builds reports over the journal store. Weekly reports are
// cached for the configured TTL; concurrent requests for the same
// window share one computation.
type Generator struct {
	store *store.JournalStore
	ttl   time.Duration

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewGenerator wires a generator over st. A zero or negative ttl
// disables the weekly cache.
func NewGenerator(st *store.JournalStore, ttl time.Duration) *Generator {
	return &Generator{store: st, ttl: ttl, cache: make(map[string]cacheEntry)}
}

func clampDays(days, lo, hi int) int {
	if days <= 0 {
		return 7
	}
	if days < lo {
		return lo
	}
	if days > hi {
		return hi
	}
	return days
}

func (g *Generator) cached(key string) *WeeklyReport {
	if g.ttl <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.cache[key]
	if !ok {
		return nil
	}
	if time.Since(e.at) > g.ttl {
		delete(g.cache, key)
		return nil
	}
	return e.report
}

func (g *Generator) put(key string, r *WeeklyReport) {
	if g.ttl <= 0 {
		return
	}
	g.mu.Lock()
	g.cache[key] = cacheEntry{at: time.Now(), report: r}
	g.mu.Unlock()
}

// Weekly returns the cached weekly report for a class, computing it at
// most once per TTL window. Days is clamped to [3, 31].
func (g *Generator) Weekly(ctx context.Context, classID string, days int) (*WeeklyReport, error) {
	days = clampDays(days, 3, 31)
	key := fmt.Sprintf("%s|%d", classID, days)
	if r := g.cached(key); r != nil {
		logging.Report("weekly cache hit class=%q days=%d", classID, days)
		return r, nil
	}
	v, err, _ := g.group.Do(key, func() (any, error) {
		if r := g.cached(key); r != nil {
			return r, nil
		}
		r, err := g.build(ctx, classID, days)
		if err != nil {
			return nil, err
		}
		g.put(key, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*WeeklyReport), nil
}

// Summary returns an uncached report; the summary endpoint allows
// shorter windows than the weekly one. Days is clamped to [1, 31].
func (g *Generator) Summary(ctx context.Context, classID string, days int) (*WeeklyReport, error) {
	return g.build(ctx, classID, clampDays(days, 1, 31))
}

// Dashboard returns per-day counts with no digest. Days is clamped to
// [1, 60].
func (g *Generator) Dashboard(ctx context.Context, classID string, days int) (*Dashboard, error) {
	days = clampDays(days, 1, 60)
	start, end := g.window(days)
	daily, _, err := g.buildDaily(ctx, classID, start, end, days)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		ClassID:   classID,
		RangeDays: days,
		StartDate: g.store.DayKey(start),
		EndDate:   g.store.DayKey(end),
		Daily:     daily,
	}, nil
}

// window returns the local-calendar bounds of the last `days` days,
// today included.
func (g *Generator) window(days int) (start, end time.Time) {
	end = time.Now().In(g.store.Location())
	start = end.AddDate(0, 0, -(days - 1))
	return start, end
}

func (g *Generator) build(ctx context.Context, classID string, days int) (*WeeklyReport, error) {
	timer := logging.StartTimer(logging.CategoryReport, fmt.Sprintf("weekly class=%q days=%d", classID, days))
	defer timer.Stop()

	start, end := g.window(days)
	daily, totals, err := g.buildDaily(ctx, classID, start, end, days)
	if err != nil {
		return nil, err
	}

	r := &WeeklyReport{
		WeekView:  BuildWeekView(days, classID, totals, daily),
		ClassID:   classID,
		RangeDays: days,
		StartDate: g.store.DayKey(start),
		EndDate:   g.store.DayKey(end),
		Daily:     daily,
		Totals:    totals,
		Stats:     dailyStats(daily),
	}
	logging.Report("weekly built class=%q days=%d posts=%d top=%s risk=%s",
		classID, days, r.KPI.Total, r.KPI.Top, r.Coach.RiskLevel)
	return r, nil
}

// buildDaily buckets journal rows into zero-filled local days and
// accumulates the window totals.
func (g *Generator) buildDaily(ctx context.Context, classID string, start, end time.Time, days int) ([]DayCount, map[string]int, error) {
	logs, err := g.store.EntriesBetween(ctx, classID, g.store.DayKey(start), g.store.DayKey(end))
	if err != nil {
		return nil, nil, fmt.Errorf("load entries: %w", err)
	}

	byDay := make(map[string][]store.EmotionLog, days)
	for _, l := range logs {
		byDay[l.Day] = append(byDay[l.Day], l)
	}

	totals := newCounts()
	daily := make([]DayCount, 0, days)
	for i := 0; i < days; i++ {
		day := g.store.DayKey(start.AddDate(0, 0, i))
		counts := newCounts()
		for _, l := range byDay[day] {
			counts[l.Emotion.String()]++
		}
		total := sumCounts(counts)
		ratios := make(map[string]float64, len(counts))
		for k, c := range counts {
			if total > 0 {
				ratios[k] = float64(c) / float64(total)
			} else {
				ratios[k] = 0
			}
			totals[k] += c
		}
		daily = append(daily, DayCount{Date: day, Counts: counts, Ratios: ratios, Total: total})
	}
	return daily, totals, nil
}

func newCounts() map[string]int {
	return map[string]int{
		"楽しい": 0, "悲しい": 0, "怒り": 0, "不安": 0, "しんどい": 0, "中立": 0,
	}
}

func dailyStats(daily []DayCount) Stats {
	volumes := make([]float64, 0, len(daily))
	active := 0
	for _, d := range daily {
		volumes = append(volumes, float64(d.Total))
		if d.Total > 0 {
			active++
		}
	}
	s := Stats{ActiveDays: active}
	if len(volumes) > 0 {
		s.MeanPerDay = stat.Mean(volumes, nil)
	}
	if len(volumes) > 1 {
		s.StdDevPerDay = stat.StdDev(volumes, nil)
	}
	s.PeakDay, s.PeakCount = peakDay(daily)
	return s
}
