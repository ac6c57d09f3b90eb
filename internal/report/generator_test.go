package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kokorolog/internal/emotion"
	"kokorolog/internal/store"
)

func newTestStore(t *testing.T) *store.JournalStore {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	st, err := store.NewJournalStore(filepath.Join(t.TempDir(), "report.db"), loc)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seed(t *testing.T, st *store.JournalStore, studentID, day string, label emotion.Label) {
	t.Helper()
	err := st.Upsert(context.Background(), &store.EmotionLog{
		StudentID: studentID,
		ClassID:   "1-A",
		Day:       day,
		Text:      "test entry",
		Emotion:   label,
		Score:     0.8,
		Labels:    emotion.OneHot(label),
		Signals:   emotion.Signals{TopicTags: []string{}},
	})
	require.NoError(t, err)
}

func TestWeeklyReport(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, 0)

	today := st.DayKey(time.Now())
	yesterday := st.DayKey(time.Now().AddDate(0, 0, -1))
	seed(t, st, "stu-1", today, emotion.Fun)
	seed(t, st, "stu-2", today, emotion.Fun)
	seed(t, st, "stu-3", yesterday, emotion.Tired)

	r, err := g.Weekly(context.Background(), "1-A", 7)
	require.NoError(t, err)

	assert.Equal(t, "1-A", r.ClassID)
	assert.Equal(t, 7, r.RangeDays)
	require.Len(t, r.Daily, 7)
	assert.Equal(t, today, r.EndDate)
	assert.Equal(t, today, r.Daily[6].Date)

	assert.Equal(t, 3, r.KPI.Total)
	assert.Equal(t, "楽しい", r.KPI.Top)
	assert.Equal(t, 2, r.Totals["楽しい"])
	assert.Equal(t, 1, r.Totals["しんどい"])

	assert.Equal(t, 2, r.Daily[6].Total)
	assert.InDelta(t, 1.0, r.Daily[6].Ratios["楽しい"], 1e-9)
	assert.Equal(t, 0, r.Daily[0].Total)

	assert.Equal(t, 2, r.Stats.ActiveDays)
	assert.InDelta(t, 3.0/7.0, r.Stats.MeanPerDay, 1e-9)
	assert.Equal(t, today, r.Stats.PeakDay)
	assert.Equal(t, 2, r.Stats.PeakCount)
}

func TestWeeklyDaysClamp(t *testing.T) {
	g := NewGenerator(newTestStore(t), 0)

	r, err := g.Weekly(context.Background(), "1-A", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, r.RangeDays)

	r, err = g.Weekly(context.Background(), "1-A", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, r.RangeDays)

	r, err = g.Weekly(context.Background(), "1-A", 99)
	require.NoError(t, err)
	assert.Equal(t, 31, r.RangeDays)
}

func TestWeeklyCacheServesStaleWithinTTL(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, time.Minute)
	ctx := context.Background()

	first, err := g.Weekly(ctx, "1-A", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, first.KPI.Total)

	seed(t, st, "stu-1", st.DayKey(time.Now()), emotion.Fun)

	second, err := g.Weekly(ctx, "1-A", 7)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// a different window is a different cache key
	other, err := g.Weekly(ctx, "1-A", 14)
	require.NoError(t, err)
	assert.Equal(t, 1, other.KPI.Total)
}

func TestWeeklyEmptyClassIDCoversAllClasses(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, 0)
	seed(t, st, "stu-1", st.DayKey(time.Now()), emotion.Sad)

	r, err := g.Weekly(context.Background(), "", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, r.KPI.Total)
	assert.Contains(t, r.TextShort, "全体")
}

func TestCompactView(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, 0)
	seed(t, st, "stu-1", st.DayKey(time.Now()), emotion.Anxious)

	r, err := g.Weekly(context.Background(), "1-A", 7)
	require.NoError(t, err)

	c := r.Compact()
	assert.Equal(t, r.Headline, c.Headline)
	assert.Equal(t, r.KPI, c.KPI)
	assert.Equal(t, r.ASCIIRows, c.ASCIIRows)
	assert.Equal(t, 7, c.Days)
	assert.Equal(t, r.StartDate, c.StartDate)
}

func TestDashboard(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, 0)
	today := st.DayKey(time.Now())
	seed(t, st, "stu-1", today, emotion.Angry)
	seed(t, st, "stu-2", today, emotion.Neutral)

	d, err := g.Dashboard(context.Background(), "1-A", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, d.RangeDays)
	require.Len(t, d.Daily, 3)
	assert.Equal(t, today, d.EndDate)
	assert.Equal(t, 2, d.Daily[2].Total)
	assert.InDelta(t, 0.5, d.Daily[2].Ratios["怒り"], 1e-9)
	assert.InDelta(t, 0.5, d.Daily[2].Ratios["中立"], 1e-9)
}

func TestSummaryAllowsSingleDay(t *testing.T) {
	st := newTestStore(t)
	g := NewGenerator(st, time.Minute)
	seed(t, st, "stu-1", st.DayKey(time.Now()), emotion.Fun)

	r, err := g.Summary(context.Background(), "1-A", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.RangeDays)
	require.Len(t, r.Daily, 1)
	assert.Equal(t, 1, r.KPI.Total)
}
