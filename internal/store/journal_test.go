package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kokorolog/internal/emotion"
)

func newTestStore(t *testing.T) *JournalStore {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	s, err := NewJournalStore(filepath.Join(t.TempDir(), "journal.db"), loc)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJournalStore_UpsertOneRowPerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := s.DayKey(time.Now())

	first := emotion.Normalize(emotion.OneHot(emotion.Fun))
	require.NoError(t, s.Upsert(ctx, &EmotionLog{
		StudentID: "stu-1", ClassID: "cls-1", Day: day,
		Text: "最高だった", Emotion: emotion.Fun, Score: 0.9, Labels: first,
	}))

	// Second submission the same day blends and overwrites in place.
	blended := emotion.Blend(&first, emotion.OneHot(emotion.Sad), emotion.DefaultParams())
	require.NoError(t, s.Upsert(ctx, &EmotionLog{
		StudentID: "stu-1", ClassID: "cls-1", Day: day,
		Text: "やっぱり泣いた", Emotion: blended.ArgMax(), Score: blended.Get(blended.ArgMax()), Labels: blended,
	}))

	rows, err := s.EntriesBetween(ctx, "cls-1", day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1, "same (student, class, day) must stay one row")

	got := rows[0]
	assert.Equal(t, "やっぱり泣いた", got.Text)
	for _, l := range emotion.Labels() {
		assert.InDelta(t, blended.Get(l), got.Labels.Get(l), 1e-9)
	}
}

func TestJournalStore_LatestForDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.LatestForDay(ctx, "stu-1", "cls-1", "2026-08-28")
	require.NoError(t, err)
	assert.Nil(t, got, "missing row returns nil, not an error")

	labels := emotion.Normalize(emotion.Vector{emotion.Anxious: 1})
	require.NoError(t, s.Upsert(ctx, &EmotionLog{
		StudentID: "stu-1", ClassID: "cls-1", Day: "2026-08-28",
		Text: "テストこわい", Emotion: emotion.Anxious, Score: 1.0, Labels: labels,
		Signals: emotion.Signals{TopicTags: []string{"勉強"}, NegationIndex: 0.1},
	}))

	got, err = s.LatestForDay(ctx, "stu-1", "cls-1", "2026-08-28")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, emotion.Anxious, got.Emotion)
	assert.Equal(t, []string{"勉強"}, got.Signals.TopicTags)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestJournalStore_RangeQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	put := func(student, day string, l emotion.Label) {
		require.NoError(t, s.Upsert(ctx, &EmotionLog{
			StudentID: student, ClassID: "cls-1", Day: day,
			Text: "x", Emotion: l, Score: 1, Labels: emotion.Normalize(emotion.OneHot(l)),
		}))
	}
	put("stu-1", "2026-08-24", emotion.Fun)
	put("stu-1", "2026-08-25", emotion.Tired)
	put("stu-2", "2026-08-25", emotion.Sad)
	put("stu-1", "2026-08-30", emotion.Neutral) // outside range

	rows, err := s.EntriesBetween(ctx, "cls-1", "2026-08-24", "2026-08-26")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-08-24", rows[0].Day, "ordered by day")

	mine, err := s.EntriesForStudent(ctx, "stu-1", "cls-1", "2026-08-24", "2026-08-26")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, emotion.Tired, mine[1].Emotion)
}

func TestJournalStore_DayKeyUsesZone(t *testing.T) {
	s := newTestStore(t)
	// 2026-08-28 23:30 UTC is already the 29th in Tokyo.
	utc := time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-29", s.DayKey(utc))
}
