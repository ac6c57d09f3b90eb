package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
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
	st, err := store.NewJournalStore(filepath.Join(t.TempDir(), "export.db"), loc)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seed(t *testing.T, st *store.JournalStore, studentID, classID, day string, label emotion.Label) {
	t.Helper()
	err := st.Upsert(context.Background(), &store.EmotionLog{
		StudentID: studentID,
		ClassID:   classID,
		Day:       day,
		Text:      "きょうは部活が楽しかった",
		Emotion:   label,
		Score:     0.75,
		Labels:    emotion.OneHot(label),
		Signals: emotion.Signals{
			TopicTags:     []string{"部活"},
			NegationIndex: 0.1,
		},
	})
	require.NoError(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "emotion_logs.csv", f.Filename())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestExportJSONOmitsJournalText(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, "stu-1", "1-A", "2026-08-28", emotion.Fun)
	seed(t, st, "stu-2", "1-A", "2026-08-29", emotion.Anxious)

	var buf bytes.Buffer
	n, err := NewExporter(st).Export(context.Background(), &buf, FormatJSON, "1-A", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotContains(t, r, "text")
		assert.Contains(t, r, "labels")
		assert.Contains(t, r, "topic_tags")
	}
	// journal text never leaves the store
	assert.NotContains(t, buf.String(), "部活が楽しかった")
}

func TestExportCSV(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, "stu-1", "1-A", "2026-08-29", emotion.Tired)

	var buf bytes.Buffer
	n, err := NewExporter(st).Export(context.Background(), &buf, FormatCSV, "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	require.Len(t, row, len(csvHeader))
	assert.Equal(t, "stu-1", row[4])
	assert.Equal(t, "しんどい", row[5])
	assert.Equal(t, "0.75", row[6])
	assert.Contains(t, row[7], "しんどい")
	assert.Equal(t, `["部活"]`, row[8])
	assert.Equal(t, "false", row[9])
}

func TestExportClassFilterAndLimit(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, "stu-1", "1-A", "2026-08-29", emotion.Fun)
	seed(t, st, "stu-2", "2-B", "2026-08-29", emotion.Sad)

	var buf bytes.Buffer
	n, err := NewExporter(st).Export(context.Background(), &buf, FormatJSON, "2-B", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "stu-2", rows[0].StudentID)
	assert.Equal(t, "悲しい", rows[0].Emotion)

	buf.Reset()
	n, err = NewExporter(st).Export(context.Background(), &buf, FormatJSON, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExportEmptyStore(t *testing.T) {
	st := newTestStore(t)
	var buf bytes.Buffer
	n, err := NewExporter(st).Export(context.Background(), &buf, FormatJSON, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]\n", buf.String())
}
