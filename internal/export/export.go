// Package export serializes journal rows for download. Rows carry the
// classification outputs and signal features but never the journal
// text itself.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"kokorolog/internal/emotion"
	"kokorolog/internal/logging"
	"kokorolog/internal/store"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string, defaulting to JSON when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type for download responses.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename returns the attachment name for download responses.
func (f Format) Filename() string {
	return "emotion_logs." + string(f)
}

// Row is one exported record.
type Row struct {
	ID                  int64          `json:"id"`
	CreatedAt           string         `json:"created_at"`
	Day                 string         `json:"day"`
	ClassID             string         `json:"class_id"`
	StudentID           string         `json:"student_id"`
	Emotion             string         `json:"emotion"`
	Score               float64        `json:"score"`
	Labels              emotion.Vector `json:"labels"`
	TopicTags           []string       `json:"topic_tags"`
	RelationshipMention bool           `json:"relationship_mention"`
	NegationIndex       float64        `json:"negation_index"`
	Avoidance           float64        `json:"avoidance"`
}

// FromLogs converts store rows into export rows.
func FromLogs(logs []store.EmotionLog) []Row {
	rows := make([]Row, 0, len(logs))
	for _, l := range logs {
		tags := l.Signals.TopicTags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, Row{
			ID:                  l.ID,
			CreatedAt:           l.CreatedAt.UTC().Format(time.RFC3339),
			Day:                 l.Day,
			ClassID:             l.ClassID,
			StudentID:           l.StudentID,
			Emotion:             l.Emotion.String(),
			Score:               l.Score,
			Labels:              l.Labels,
			TopicTags:           tags,
			RelationshipMention: l.Signals.RelationshipMention,
			NegationIndex:       l.Signals.NegationIndex,
			Avoidance:           l.Signals.Avoidance,
		})
	}
	return rows
}

// csvHeader fixes the column order for spreadsheet consumers.
var csvHeader = []string{
	"id", "created_at", "day", "class_id", "student_id", "emotion", "score",
	"labels", "topic_tags", "relationship_mention", "negation_index", "avoidance",
}

// WriteJSON writes rows as a JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

// WriteCSV writes rows with a header line. Structured columns (labels,
// topic_tags) are embedded as JSON strings.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		labels, err := json.Marshal(r.Labels)
		if err != nil {
			return err
		}
		tags, err := json.Marshal(r.TopicTags)
		if err != nil {
			return err
		}
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt,
			r.Day,
			r.ClassID,
			r.StudentID,
			r.Emotion,
			strconv.FormatFloat(r.Score, 'g', -1, 64),
			string(labels),
			string(tags),
			strconv.FormatBool(r.RelationshipMention),
			strconv.FormatFloat(r.NegationIndex, 'g', -1, 64),
			strconv.FormatFloat(r.Avoidance, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Exporter streams journal rows out of the store.
type Exporter struct {
	store *store.JournalStore
}

// NewExporter wires an exporter over st.
func NewExporter(st *store.JournalStore) *Exporter {
	return &Exporter{store: st}
}

const maxExportRows = 100000

// Export writes the newest rows to w in the requested format. Limit is
// clamped to [1, 100000]; zero means 1000.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, classID string, limit int) (int, error) {
	if limit > maxExportRows {
		limit = maxExportRows
	}
	logs, err := e.store.RecentEntries(ctx, classID, limit)
	if err != nil {
		return 0, fmt.Errorf("load export rows: %w", err)
	}
	rows := FromLogs(logs)

	switch format {
	case FormatCSV:
		err = WriteCSV(w, rows)
	default:
		err = WriteJSON(w, rows)
	}
	if err != nil {
		return 0, fmt.Errorf("write %s export: %w", format, err)
	}
	logging.Export("exported %d rows format=%s class=%q", len(rows), format, classID)
	return len(rows), nil
}
