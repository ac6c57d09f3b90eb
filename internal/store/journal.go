// Package store persists emotion journal rows in SQLite. One row per
// (student, class, day); repeated submissions in a day update the row
// in place after temporal blending.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"kokorolog/internal/emotion"
	"kokorolog/internal/logging"
)

// EmotionLog is one persisted journal row.
type EmotionLog struct {
	ID        int64
	StudentID string
	ClassID   string
	Day       string // YYYY-MM-DD in the store's time zone
	Text      string
	Emotion   emotion.Label
	Score     float64
	Labels    emotion.Vector
	Signals   emotion.Signals
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JournalStore wraps the SQLite database.
type JournalStore struct {
	db     *sql.DB
	dbPath string
	loc    *time.Location
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS emotion_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id  TEXT NOT NULL,
	class_id    TEXT NOT NULL,
	day         TEXT NOT NULL,
	text        TEXT NOT NULL,
	emotion     TEXT NOT NULL,
	score       REAL NOT NULL,
	labels      TEXT NOT NULL,
	signals     TEXT NOT NULL DEFAULT '{}',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(student_id, class_id, day)
);
CREATE INDEX IF NOT EXISTS idx_emotion_logs_class_day ON emotion_logs(class_id, day);
CREATE INDEX IF NOT EXISTS idx_emotion_logs_student ON emotion_logs(student_id, class_id, day);
`

// NewJournalStore initializes the SQLite database at the given path.
// loc defines the day-bucket boundary for DayKey.
func NewJournalStore(path string, loc *time.Location) (*JournalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewJournalStore")
	defer timer.Stop()

	logging.Store("Initializing JournalStore at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryStore).Warn("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryStore).Warn("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe with WAL and much faster than FULL
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.Get(logging.CategoryStore).Warn("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}
	return &JournalStore{db: db, dbPath: path, loc: loc}, nil
}

// Close closes the database.
func (s *JournalStore) Close() error {
	return s.db.Close()
}

// Location returns the day-bucket time zone.
func (s *JournalStore) Location() *time.Location {
	return s.loc
}

// DayKey buckets a timestamp into the store's local calendar day.
func (s *JournalStore) DayKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// LatestForDay fetches the row for (student, class, day), or nil.
func (s *JournalStore) LatestForDay(ctx context.Context, studentID, classID, day string) (*EmotionLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, student_id, class_id, day, text, emotion, score, labels, signals, created_at, updated_at
		FROM emotion_logs
		WHERE student_id = ? AND class_id = ? AND day = ?`,
		studentID, classID, day)

	entry, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch log: %w", err)
	}
	return entry, nil
}

// Upsert inserts the row or overwrites emotion, score, labels, signals
// and text in place, refreshing updated_at. Callers must already hold
// the per-key serialization (see journal.Service).
func (s *JournalStore) Upsert(ctx context.Context, e *EmotionLog) error {
	labels, err := json.Marshal(e.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	signals, err := json.Marshal(e.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO emotion_logs (student_id, class_id, day, text, emotion, score, labels, signals)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_id, class_id, day) DO UPDATE SET
			text       = excluded.text,
			emotion    = excluded.emotion,
			score      = excluded.score,
			labels     = excluded.labels,
			signals    = excluded.signals,
			updated_at = CURRENT_TIMESTAMP`,
		e.StudentID, e.ClassID, e.Day, e.Text, e.Emotion.String(), e.Score, string(labels), string(signals))
	if err != nil {
		logging.StoreError("upsert failed for %s/%s/%s: %v", e.StudentID, e.ClassID, e.Day, err)
		return fmt.Errorf("upsert log: %w", err)
	}
	return nil
}

// EntriesBetween returns all rows for a class in [from, to] day order.
// Day bounds are inclusive YYYY-MM-DD strings. An empty classID matches
// every class.
func (s *JournalStore) EntriesBetween(ctx context.Context, classID, from, to string) ([]EmotionLog, error) {
	query := `
		SELECT id, student_id, class_id, day, text, emotion, score, labels, signals, created_at, updated_at
		FROM emotion_logs
		WHERE day >= ? AND day <= ?`
	args := []any{from, to}
	if classID != "" {
		query += ` AND class_id = ?`
		args = append(args, classID)
	}
	query += ` ORDER BY day ASC, student_id ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// RecentEntries returns the newest rows first, optionally filtered by
// class. A non-positive limit falls back to 1000.
func (s *JournalStore) RecentEntries(ctx context.Context, classID string, limit int) ([]EmotionLog, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `
		SELECT id, student_id, class_id, day, text, emotion, score, labels, signals, created_at, updated_at
		FROM emotion_logs`
	var args []any
	if classID != "" {
		query += ` WHERE class_id = ?`
		args = append(args, classID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// EntriesForStudent returns one student's rows in [from, to] day order.
func (s *JournalStore) EntriesForStudent(ctx context.Context, studentID, classID, from, to string) ([]EmotionLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, class_id, day, text, emotion, score, labels, signals, created_at, updated_at
		FROM emotion_logs
		WHERE student_id = ? AND class_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC`,
		studentID, classID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLog(sc scanner) (*EmotionLog, error) {
	var (
		e         EmotionLog
		emoName   string
		labelsRaw string
		sigRaw    string
	)
	if err := sc.Scan(&e.ID, &e.StudentID, &e.ClassID, &e.Day, &e.Text, &emoName, &e.Score, &labelsRaw, &sigRaw, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	label, ok := emotion.ParseLabel(emoName)
	if !ok {
		// Rows from an unknown writer surface as Neutral instead of
		// failing the whole read.
		label = emotion.Neutral
	}
	e.Emotion = label
	if err := json.Unmarshal([]byte(labelsRaw), &e.Labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if err := json.Unmarshal([]byte(sigRaw), &e.Signals); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return &e, nil
}

func collectLogs(rows *sql.Rows) ([]EmotionLog, error) {
	var out []EmotionLog
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
