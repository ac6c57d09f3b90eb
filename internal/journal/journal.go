// Package journal is the ingest service: it classifies one submission,
// blends it into the student's running day state, and persists the
// result as a single row per (student, class, day).
package journal

import (
	"context"
	"sync"
	"time"

	"kokorolog/internal/emotion"
	"kokorolog/internal/logging"
	"kokorolog/internal/store"
)

// Submission is one journal entry from a student.
type Submission struct {
	StudentID string
	ClassID   string
	Text      string
	Selected  string // explicit emotion choice, may be empty or a placeholder
	RequestID string
	At        time.Time // zero means now
}

// Outcome reports what a submission produced.
type Outcome struct {
	// Classified is the fresh per-submission result, before blending.
	Classified emotion.Result
	// Entry is the persisted row after temporal blending.
	Entry store.EmotionLog
	// Crisis is set when the text contained a crisis phrase.
	Crisis bool
}

// Service wires the resolver, blender and store together.
type Service struct {
	store    *store.JournalStore
	resolver *emotion.Resolver
	params   emotion.Params

	// mu serializes the read-blend-write cycle so two near-simultaneous
	// submissions cannot lose an update to the same day row.
	mu sync.Mutex
}

// NewService builds the ingest service.
func NewService(s *store.JournalStore, r *emotion.Resolver, p emotion.Params) *Service {
	return &Service{store: s, resolver: r, params: p}
}

// Submit classifies, blends and persists one submission. The returned
// Outcome carries both the fresh classification (what the client sees)
// and the blended persisted state (what reports aggregate).
// ErrEmptyText and ErrUnknownLabel pass through for the caller to map
// to client errors.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	res, err := s.resolver.Resolve(ctx, sub.Text, sub.Selected)
	if err != nil {
		return nil, err
	}

	at := sub.At
	if at.IsZero() {
		at = time.Now()
	}
	day := s.store.DayKey(at)

	log := logging.WithRequestID(logging.CategoryIngest, sub.RequestID)
	log.Info("submission student=%s class=%s day=%s emotion=%s score=%.2f manual=%v",
		sub.StudentID, sub.ClassID, day, res.Emotion, res.Score, res.Manual)

	if res.Manual {
		logging.ManualOverride(sub.StudentID, sub.ClassID, sub.RequestID, res.Emotion.String())
	}

	crisis := emotion.HasCrisisPhrase(sub.Text)
	if crisis {
		logging.CrisisDetected(sub.StudentID, sub.ClassID, sub.RequestID, res.Score)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.store.LatestForDay(ctx, sub.StudentID, sub.ClassID, day)
	if err != nil {
		return nil, err
	}
	var prevLabels *emotion.Vector
	if prev != nil {
		prevLabels = &prev.Labels
	}

	blended := emotion.Blend(prevLabels, res.Labels, s.params)
	top := blended.ArgMax()

	entry := store.EmotionLog{
		StudentID: sub.StudentID,
		ClassID:   sub.ClassID,
		Day:       day,
		Text:      sub.Text,
		Emotion:   top,
		Score:     blended.Get(top),
		Labels:    blended,
		Signals:   emotion.ComputeSignals(sub.Text),
	}
	if err := s.store.Upsert(ctx, &entry); err != nil {
		return nil, err
	}

	// re-read for the DB-assigned id and timestamps
	saved, err := s.store.LatestForDay(ctx, sub.StudentID, sub.ClassID, day)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		entry = *saved
	}

	return &Outcome{Classified: res, Entry: entry, Crisis: crisis}, nil
}
