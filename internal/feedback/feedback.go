// Package feedback collects rater feedback against terminated runs. Events
// are additive only: a feedback submission never touches the sealed audit
// record it references.
package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"legalforge/internal/domain"
	"legalforge/internal/logging"
)

// RunLookup reports whether a run exists and has reached a terminal status,
// satisfied by *audit.Store in the default wiring.
type RunLookup interface {
	Get(ctx context.Context, runID, accessorID string) (domain.AuditRecord, bool)
}

// Store collects feedback events per run.
type Store struct {
	mu     sync.RWMutex
	runs   RunLookup
	events map[string][]domain.FeedbackEvent
}

// NewStore builds a Store backed by runs, used to validate that a run
// exists and is terminated before accepting feedback against it.
func NewStore(runs RunLookup) *Store {
	return &Store{runs: runs, events: make(map[string][]domain.FeedbackEvent)}
}

// Submit validates that event.RunID refers to a sealed (terminated) run and
// appends it. Submitting against an unknown run is rejected, since there
// would be no audit record for the feedback to ever be cross-referenced
// against.
func (s *Store) Submit(ctx context.Context, event domain.FeedbackEvent) error {
	if _, ok := s.runs.Get(ctx, event.RunID, "feedback-intake"); !ok {
		return fmt.Errorf("feedback: run %s not found or not yet terminated", event.RunID)
	}
	if event.Rating < -1 || event.Rating > 1 {
		return fmt.Errorf("feedback: rating must be -1, 0, or 1, got %d", event.Rating)
	}
	if event.SubmittedAt.IsZero() {
		event.SubmittedAt = time.Now()
	}

	s.mu.Lock()
	s.events[event.RunID] = append(s.events[event.RunID], event)
	s.mu.Unlock()

	logging.Get(logging.CategoryFeedback).Info("feedback recorded run=%s rater=%s rating=%d", event.RunID, event.RaterID, event.Rating)
	return nil
}

// Summary folds every feedback event recorded against runID into a
// commutative summary, or the zero summary if none have been recorded.
func (s *Store) Summary(runID string) domain.FeedbackSummary {
	s.mu.RLock()
	events := append([]domain.FeedbackEvent(nil), s.events[runID]...)
	s.mu.RUnlock()
	return domain.Summarise(runID, events)
}

// Events returns a copy of the feedback events recorded against runID.
func (s *Store) Events(runID string) []domain.FeedbackEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FeedbackEvent(nil), s.events[runID]...)
}
