// Package audit seals a terminated run's audit record and serves it back
// out, appending an access-log entry on every read so "who looked at this
// run and when" is itself an append-only trail.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"legalforge/internal/domain"
	"legalforge/internal/logging"
)

// Store is an append-only recorder: Seal writes exactly one record per run
// id, Get never mutates what it returns, and every Get call appends its own
// AccessLogEntry.
type Store struct {
	mu        sync.RWMutex
	records   map[string]domain.AuditRecord
	accessLog []domain.AccessLogEntry
}

// NewStore builds an empty in-memory Store. The in-memory implementation is
// the reference backing; a durable deployment swaps this for a store
// writing to an append-only table or object store behind the same
// interface the supervisor depends on (supervisor.AuditSink).
func NewStore() *Store {
	return &Store{records: make(map[string]domain.AuditRecord)}
}

// Seal computes and writes the audit record for a terminated run. Sealing a
// run id twice is rejected: audit records are immutable once written.
func (s *Store) Seal(ctx context.Context, state *domain.RunState) error {
	if !state.Status.Terminal() {
		return fmt.Errorf("audit: run %s is not terminal (status=%s)", state.RunID, state.Status)
	}

	record := buildRecord(state)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[state.RunID]; exists {
		return fmt.Errorf("audit: run %s already sealed", state.RunID)
	}
	s.records[state.RunID] = record

	logging.Get(logging.CategoryAudit).Info("sealed audit record run=%s tenant=%s status=%s success=%v",
		state.RunID, state.TenantID, state.Status, record.Success)
	return nil
}

// Get returns a copy of the sealed record for runID and appends an access
// log entry attributing the read to accessorID. Returns false if the run
// has not been sealed.
func (s *Store) Get(ctx context.Context, runID, accessorID string) (domain.AuditRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[runID]
	if !ok {
		return domain.AuditRecord{}, false
	}

	s.accessLog = append(s.accessLog, domain.AccessLogEntry{
		RunID:      runID,
		AccessorID: accessorID,
		AccessedAt: time.Now(),
	})
	return record, true
}

// AccessLog returns a copy of the access log entries recorded for runID, in
// the order they were appended.
func (s *Store) AccessLog(runID string) []domain.AccessLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AccessLogEntry
	for _, e := range s.accessLog {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

// buildRecord derives the sealed AuditRecord from a terminated run's state.
// OutputHash digests the formatted text if the run produced one, otherwise
// the latest draft's text, otherwise the empty string (a failed run still
// gets a deterministic, if vacuous, output hash).
func buildRecord(state *domain.RunState) domain.AuditRecord {
	finalText := ""
	if state.Working.Formatted != nil {
		finalText = state.Working.Formatted.Text
	} else if state.Working.Draft != nil {
		finalText = state.Working.Draft.Text
	}

	sourceIDs := state.ConsumedSourceIDs()
	inputTokens, outputTokens := sumTokens(state.Trace)

	return domain.AuditRecord{
		RunID:          state.RunID,
		TenantID:       state.TenantID,
		OutputHash:     domain.OutputHash(finalText),
		ContextHash:    domain.ContextHash(sourceIDs),
		InputHash:      domain.InputHash(state.Query, state.TenantID, state.UserID, state.Config),
		Trace:          state.Trace,
		PolicySnapshot: state.Policy,
		PIIReport:      state.PIIReport,
		SourcesUsed:    sourceIDs,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		CostTotal:      state.Budget.CostUsed,
		Duration:       time.Since(state.StartedAt),
		Success:        state.Status == domain.StatusSucceeded,
		ErrorCause:     state.ErrorCause,
		SealedAt:       time.Now(),
	}
}

func sumTokens(trace []domain.TurnRecord) (input, output int) {
	for _, t := range trace {
		input += t.InputTokens
		output += t.OutputTokens
	}
	return input, output
}
