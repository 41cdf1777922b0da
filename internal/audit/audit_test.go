package audit

import (
	"context"
	"testing"
	"time"

	"legalforge/internal/domain"
)

func newSucceededState(runID string) *domain.RunState {
	return &domain.RunState{
		RunID:     runID,
		TenantID:  "tenant-1",
		Query:     "draft an NDA",
		StartedAt: time.Now().Add(-time.Second),
		Working:   domain.WorkingSet{Formatted: &domain.WorkingItem{Text: "final text", WriterID: domain.AgentFormatter, Version: 1}},
		Status:    domain.StatusSucceeded,
		Trace:     []domain.TurnRecord{{Agent: domain.AgentDrafter, InputTokens: 100, OutputTokens: 50}},
	}
}

func TestSeal_RejectsNonTerminalRun(t *testing.T) {
	store := NewStore()
	state := newSucceededState("run-1")
	state.Status = domain.StatusRunning

	if err := store.Seal(context.Background(), state); err == nil {
		t.Fatal("expected an error sealing a non-terminal run")
	}
}

func TestSeal_RejectsDoubleSeal(t *testing.T) {
	store := NewStore()
	state := newSucceededState("run-1")

	if err := store.Seal(context.Background(), state); err != nil {
		t.Fatalf("first Seal() error = %v", err)
	}
	if err := store.Seal(context.Background(), state); err == nil {
		t.Fatal("expected second Seal() of the same run id to fail")
	}
}

func TestGet_AppendsAccessLogEntry(t *testing.T) {
	store := NewStore()
	state := newSucceededState("run-1")
	if err := store.Seal(context.Background(), state); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	record, ok := store.Get(context.Background(), "run-1", "reader-a")
	if !ok {
		t.Fatal("expected Get() to find the sealed record")
	}
	if record.OutputHash == "" {
		t.Error("expected a non-empty output hash")
	}
	if record.InputTokens != 100 || record.OutputTokens != 50 {
		t.Errorf("expected summed token counts, got in=%d out=%d", record.InputTokens, record.OutputTokens)
	}

	store.Get(context.Background(), "run-1", "reader-b")

	log := store.AccessLog("run-1")
	if len(log) != 2 {
		t.Fatalf("expected 2 access log entries, got %d", len(log))
	}
	if log[0].AccessorID != "reader-a" || log[1].AccessorID != "reader-b" {
		t.Errorf("expected accessor ids in append order, got %+v", log)
	}
}

func TestGet_MissingRunReturnsFalse(t *testing.T) {
	store := NewStore()
	_, ok := store.Get(context.Background(), "does-not-exist", "reader-a")
	if ok {
		t.Error("expected Get() of an unsealed run to return false")
	}
}
