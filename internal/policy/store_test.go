package policy

import (
	"context"
	"testing"

	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/mangle"
)

func newBareEngine(t *testing.T) *mangle.Engine {
	t.Helper()
	engine, err := mangle.NewEngine(mangle.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestStore_SnapshotFallsBackToEmbedded(t *testing.T) {
	engine := newBareEngine(t)
	store, err := NewStore(engine, cache.NewPolicySnapshots(config.DefaultCacheConfig()))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	snap, err := store.Snapshot(context.Background(), "unknown-tenant")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Version != 0 || len(snap.Rules) != len(embeddedRules) {
		t.Errorf("expected embedded default snapshot, got %+v", snap)
	}
}

func TestStore_PutOverridesEmbedded(t *testing.T) {
	engine := newBareEngine(t)
	store, err := NewStore(engine, cache.NewPolicySnapshots(config.DefaultCacheConfig()))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	store.Put(domain.Policy{
		TenantID: "t1",
		Version:  3,
		Rules:    []domain.PolicyRule{{ID: "custom", Predicate: "run_tenant(\"t1\")", Action: domain.ActionAnnotate}},
	})

	snap, err := store.Snapshot(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Version != 3 || len(snap.Rules) != 1 || snap.Rules[0].ID != "custom" {
		t.Errorf("expected tenant-specific snapshot, got %+v", snap)
	}
}

func TestStore_EmbeddedDerivedRulesEvaluate(t *testing.T) {
	engine := newBareEngine(t)
	store, err := NewStore(engine, cache.NewPolicySnapshots(config.DefaultCacheConfig()))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	gate := New(engine)

	snap, err := store.Snapshot(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	decision, err := gate.Evaluate(context.Background(), snap, domain.CheckpointBeforeEmit, Context{
		TenantID: "t1",
		PIIKinds: []domain.PIIKind{domain.PIIEmail},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if decision.Action != domain.ActionRedact {
		t.Errorf("expected embedded redact rule to fire, got %s", decision.Action)
	}
}
