package policy

import (
	"context"
	"fmt"
	"sync"

	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/mangle"
)

// embeddedRules are the tenant-agnostic defaults applied when a tenant has
// no policy of its own: redact detected PII at every checkpoint, require
// human review before export when the document touches personal data, and
// otherwise allow. Real deployments load a richer rule set from the
// Mangle source named by config.PolicyConfig.SourcePath.
var embeddedRules = []domain.PolicyRule{
	{ID: "default-pii-redact", Predicate: "pii_detected_any()", Action: domain.ActionRedact},
	{ID: "default-export-review", Predicate: "export_with_pii()", Action: domain.ActionRequireHumanReview},
}

// embeddedSchema declares the base facts Gate.assertContext asserts every
// checkpoint (run_tenant, run_task_kind, ...) plus the two derived
// predicates embeddedRules queries. A tenant-supplied schema loaded from
// config.PolicyConfig.SourcePath is expected to declare these same base
// facts once and then add its own derived predicates alongside them.
const embeddedSchema = `
Decl run_tenant(X).
Decl run_task_kind(X).
Decl run_checkpoint(X).
Decl run_document_type(X).
Decl run_source_origin(X).
Decl run_pii_detected(X).

Decl pii_detected_any().
pii_detected_any() :- run_pii_detected(Kind).

Decl export_with_pii().
export_with_pii() :- run_checkpoint("on_export"), run_pii_detected(Kind).
`

// Store resolves a tenant's current policy into the immutable snapshot a
// run pins at start time, backed by a TTL'd cache so repeated runs for the
// same tenant don't re-derive the same rule set.
type Store struct {
	mu       sync.RWMutex
	policies map[string]domain.Policy // tenant id -> latest policy
	cache    *cache.PolicySnapshots
	engine   *mangle.Engine
}

// NewStore builds a Store. The engine must already have embeddedSchema (or
// an equivalent tenant rule schema) loaded; NewStore loads embeddedSchema
// itself so a Store is usable standalone in tests and in the default
// single-binary wiring.
func NewStore(engine *mangle.Engine, snapshots *cache.PolicySnapshots) (*Store, error) {
	if err := engine.LoadSchemaString(embeddedSchema); err != nil {
		return nil, fmt.Errorf("policy: loading embedded schema: %w", err)
	}
	return &Store{policies: make(map[string]domain.Policy), cache: snapshots, engine: engine}, nil
}

// Put registers (or replaces) a tenant's policy. A policy edit here never
// retroactively changes a run already in flight: runs pin the snapshot
// they observed at StartedAt.
func (s *Store) Put(p domain.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.TenantID] = p
	s.cache.Invalidate(p.TenantID)
}

// Snapshot resolves tenantID's current policy, falling back to the
// embedded defaults if the tenant has none configured.
func (s *Store) Snapshot(ctx context.Context, tenantID string) (domain.PolicySnapshot, error) {
	if snap := s.cache.Get(tenantID); snap != nil {
		return *snap, nil
	}

	s.mu.RLock()
	p, ok := s.policies[tenantID]
	s.mu.RUnlock()

	var snap domain.PolicySnapshot
	if ok {
		snap = domain.PolicySnapshot{TenantID: tenantID, Version: p.Version, Rules: p.Rules}
	} else {
		snap = domain.PolicySnapshot{TenantID: tenantID, Version: 0, Rules: embeddedRules}
	}

	s.cache.Put(snap)
	return snap, nil
}

// Default builds a ready-to-use embedded-only Store for callers that don't
// need tenant-specific overrides (tests, single-tenant deployments).
func Default(engine *mangle.Engine) (*Store, error) {
	return NewStore(engine, cache.NewPolicySnapshots(config.DefaultCacheConfig()))
}
