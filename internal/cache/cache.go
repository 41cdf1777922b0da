// Package cache provides the TTL'd, copy-on-write caches every run reads
// before it reaches the policy engine or the retrieval federator: a tenant's
// latest policy snapshot and its personalisation centroid. Both are safe to
// drop at any time — a cache miss just means recomputing from the
// authoritative source (the policy engine, the retrieval history).
package cache

import (
	"sync"
	"time"

	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/logging"

	gocache "github.com/patrickmn/go-cache"
)

// PolicySnapshots caches domain.PolicySnapshot by tenant ID. A Put replaces
// the cached entry outright whatever its Version; a Get returning a stale
// version is the caller's signal to recompute.
type PolicySnapshots struct {
	c *gocache.Cache
}

// NewPolicySnapshots builds a snapshot cache from cfg's TTL/cleanup settings.
func NewPolicySnapshots(cfg config.CacheConfig) *PolicySnapshots {
	ttl := parseDurationOr(cfg.DefaultTTL, 5*time.Minute)
	cleanup := parseDurationOr(cfg.CleanupInterval, 10*time.Minute)
	return &PolicySnapshots{c: gocache.New(ttl, cleanup)}
}

// Get returns the cached snapshot for tenantID, or nil on miss/expiry.
func (p *PolicySnapshots) Get(tenantID string) *domain.PolicySnapshot {
	v, ok := p.c.Get(tenantID)
	if !ok {
		return nil
	}
	snap := v.(domain.PolicySnapshot)
	return &snap
}

// Put stores snap for its TenantID, overwriting any cached entry regardless
// of version — callers decide when a recompute is worth caching.
func (p *PolicySnapshots) Put(snap domain.PolicySnapshot) {
	p.c.SetDefault(snap.TenantID, snap)
	logging.Get(logging.CategoryPolicy).Debug("cached policy snapshot tenant=%s version=%d rules=%d",
		snap.TenantID, snap.Version, len(snap.Rules))
}

// Invalidate drops the cached snapshot for tenantID, forcing the next Get to
// miss. Used when a policy is updated out of band.
func (p *PolicySnapshots) Invalidate(tenantID string) {
	p.c.Delete(tenantID)
}

// Centroids caches a tenant's personalisation centroid vector, keyed by
// tenant ID. A centroid is a running embedding average; the cache owns a
// copy so callers can mutate the slice they passed in afterward.
type Centroids struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewCentroids builds a centroid cache with TTL from cfg.CentroidTTL,
// cleaned up on cfg's cache-cleanup cadence.
func NewCentroids(retrievalCfg config.RetrievalConfig, cacheCfg config.CacheConfig) *Centroids {
	ttl := parseDurationOr(retrievalCfg.CentroidTTL, time.Hour)
	cleanup := parseDurationOr(cacheCfg.CleanupInterval, 10*time.Minute)
	return &Centroids{c: gocache.New(ttl, cleanup)}
}

// Get returns a copy of tenantID's cached centroid, or nil on miss.
func (c *Centroids) Get(tenantID string) []float32 {
	v, ok := c.c.Get(tenantID)
	if !ok {
		return nil
	}
	stored := v.([]float32)
	out := make([]float32, len(stored))
	copy(out, stored)
	return out
}

// Update folds embedding into tenantID's centroid via an incremental mean
// (centroid_n = centroid_{n-1} + (embedding - centroid_{n-1}) / n) and
// returns the updated centroid. Safe for concurrent callers on the same
// tenant; the read-modify-write is serialized per cache, not per tenant,
// since personalisation updates are infrequent relative to retrieval reads.
func (c *Centroids) Update(tenantID string, embedding []float32, sampleCount int) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.Get(tenantID)
	if existing == nil || sampleCount <= 1 {
		fresh := make([]float32, len(embedding))
		copy(fresh, embedding)
		c.c.SetDefault(tenantID, fresh)
		return fresh
	}

	n := float32(sampleCount)
	updated := make([]float32, len(existing))
	for i := range existing {
		var e float32
		if i < len(embedding) {
			e = embedding[i]
		}
		updated[i] = existing[i] + (e-existing[i])/n
	}
	c.c.SetDefault(tenantID, updated)
	return updated
}

// Invalidate drops the cached centroid for tenantID.
func (c *Centroids) Invalidate(tenantID string) {
	c.c.Delete(tenantID)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
