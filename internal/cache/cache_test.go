package cache

import (
	"testing"

	"legalforge/internal/config"
	"legalforge/internal/domain"
)

func TestPolicySnapshots_PutGet(t *testing.T) {
	c := NewPolicySnapshots(config.DefaultCacheConfig())

	if got := c.Get("tenant-1"); got != nil {
		t.Fatalf("expected cache miss, got %+v", got)
	}

	snap := domain.PolicySnapshot{TenantID: "tenant-1", Version: 3, Rules: []domain.PolicyRule{
		{ID: "r1", Predicate: "allow_export", Action: domain.ActionAllow},
	}}
	c.Put(snap)

	got := c.Get("tenant-1")
	if got == nil || got.Version != 3 || len(got.Rules) != 1 {
		t.Fatalf("expected cached snapshot, got %+v", got)
	}

	c.Invalidate("tenant-1")
	if got := c.Get("tenant-1"); got != nil {
		t.Fatalf("expected miss after invalidate, got %+v", got)
	}
}

func TestCentroids_UpdateIncrementalMean(t *testing.T) {
	c := NewCentroids(config.DefaultRetrievalConfig(), config.DefaultCacheConfig())

	first := c.Update("tenant-1", []float32{1, 1, 1}, 1)
	if first[0] != 1 {
		t.Fatalf("expected first centroid to equal first sample, got %v", first)
	}

	second := c.Update("tenant-1", []float32{3, 3, 3}, 2)
	for _, v := range second {
		if v != 2 {
			t.Errorf("expected incremental mean of [1,3] to be 2, got %v", second)
		}
	}

	got := c.Get("tenant-1")
	if len(got) != 3 || got[0] != 2 {
		t.Fatalf("unexpected cached centroid: %v", got)
	}
}

func TestCentroids_MissReturnsNil(t *testing.T) {
	c := NewCentroids(config.DefaultRetrievalConfig(), config.DefaultCacheConfig())
	if got := c.Get("unknown"); got != nil {
		t.Fatalf("expected nil on miss, got %v", got)
	}
}
