package domain

import "testing"

func TestOutputHash_Stable(t *testing.T) {
	a := OutputHash("final contract text")
	b := OutputHash("final contract text")
	if a != b {
		t.Error("identical text should hash identically")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestOutputHash_TrimsTrailingWhitespace(t *testing.T) {
	a := OutputHash("text")
	b := OutputHash("text\n")
	if a != b {
		t.Error("trailing whitespace should not change the hash")
	}
}

func TestContextHash_OrderIndependent(t *testing.T) {
	a := ContextHash([]string{"src-b", "src-a", "src-c"})
	b := ContextHash([]string{"src-c", "src-a", "src-b"})
	if a != b {
		t.Error("context hash should not depend on input order")
	}
}

func TestContextHash_Deduplicates(t *testing.T) {
	a := ContextHash([]string{"src-a", "src-a", "src-b"})
	b := ContextHash([]string{"src-a", "src-b"})
	if a != b {
		t.Error("duplicate source ids should not change the hash")
	}
}

func TestInputHash_TenantUserOrderIndependent(t *testing.T) {
	cfg := ResolveConfig(ConfigBundle{})
	a := InputHash("query", "tenant-1", "user-1", cfg)
	b := InputHash("query", "user-1", "tenant-1", cfg)
	if a != b {
		t.Error("input hash should sort tenant+user ids before hashing")
	}
}

func TestInputHash_DiffersOnConfig(t *testing.T) {
	cfg1 := ResolveConfig(ConfigBundle{KTotal: 10})
	cfg2 := ResolveConfig(ConfigBundle{KTotal: 20})
	a := InputHash("query", "t1", "u1", cfg1)
	b := InputHash("query", "t1", "u1", cfg2)
	if a == b {
		t.Error("different config bundles should hash differently")
	}
}
