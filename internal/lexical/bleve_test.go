package lexical

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIndex_IndexAndSearchScopedByTenant(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "test.bleve"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer idx.Close()

	if err := idx.IndexDocument("tenant-a", "doc-1", "breach of contract remedies under the civil code"); err != nil {
		t.Fatalf("IndexDocument failed: %v", err)
	}
	if err := idx.IndexDocument("tenant-b", "doc-2", "breach of contract remedies for tenant b only"); err != nil {
		t.Fatalf("IndexDocument failed: %v", err)
	}

	hits, err := idx.Search(context.Background(), "tenant-a", "breach of contract", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit scoped to tenant-a, got %d", len(hits))
	}
	if hits[0].SourceID != "doc-1" {
		t.Errorf("got source %q, want doc-1", hits[0].SourceID)
	}
}

func TestIndex_ReopenReusesExistingIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reopen.bleve")

	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := idx.IndexDocument("tenant-a", "doc-1", "jurisprudence on corporate liability"); err != nil {
		t.Fatalf("IndexDocument failed: %v", err)
	}
	idx.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected index directory to exist: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 doc after reopen, got %d", count)
	}
}
