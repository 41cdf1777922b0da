package retrieval

import (
	"context"
	"testing"

	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
)

type fakeSemantic struct {
	hits []LegHit
	err  error
}

func (f *fakeSemantic) Search(ctx context.Context, tenantID string, queryEmbedding []float32, k int) ([]LegHit, error) {
	return f.hits, f.err
}

type fakeLexical struct {
	hits []LegHit
	err  error
}

func (f *fakeLexical) Search(ctx context.Context, tenantID string, query string, k int) ([]LegHit, error) {
	return f.hits, f.err
}

type fakeEmbedder struct{ dims int }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Name() string    { return "fake" }

func TestQuery_KZeroSkipsAllLegs(t *testing.T) {
	f := New(&fakeSemantic{}, &fakeLexical{}, &fakeEmbedder{dims: 3}, nil, config.DefaultRetrievalConfig())
	record, err := f.Query(context.Background(), Request{Query: "q", TenantID: "t1", K: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Hits) != 0 {
		t.Errorf("expected no hits for k=0, got %d", len(record.Hits))
	}
}

func TestQuery_FusesAndDedupes(t *testing.T) {
	semantic := &fakeSemantic{hits: []LegHit{
		{SourceID: "doc-1", Excerpt: "about contracts", Score: 0.9},
		{SourceID: "doc-2", Excerpt: "about torts", Score: 0.5},
	}}
	lexical := &fakeLexical{hits: []LegHit{
		{SourceID: "doc-1", Excerpt: "about contracts", Score: 0.8},
	}}

	f := New(semantic, lexical, &fakeEmbedder{dims: 3}, nil, config.DefaultRetrievalConfig())
	record, err := f.Query(context.Background(), Request{Query: "contracts", TenantID: "t1", K: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Hits) != 2 {
		t.Fatalf("expected 2 fused hits, got %d: %+v", len(record.Hits), record.Hits)
	}
	if record.Hits[0].SourceID != "doc-1" {
		t.Errorf("expected doc-1 ranked first (appears in both legs), got %s", record.Hits[0].SourceID)
	}
	if record.Hits[0].Rank != 1 {
		t.Errorf("expected rank 1, got %d", record.Hits[0].Rank)
	}
}

func TestQuery_AllLegsFailNonFatal(t *testing.T) {
	semantic := &fakeSemantic{err: context.DeadlineExceeded}
	lexical := &fakeLexical{err: context.DeadlineExceeded}

	f := New(semantic, lexical, &fakeEmbedder{dims: 3}, nil, config.DefaultRetrievalConfig())
	record, err := f.Query(context.Background(), Request{Query: "q", TenantID: "t1", K: 5})
	if err != nil {
		t.Fatalf("all-legs failure must be non-fatal, got error: %v", err)
	}
	if len(record.Hits) != 0 {
		t.Errorf("expected empty hits on all-legs failure, got %d", len(record.Hits))
	}
	if len(record.Annotations) == 0 {
		t.Error("expected a retrieval-error annotation")
	}
}

func TestQuery_ExternalDocumentsRankedWhenInternalLegsEmpty(t *testing.T) {
	f := New(nil, nil, &fakeEmbedder{dims: 3}, nil, config.DefaultRetrievalConfig())
	docs := []domain.ExternalDocument{
		{SourceID: "ext-1", Text: "a memorandum about contract breach remedies"},
		{SourceID: "ext-2", Text: "an unrelated recipe for soup"},
	}
	record, err := f.Query(context.Background(), Request{Query: "contract breach", TenantID: "t1", K: 5, ExternalDocuments: docs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Hits) != 2 {
		t.Fatalf("expected both external docs ranked, got %d", len(record.Hits))
	}
	if record.Hits[0].Origin != domain.OriginExternal {
		t.Errorf("expected external origin, got %s", record.Hits[0].Origin)
	}
}

func TestQuery_KClampedToCeiling(t *testing.T) {
	cfg := config.DefaultRetrievalConfig()
	cfg.KCeiling = 3
	f := New(&fakeSemantic{}, &fakeLexical{}, &fakeEmbedder{dims: 3}, nil, cfg)
	record, err := f.Query(context.Background(), Request{Query: "q", TenantID: "t1", K: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, a := range record.Annotations {
		if a != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a clamp annotation when k exceeds ceiling")
	}
}

func TestQuery_PersonalisationSkippedWithoutCentroid(t *testing.T) {
	f := New(&fakeSemantic{hits: []LegHit{{SourceID: "doc-1", Score: 0.9}}}, &fakeLexical{}, &fakeEmbedder{dims: 3}, cache.NewCentroids(config.DefaultRetrievalConfig(), config.DefaultCacheConfig()), config.DefaultRetrievalConfig())
	record, err := f.Query(context.Background(), Request{Query: "q", TenantID: "t1", K: 5, Personalise: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	skipped := false
	for _, a := range record.Annotations {
		if a == "personalisation skipped: no fresh centroid for tenant" {
			skipped = true
		}
	}
	if !skipped {
		t.Error("expected personalisation-skipped annotation when no centroid cached")
	}
}
