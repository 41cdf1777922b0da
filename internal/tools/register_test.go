package tools

import (
	"context"
	"testing"

	"legalforge/internal/domain"
	"legalforge/internal/retrieval"
)

type fakeFederator struct{}

func (fakeFederator) Query(ctx context.Context, req retrieval.Request) (*domain.RetrievalRecord, error) {
	return &domain.RetrievalRecord{Query: req.Query}, nil
}

type fakeLexical struct{}

func (fakeLexical) Search(ctx context.Context, tenantID, query string, k int) ([]retrieval.LegHit, error) {
	return []retrieval.LegHit{{SourceID: "s1", Excerpt: "excerpt", Score: 1}}, nil
}

func TestRegisterAll_RegistersAllFiveTools(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterAll(reg, fakeFederator{}, fakeLexical{}); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	for _, name := range []string{"retrieve", "jurisprudence_search", "format_citation", "quality_score", "document_analyse"} {
		if !reg.Has(name) {
			t.Errorf("expected tool %q to be registered", name)
		}
	}
}

func TestRegisterAll_SkipsRetrievalToolsWhenNil(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterAll(reg, nil, nil); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	if reg.Has("retrieve") || reg.Has("jurisprudence_search") {
		t.Error("expected retrieval-backed tools to be skipped when their dependency is nil")
	}
	if !reg.Has("format_citation") {
		t.Error("expected pure tools to still register")
	}
}

func TestFormatCitationTool_NormalisesCitation(t *testing.T) {
	tool := NewFormatCitationTool()
	result, err := tool.Execute(context.Background(), map[string]any{"citation": "Marbury v. Madison, 5 U.S. 137 (1803)"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "*Marbury v. Madison*, 5 U.S 137 (1803)"
	if result != want {
		t.Errorf("got %q, want %q", result, want)
	}
}

func TestFormatCitationTool_RejectsUnrecognisedShape(t *testing.T) {
	tool := NewFormatCitationTool()
	_, err := tool.Execute(context.Background(), map[string]any{"citation": "not a citation"})
	if err == nil {
		t.Fatal("expected an error for an unrecognised citation shape")
	}
}

func TestQualityScoreTool_CountsCitations(t *testing.T) {
	tool := NewQualityScoreTool()
	result, err := tool.Execute(context.Background(), map[string]any{"text": "This clause relies on [doc-1].\n\nThis paragraph has none."})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result == "" {
		t.Fatal("expected a non-empty report")
	}
}

func TestDocumentAnalyseTool_CountsParagraphs(t *testing.T) {
	tool := NewDocumentAnalyseTool()
	result, err := tool.Execute(context.Background(), map[string]any{"text": "# Heading\n\nFirst paragraph. Second sentence.\n\nSecond paragraph."})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result == "" {
		t.Fatal("expected a non-empty report")
	}
}
