// Package lexical provides the bundled reference implementation of the
// retrieval federator's lexical leg (retrieval.LexicalIndex), backed by
// Bleve. §4.2 treats the internal corpus as an external collaborator; this
// package is the in-process default used by the example server and by
// retrieval tests, not a hard dependency of the federator contract itself.
package lexical

import (
	"context"
	"fmt"
	"os"
	"sort"

	"legalforge/internal/logging"
	"legalforge/internal/retrieval"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// document is what gets indexed: one excerpt of a tenant's corpus, scoped by
// a tenant field so a single index can serve every tenant.
type document struct {
	TenantID string
	SourceID string
	Text     string
}

// Index is a tenant-scoped Bleve-backed lexical search index.
type Index struct {
	index bleve.Index
}

// Open creates or opens a Bleve index at path. An existing index is reused
// so re-runs do not re-index unchanged corpora.
func Open(path string) (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("Text", textField)

	tenantField := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("TenantID", tenantField)
	docMapping.AddFieldMappingsAt("SourceID", tenantField)

	im.AddDocumentMapping("document", docMapping)
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open bleve index: %w", openErr)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{index: idx}, nil
}

// IndexDocument adds or replaces one tenant-scoped excerpt.
func (i *Index) IndexDocument(tenantID, sourceID, text string) error {
	docID := tenantID + ":" + sourceID
	return i.index.Index(docID, document{TenantID: tenantID, SourceID: sourceID, Text: text})
}

// Delete removes one tenant-scoped excerpt.
func (i *Index) Delete(tenantID, sourceID string) error {
	return i.index.Delete(tenantID + ":" + sourceID)
}

// Search implements retrieval.LexicalIndex: a match query over Text,
// restricted to tenantID via a conjunction query.
func (i *Index) Search(ctx context.Context, tenantID string, query string, k int) ([]retrieval.LegHit, error) {
	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("Text")

	tenantQuery := bleve.NewTermQuery(tenantID)
	tenantQuery.SetField("TenantID")

	conj := bleve.NewConjunctionQuery(textQuery, tenantQuery)
	req := bleve.NewSearchRequest(conj)
	req.Size = k
	req.Fields = []string{"SourceID", "Text"}

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]retrieval.LegHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		sourceID, _ := hit.Fields["SourceID"].(string)
		text, _ := hit.Fields["Text"].(string)
		if sourceID == "" {
			sourceID = hit.ID
		}
		hits = append(hits, retrieval.LegHit{SourceID: sourceID, Excerpt: excerptOf(text), Score: hit.Score})
	}

	sort.Slice(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	logging.Get(logging.CategoryRetrieval).Debug("bleve lexical search tenant=%s query=%q hits=%d", tenantID, query, len(hits))
	return hits, nil
}

// DocCount returns the total number of indexed excerpts across all tenants.
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Close releases the underlying Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}

func excerptOf(text string) string {
	const maxLen = 240
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}

var _ retrieval.LexicalIndex = (*Index)(nil)
