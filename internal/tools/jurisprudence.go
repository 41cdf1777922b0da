package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"legalforge/internal/retrieval"
)

// LexicalSearcher is the subset of *lexical.Index a tool needs.
type LexicalSearcher interface {
	Search(ctx context.Context, tenantID, query string, k int) ([]retrieval.LegHit, error)
}

// NewJurisprudenceSearchTool performs a keyword-only search over a tenant's
// indexed case law, bypassing the semantic leg and fusion: useful when the
// researcher wants to confirm an exact phrase or citation exists in the
// corpus rather than a semantically similar passage.
func NewJurisprudenceSearchTool(index LexicalSearcher) *Tool {
	return &Tool{
		Name:        "jurisprudence_search",
		Description: "Keyword-search a tenant's indexed case law and statutes for an exact phrase or citation.",
		Category:    CategoryCitation,
		Schema: ToolSchema{
			Required: []string{"query", "tenant_id"},
			Properties: map[string]Property{
				"query":     {Type: "string", Description: "exact phrase or citation fragment to search for"},
				"tenant_id": {Type: "string", Description: "the tenant whose corpus to search"},
				"k":         {Type: "integer", Description: "maximum number of results", Default: 5},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			tenantID, _ := args["tenant_id"].(string)
			k := intArg(args, "k", 5)

			hits, err := index.Search(ctx, tenantID, query, k)
			if err != nil {
				return "", fmt.Errorf("jurisprudence_search: %w", err)
			}
			out, err := json.Marshal(hits)
			if err != nil {
				return "", fmt.Errorf("jurisprudence_search: encoding result: %w", err)
			}
			return string(out), nil
		},
	}
}
