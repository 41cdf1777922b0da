package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"legalforge/internal/domain"
	"legalforge/internal/retrieval"
)

// Federator is the subset of retrieval.Federator a tool needs, so tests can
// substitute a fake without constructing a real one.
type Federator interface {
	Query(ctx context.Context, req retrieval.Request) (*domain.RetrievalRecord, error)
}

// retrieveHitView is the JSON shape returned to the calling agent: enough to
// cite a source without exposing internal fusion bookkeeping.
type retrieveHitView struct {
	SourceID string  `json:"source_id"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"score"`
	Origin   string  `json:"origin"`
}

// NewRetrieveTool wraps the federated retrieval contract as a callable tool
// mid-turn, for agents (typically the researcher) that need a second,
// differently-scoped query beyond the one the supervisor already ran.
func NewRetrieveTool(federator Federator) *Tool {
	return &Tool{
		Name:        "retrieve",
		Description: "Query internal and external legal sources for passages relevant to a question.",
		Category:    CategoryRetrieval,
		Schema: ToolSchema{
			Required: []string{"query", "tenant_id"},
			Properties: map[string]Property{
				"query":     {Type: "string", Description: "the question or topic to search for"},
				"tenant_id": {Type: "string", Description: "the tenant whose corpus to search"},
				"k":         {Type: "integer", Description: "maximum number of results", Default: 10},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			tenantID, _ := args["tenant_id"].(string)
			k := intArg(args, "k", 10)

			record, err := federator.Query(ctx, retrieval.Request{Query: query, TenantID: tenantID, K: k})
			if err != nil {
				return "", fmt.Errorf("retrieve: %w", err)
			}

			views := make([]retrieveHitView, len(record.Hits))
			for i, h := range record.Hits {
				views[i] = retrieveHitView{SourceID: h.SourceID, Excerpt: h.Excerpt, Score: h.FusedScore, Origin: string(h.Origin)}
			}
			out, err := json.Marshal(views)
			if err != nil {
				return "", fmt.Errorf("retrieve: encoding result: %w", err)
			}
			return string(out), nil
		},
	}
}

func intArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}
