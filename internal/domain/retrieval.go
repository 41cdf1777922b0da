package domain

// Origin tags where a retrieval hit came from.
type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
	OriginBoth     Origin = "both"
)

// RetrievalHit is one ranked result from a retrieval call. Immutable once
// produced by the federator.
type RetrievalHit struct {
	SourceID              string  `json:"source_id"`
	Excerpt               string  `json:"excerpt"`
	Origin                Origin  `json:"origin"`
	SemanticScore         float64 `json:"semantic_score,omitempty"`
	LexicalScore          float64 `json:"lexical_score,omitempty"`
	FusedScore            float64 `json:"fused_score"`
	Rank                  int     `json:"rank"`
	PersonalisationShifted bool   `json:"personalisation_shifted,omitempty"`
}

// FusionParams records the parameters used to fuse legs into one ranking,
// so a re-run with identical inputs reproduces the identical ranking.
type FusionParams struct {
	KRRF                 int     `json:"k_rrf"`
	PersonalisationAlpha float64 `json:"personalisation_alpha"`
}

// RetrievalRecord is one call to the federator: the query issued, the
// fused/ranked results, and the fusion parameters used.
type RetrievalRecord struct {
	Query        string         `json:"query"`
	Hits         []RetrievalHit `json:"hits"`
	Fusion       FusionParams   `json:"fusion"`
	ThemeTag     string         `json:"theme_tag,omitempty"`
	Annotations  []string       `json:"annotations,omitempty"`
}
