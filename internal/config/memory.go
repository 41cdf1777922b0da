package config

// RetrievalConfig configures the federated retrieval leg fan-out and fusion.
type RetrievalConfig struct {
	KDefault int `yaml:"k_default"` // default result count if caller omits k
	KCeiling int `yaml:"k_ceiling"` // hard ceiling regardless of caller-requested k

	KRRF int `yaml:"k_rrf"` // reciprocal rank fusion constant, default 60

	// PersonalizationAlpha weights the tenant centroid shift applied to the
	// query embedding before the semantic leg runs. 0 disables personalisation.
	PersonalizationAlpha float64 `yaml:"personalization_alpha"`

	CentroidTTL string `yaml:"centroid_ttl"` // tenant centroid cache entry lifetime
	LegDeadline string `yaml:"leg_deadline"` // per-leg timeout before it is marked degraded
}

// DefaultRetrievalConfig returns sensible defaults.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		KDefault:             20,
		KCeiling:             100,
		KRRF:                 60,
		PersonalizationAlpha: 0.25,
		CentroidTTL:          "1h",
		LegDeadline:          "5s",
	}
}

// CacheConfig configures the TTL'd snapshot caches (tenant policy snapshot,
// tenant centroid).
type CacheConfig struct {
	DefaultTTL      string `yaml:"default_ttl"`
	CleanupInterval string `yaml:"cleanup_interval"`
}

// DefaultCacheConfig returns sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:      "5m",
		CleanupInterval: "10m",
	}
}

// EmbeddingConfig configures the vector embedding engine.
// Supports Ollama (local) and GenAI (cloud) backends.
type EmbeddingConfig struct {
	// Provider: "ollama" or "genai"
	Provider string `yaml:"provider" json:"provider"`

	// Ollama Configuration (local embedding server)
	OllamaEndpoint string `yaml:"ollama_endpoint" json:"ollama_endpoint"` // Default: "http://localhost:11434"
	OllamaModel    string `yaml:"ollama_model" json:"ollama_model"`       // Default: "embeddinggemma"

	// GenAI Configuration (Google cloud embedding)
	GenAIAPIKey string `yaml:"genai_api_key" json:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model" json:"genai_model"` // Default: "gemini-embedding-001"

	// TaskType for GenAI embeddings:
	// SEMANTIC_SIMILARITY, CLASSIFICATION, CLUSTERING,
	// RETRIEVAL_DOCUMENT, RETRIEVAL_QUERY, QUESTION_ANSWERING
	TaskType string `yaml:"task_type" json:"task_type"` // Default: "SEMANTIC_SIMILARITY"
}
