package config

// LLMConfig configures the model-call client shared by every agent kind.
type LLMConfig struct {
	Provider string `yaml:"provider"` // genai, anthropic, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"` // default model, overridden per agent kind below
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`

	// ModelsByKind overrides Model for a specific agent kind ("analyser",
	// "researcher", "drafter", "critic", "formatter"). Kinds absent from
	// this map fall back to Model.
	ModelsByKind map[string]string `yaml:"models_by_kind"`
}

// ModelFor returns the model configured for an agent kind, falling back to
// the tree-wide default.
func (c LLMConfig) ModelFor(kind string) string {
	if m, ok := c.ModelsByKind[kind]; ok && m != "" {
		return m
	}
	return c.Model
}

// ValidProviders lists all supported model providers.
var ValidProviders = []string{"genai", "anthropic", "openai", "gemini", "xai", "openrouter"}
