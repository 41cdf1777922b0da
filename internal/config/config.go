package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legalforge/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config holds all legalforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Model-call configuration
	LLM LLMConfig `yaml:"llm"`

	// Policy rule engine configuration
	Mangle MangleConfig `yaml:"mangle"`

	// Federated retrieval configuration
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Policy & PII gate configuration
	Policy PolicyConfig `yaml:"policy"`
	PII    PIIConfig    `yaml:"pii"`

	// Per-run budget defaults
	Budget BudgetConfig `yaml:"budget"`

	// Embedding engine configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// TTL'd snapshot cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Supervisor worker pool configuration
	Execution ExecutionConfig `yaml:"execution"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Per-agent-kind model/decoding profiles
	AgentProfiles map[string]AgentProfile `yaml:"agent_profiles" json:"agent_profiles"`
	DefaultAgent  AgentProfile             `yaml:"default_agent" json:"default_agent"`

	// Core resource limits (enforced system-wide)
	CoreLimits CoreLimits `yaml:"core_limits" json:"core_limits"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "legalforge",
		Version: "0.1.0",

		LLM: LLMConfig{
			Provider: "genai",
			Model:    "gemini-2.5-flash",
			Timeout:  "120s",
		},

		Mangle: MangleConfig{
			SchemaPath:   "", // Empty triggers embedded defaults + policy extensions
			PolicyPath:   "", // Empty triggers embedded defaults + policy extensions
			FactLimit:    1000000,
			QueryTimeout: "30s",
		},

		Retrieval: DefaultRetrievalConfig(),
		Policy:    DefaultPolicyConfig(),
		PII:       DefaultPIIConfig(),
		Budget:    DefaultBudgetConfig(),
		Cache:     DefaultCacheConfig(),

		Embedding: EmbeddingConfig{
			Provider:   "genai",
			GenAIModel: "gemini-embedding-001",
			TaskType:   "SEMANTIC_SIMILARITY",
		},

		Execution: ExecutionConfig{
			WorkerPoolSize: 4,
			QueueDepth:     100,
			DefaultTimeout: "3m",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "legalforge.log",
		},

		DefaultAgent: AgentProfile{
			Model: "gemini-2.5-flash", Temperature: 0.4, TopP: 0.9,
			MaxContextTokens: 20000, MaxOutputTokens: 4000,
			MaxExecutionTimeSec: 180, MaxRetries: 3,
		},

		AgentProfiles: defaultAgentProfiles(),

		CoreLimits: CoreLimits{
			MaxTotalMemoryMB:      4096,
			MaxConcurrentRuns:     8,
			MaxConcurrentAPICalls: 16,
			MaxRunDurationMin:     30,
			MaxFactsInKernel:      250000,
			MaxDerivedFactsLimit:  100000,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("Loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("Config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			logging.BootDebug("Config loaded: provider=%s", cfg.LLM.Provider)
			return cfg, nil
		}
		logging.BootError("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("Failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("Config loaded: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Model API key from environment (checked in priority order)
	if key := os.Getenv("GENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "genai"
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("XAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "xai"
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openrouter"
	}

	// Embedding configuration from environment
	if key := os.Getenv("EMBEDDING_GENAI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.Embedding.Provider == "" || c.Embedding.Provider == "ollama" {
			c.Embedding.Provider = "genai"
		}
	} else if key := os.Getenv("GENAI_API_KEY"); key != "" && c.Embedding.GenAIAPIKey == "" {
		c.Embedding.GenAIAPIKey = key
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}
	if model := os.Getenv("OLLAMA_EMBEDDING_MODEL"); model != "" {
		c.Embedding.OllamaModel = model
	}

	if path := os.Getenv("LEGALFORGE_POLICY_PATH"); path != "" {
		c.Policy.SourcePath = path
	}
}

// GetLLMTimeout returns the model-call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetQueryTimeout returns the policy-engine query timeout as a duration.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Mangle.QueryTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetExecutionTimeout returns the default graph-node execution timeout.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.DefaultTimeout)
	if err != nil {
		return 3 * time.Minute
	}
	return d
}

// GetBudgetDeadline returns the default per-run deadline as a duration.
func (c *Config) GetBudgetDeadline() time.Duration {
	d, err := time.ParseDuration(c.Budget.Deadline)
	if err != nil {
		return 20 * time.Minute
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("model API key not configured (set GENAI_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, or XAI_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid model provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	return nil
}
