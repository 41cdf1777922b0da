package config

// AgentProfile configures the model-call parameters for one agent kind
// (analyser, researcher, drafter, critic, formatter).
type AgentProfile struct {
	Model               string  `yaml:"model" json:"model"`
	Temperature         float64 `yaml:"temperature" json:"temperature"`
	TopP                float64 `yaml:"top_p" json:"top_p"`
	MaxContextTokens    int     `yaml:"max_context_tokens" json:"max_context_tokens"`
	MaxOutputTokens     int     `yaml:"max_output_tokens" json:"max_output_tokens"`
	MaxExecutionTimeSec int     `yaml:"max_execution_time_sec" json:"max_execution_time_sec"`
	MaxRetries          int     `yaml:"max_retries" json:"max_retries"`
}

// GetAgentProfile returns the profile for a given agent kind, falling back
// to the tree-wide default profile.
func (c *Config) GetAgentProfile(kind string) AgentProfile {
	if profile, ok := c.AgentProfiles[kind]; ok {
		return profile
	}
	return c.DefaultAgent
}

// SetAgentProfile updates or adds an agent profile.
func (c *Config) SetAgentProfile(kind string, profile AgentProfile) {
	if c.AgentProfiles == nil {
		c.AgentProfiles = make(map[string]AgentProfile)
	}
	c.AgentProfiles[kind] = profile
}

func defaultAgentProfiles() map[string]AgentProfile {
	return map[string]AgentProfile{
		"analyser": {
			Model: "gemini-2.5-flash", Temperature: 0.2, TopP: 0.9,
			MaxContextTokens: 20000, MaxOutputTokens: 2000,
			MaxExecutionTimeSec: 120, MaxRetries: 3,
		},
		"researcher": {
			Model: "gemini-2.5-flash", Temperature: 0.4, TopP: 0.95,
			MaxContextTokens: 30000, MaxOutputTokens: 4000,
			MaxExecutionTimeSec: 300, MaxRetries: 3,
		},
		"drafter": {
			Model: "gemini-2.5-pro", Temperature: 0.5, TopP: 0.9,
			MaxContextTokens: 40000, MaxOutputTokens: 8000,
			MaxExecutionTimeSec: 300, MaxRetries: 3,
		},
		"critic": {
			Model: "gemini-2.5-pro", Temperature: 0.1, TopP: 0.9,
			MaxContextTokens: 40000, MaxOutputTokens: 3000,
			MaxExecutionTimeSec: 180, MaxRetries: 2,
		},
		"formatter": {
			Model: "gemini-2.5-flash", Temperature: 0.0, TopP: 0.9,
			MaxContextTokens: 20000, MaxOutputTokens: 6000,
			MaxExecutionTimeSec: 120, MaxRetries: 2,
		},
	}
}
