package config

// PolicyConfig configures the policy and PII gate.
type PolicyConfig struct {
	SourcePath string `yaml:"source_path"` // Mangle policy rule file(s); empty triggers embedded defaults

	// Checkpoints lists the checkpoint names evaluated in order:
	// on_ingest, before_retrieval, before_model_call, before_emit, on_export.
	Checkpoints []string `yaml:"checkpoints"`

	// DefaultDecision applies when no rule matches a checkpoint ("allow").
	DefaultDecision string `yaml:"default_decision"`
}

// DefaultPolicyConfig returns sensible defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Checkpoints:     []string{"on_ingest", "before_retrieval", "before_model_call", "before_emit", "on_export"},
		DefaultDecision: "allow",
	}
}

// PIIConfig configures PII detection and redaction.
type PIIConfig struct {
	DefaultStrategy string   `yaml:"default_strategy"` // typed, hashed, masked
	EnabledKinds    []string `yaml:"enabled_kinds"`
}

// DefaultPIIConfig returns sensible defaults: all eight domain.PIIKind
// values enabled, typed redaction as the default strategy.
func DefaultPIIConfig() PIIConfig {
	return PIIConfig{
		DefaultStrategy: "typed",
		EnabledKinds: []string{
			"tax_id", "corporate_id", "email", "phone",
			"national_id", "address", "card_number", "bank_account",
		},
	}
}

// BudgetConfig configures per-run execution budgets.
type BudgetConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Deadline      string  `yaml:"deadline"`
	CostCeiling   float64 `yaml:"cost_ceiling"`
	MaxRevisions  int     `yaml:"max_revisions"`
}

// DefaultBudgetConfig returns sensible defaults, matching
// domain.ResolveConfig's per-run defaults (max 10 iterations, 300s
// deadline) so a run submitted with no explicit budget behaves identically
// whether the caller inspects config.BudgetConfig or the resolved
// domain.ConfigBundle.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		MaxIterations: 10,
		Deadline:      "5m",
		CostCeiling:   5.00,
		MaxRevisions:  2,
	}
}
