package config

import "fmt"

// CoreLimits enforces system-wide resource constraints on the orchestrator.
type CoreLimits struct {
	MaxTotalMemoryMB      int `yaml:"max_total_memory_mb" json:"max_total_memory_mb"`           // Total RAM limit
	MaxConcurrentRuns     int `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`           // Max parallel runs across all tenants
	MaxConcurrentAPICalls int `yaml:"max_concurrent_api_calls" json:"max_concurrent_api_calls"` // Max simultaneous model calls
	MaxRunDurationMin     int `yaml:"max_run_duration_min" json:"max_run_duration_min"`         // Hard wall-clock ceiling per run
	MaxFactsInKernel      int `yaml:"max_facts_in_kernel" json:"max_facts_in_kernel"`           // Policy EDB size limit
	MaxDerivedFactsLimit  int `yaml:"max_derived_facts_limit" json:"max_derived_facts_limit"`   // Mangle evaluation gas limit
}

// ValidateCoreLimits checks that core limits are within acceptable ranges.
func (c *Config) ValidateCoreLimits() error {
	if c.CoreLimits.MaxTotalMemoryMB < 512 {
		return fmt.Errorf("max_total_memory_mb must be >= 512 MB")
	}
	if c.CoreLimits.MaxConcurrentRuns < 1 {
		return fmt.Errorf("max_concurrent_runs must be >= 1")
	}
	if c.CoreLimits.MaxFactsInKernel < 1000 {
		return fmt.Errorf("max_facts_in_kernel must be >= 1000")
	}
	if c.CoreLimits.MaxDerivedFactsLimit < 1000 {
		return fmt.Errorf("max_derived_facts_limit must be >= 1000")
	}
	return nil
}

// EnforceCoreLimits returns enforcement parameters for the policy engine and
// the run scheduler. This ensures config values are actually used, not just
// stored.
func (c *Config) EnforceCoreLimits() map[string]int {
	return map[string]int{
		"max_facts":       c.CoreLimits.MaxFactsInKernel,
		"max_derived":     c.CoreLimits.MaxDerivedFactsLimit,
		"max_runs":        c.CoreLimits.MaxConcurrentRuns,
		"max_memory_mb":   c.CoreLimits.MaxTotalMemoryMB,
		"run_duration_min": c.CoreLimits.MaxRunDurationMin,
	}
}
