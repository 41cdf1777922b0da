package config

import "time"

// LLMTimeouts centralizes timeout configuration for model-call operations.
//
// In Go, the SHORTEST timeout in a chain wins: if the HTTP client allows
// 10 minutes but the call is wrapped in a 90-second context, the context
// wins and the call fails after 90 seconds. These values are kept in sync
// so a run's per-call timeout never races its own HTTP client.
type LLMTimeouts struct {
	// HTTPClientTimeout bounds a single model-call HTTP round trip.
	HTTPClientTimeout time.Duration `json:"http_client_timeout"`

	// SlotAcquisitionTimeout bounds how long a call waits for a per-tenant
	// rate-limiter slot before giving up.
	SlotAcquisitionTimeout time.Duration `json:"slot_acquisition_timeout"`

	// PerCallTimeout wraps the context passed to a single model call.
	PerCallTimeout time.Duration `json:"per_call_timeout"`

	RetryBackoffBase time.Duration `json:"retry_backoff_base"`
	RetryBackoffMax  time.Duration `json:"retry_backoff_max"`
	MaxRetries       int           `json:"max_retries"`

	// RateLimitDelay is the minimum spacing between consecutive calls to
	// the same model endpoint.
	RateLimitDelay time.Duration `json:"rate_limit_delay"`

	// RetrievalLegTimeout bounds a single federated-retrieval leg (semantic,
	// lexical, or external). A leg that exceeds this is marked degraded,
	// not failed.
	RetrievalLegTimeout time.Duration `json:"retrieval_leg_timeout"`

	// NodeExecutionTimeout bounds a single graph-node execution: tool call
	// plus the model call that interprets its result.
	NodeExecutionTimeout time.Duration `json:"node_execution_timeout"`

	// RunDeadline is the default wall-clock budget for an entire run.
	RunDeadline time.Duration `json:"run_deadline"`
}

// DefaultLLMTimeouts returns sensible defaults for a cloud model endpoint
// with multi-minute latency under load.
func DefaultLLMTimeouts() LLMTimeouts {
	return LLMTimeouts{
		HTTPClientTimeout:      2 * time.Minute,
		SlotAcquisitionTimeout: 2 * time.Minute,
		PerCallTimeout:         2 * time.Minute,
		RetryBackoffBase:       1 * time.Second,
		RetryBackoffMax:        30 * time.Second,
		MaxRetries:             3,
		RateLimitDelay:         200 * time.Millisecond,
		RetrievalLegTimeout:    5 * time.Second,
		NodeExecutionTimeout:   3 * time.Minute,
		RunDeadline:            20 * time.Minute,
	}
}

// FastLLMTimeouts returns shorter timeouts for interactive/low-latency use.
func FastLLMTimeouts() LLMTimeouts {
	return LLMTimeouts{
		HTTPClientTimeout:      30 * time.Second,
		SlotAcquisitionTimeout: 30 * time.Second,
		PerCallTimeout:         30 * time.Second,
		RetryBackoffBase:       250 * time.Millisecond,
		RetryBackoffMax:        5 * time.Second,
		MaxRetries:             2,
		RateLimitDelay:         100 * time.Millisecond,
		RetrievalLegTimeout:    2 * time.Second,
		NodeExecutionTimeout:   45 * time.Second,
		RunDeadline:            5 * time.Minute,
	}
}

// Global singleton for consistent timeout access across packages that don't
// carry an explicit *config.Config (e.g. default-constructed clients in tests).
var globalLLMTimeouts = DefaultLLMTimeouts()

// GetLLMTimeouts returns the global LLM timeout configuration.
func GetLLMTimeouts() LLMTimeouts {
	return globalLLMTimeouts
}

// SetLLMTimeouts updates the global LLM timeout configuration. Call early
// during startup, before any run is accepted.
func SetLLMTimeouts(t LLMTimeouts) {
	globalLLMTimeouts = t
}
