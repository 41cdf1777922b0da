package config

// ExecutionConfig holds worker-pool, queue and node-timeout settings. They
// are loaded and defaulted, but no package acts on them: the supervisor has
// no worker pool or run queue, and drives one run per Run call.
type ExecutionConfig struct {
	// WorkerPoolSize is a worker-pool size setting; nothing reads it.
	WorkerPoolSize int `yaml:"worker_pool_size" json:"worker_pool_size,omitempty"`

	// QueueDepth is a run-queue depth setting; nothing reads it.
	QueueDepth int `yaml:"queue_depth" json:"queue_depth,omitempty"`

	// DefaultTimeout is a per-node execution timeout, parsed by
	// Config.GetExecutionTimeout; nothing calls that getter.
	DefaultTimeout string `yaml:"default_timeout" json:"default_timeout,omitempty"`
}
