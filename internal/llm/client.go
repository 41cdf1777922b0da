// Package llm provides the model-call client shared by every agent kind:
// a thin Client interface, a GenAI-backed implementation, and a rate/retry
// scheduler, shared across tenants, that every call is routed through.
package llm

import (
	"context"
	"errors"
)

// Client is the minimal surface an agent turn needs from a model backend.
// CompleteWithSystem separates the system instruction from the user turn so
// callers never have to hand-splice prompts together.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrStreamingNotSupported is returned by clients that only implement the
// synchronous Complete/CompleteWithSystem surface.
var ErrStreamingNotSupported = errors.New("llm: streaming not supported by this client")
