// Package tools provides the plugin-style registry of callable tools that
// agent turns may invoke mid-turn (retrieval, citation formatting, quality
// scoring, document analysis). Tools are registered once at startup and
// looked up by name; a tool has no knowledge of which agent kind calls it.
//
// Architecture:
//
//	Agent turn → allowed tool names → Registry.Get() → Tool.Execute()
package tools

import (
	"context"
)

// ToolCategory classifies tools for task-based filtering.
type ToolCategory string

const (
	// CategoryRetrieval covers the federated retrieval wrapper.
	CategoryRetrieval ToolCategory = "/retrieval"

	// CategoryCitation covers citation lookup and formatting.
	CategoryCitation ToolCategory = "/citation"

	// CategoryQuality covers draft quality scoring and critique support.
	CategoryQuality ToolCategory = "/quality"

	// CategoryAnalysis covers document structure/content analysis.
	CategoryAnalysis ToolCategory = "/analysis"

	// CategoryGeneral is for tools usable by any task kind.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
// This enables LLM tool calling with proper validation.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines a modular tool that any agent can use.
// Tools are registered in the Registry and looked up by name, or by
// category through Registry.FilterByTaskKind.
type Tool struct {
	// Name is the unique identifier for the tool.
	// Registry lookups (Get, Has, Execute) are keyed by it.
	Name string

	// Description explains what the tool does.
	// Used for LLM tool calling and documentation.
	Description string

	// Category classifies the tool for intent filtering.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority is used when multiple tools match.
	// Higher priority tools are preferred (default 50).
	Priority int

	// RequiresContext indicates if the tool needs session context.
	RequiresContext bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the string output from the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
