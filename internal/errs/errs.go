// Package errs defines the closed error taxonomy every component wraps
// its failures in, so a caller can errors.As into a *Error and branch on
// Kind instead of matching message strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a closed tag identifying why an operation failed.
type Kind string

const (
	InputInvalid      Kind = "input_invalid"
	PolicyDeny        Kind = "policy_deny"
	RetrievalDegraded Kind = "retrieval_degraded"
	RetrievalFailed   Kind = "retrieval_failed"
	ToolRecoverable   Kind = "tool_recoverable"
	ToolFatal         Kind = "tool_fatal"
	ModelTransient    Kind = "model_transient"
	ModelFatal        Kind = "model_fatal"
	ParseFailure      Kind = "parse_failure"
	BudgetExhausted   Kind = "budget_exhausted"
	Cancelled         Kind = "cancelled"
	AuditWriteFailed  Kind = "audit_write_failed"
)

// Retriable reports whether an error of this kind should be retried by the
// caller (ToolRecoverable, ModelTransient) rather than surfaced as terminal.
func (k Kind) Retriable() bool {
	switch k {
	case ToolRecoverable, ModelTransient:
		return true
	default:
		return false
	}
}

// Error wraps a Kind and an optional cause and rule/tool identifier.
type Error struct {
	Kind   Kind
	Cause  error
	RuleID string // set for PolicyDeny: the rule that denied
	Tool   string // set for ToolRecoverable/ToolFatal: the offending tool
}

func (e *Error) Error() string {
	switch {
	case e.RuleID != "" && e.Cause != nil:
		return fmt.Sprintf("%s (rule=%s): %v", e.Kind, e.RuleID, e.Cause)
	case e.RuleID != "":
		return fmt.Sprintf("%s (rule=%s)", e.Kind, e.RuleID)
	case e.Tool != "" && e.Cause != nil:
		return fmt.Sprintf("%s (tool=%s): %v", e.Kind, e.Tool, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain *Error of the given kind wrapping cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Newf builds a plain *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Deny builds a PolicyDeny error carrying the denying rule's identifier.
func Deny(ruleID string, cause error) *Error {
	return &Error{Kind: PolicyDeny, RuleID: ruleID, Cause: cause}
}

// ToolErr builds a ToolRecoverable or ToolFatal error naming the tool.
func ToolErr(kind Kind, tool string, cause error) *Error {
	return &Error{Kind: kind, Tool: tool, Cause: cause}
}

// As reports the Kind of err if it (or something it wraps) is an *Error,
// and ok=false otherwise.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err's Kind equals want.
func Is(err error, want Kind) bool {
	k, ok := As(err)
	return ok && k == want
}
