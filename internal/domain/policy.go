package domain

import "time"

// PolicyRuleKind groups a rule by the concern it governs.
type PolicyRuleKind string

const (
	RuleAccessControl    PolicyRuleKind = "access-control"
	RulePIIHandling      PolicyRuleKind = "pii-handling"
	RuleAuditLevel       PolicyRuleKind = "audit-level"
	RuleDataRetention    PolicyRuleKind = "data-retention"
	RuleContentFilter    PolicyRuleKind = "content-filter"
	RuleExportRestriction PolicyRuleKind = "export-restriction"
)

// PolicyAction is what a rule does when its predicate matches.
type PolicyAction string

const (
	ActionAllow             PolicyAction = "allow"
	ActionDeny              PolicyAction = "deny"
	ActionRedact            PolicyAction = "redact"
	ActionAnnotate          PolicyAction = "annotate"
	ActionRequireHumanReview PolicyAction = "require-human-review"
)

// restrictiveness orders actions from least to most restrictive, used to
// resolve several matching rules down to one decision: most-restrictive-wins.
var restrictiveness = map[PolicyAction]int{
	ActionAllow:              0,
	ActionAnnotate:           1,
	ActionRedact:             2,
	ActionRequireHumanReview: 3,
	ActionDeny:               4,
}

// MoreRestrictive reports whether a is strictly more restrictive than b.
func MoreRestrictive(a, b PolicyAction) bool {
	return restrictiveness[a] > restrictiveness[b]
}

// PolicyRule is one ordered rule within a policy version. Predicate is
// evaluated against run state and retrieval context by internal/policy;
// domain only carries the rule's identity and declared action.
type PolicyRule struct {
	ID        string         `json:"id"`
	Predicate string         `json:"predicate"`
	Action    PolicyAction   `json:"action"`
}

// Policy is one immutable version of a tenant's rule set.
type Policy struct {
	TenantID      string         `json:"tenant_id"`
	Identifier    string         `json:"identifier"`
	Kind          PolicyRuleKind `json:"kind"`
	Version       int            `json:"version"`
	Rules         []PolicyRule   `json:"rules"`
	EffectiveFrom time.Time      `json:"effective_from"`
}

// PolicySnapshot is the resolved rule set a run pinned at start time. A
// policy edit mid-run never retroactively applies: the snapshot captured
// at StartedAt is what governs every checkpoint in that run.
type PolicySnapshot struct {
	TenantID string       `json:"tenant_id"`
	Version  int          `json:"version"`
	Rules    []PolicyRule `json:"rules"`
}

// Checkpoint names a point in the run lifecycle where the policy gate is
// consulted.
type Checkpoint string

const (
	CheckpointOnIngest         Checkpoint = "on_ingest"
	CheckpointBeforeRetrieval  Checkpoint = "before_retrieval"
	CheckpointBeforeModelCall  Checkpoint = "before_model_call"
	CheckpointBeforeEmit       Checkpoint = "before_emit"
	CheckpointOnExport         Checkpoint = "on_export"
)

// Decision is the outcome of evaluating a policy snapshot at a checkpoint.
type Decision struct {
	Action PolicyAction `json:"action"`
	RuleID string       `json:"rule_id,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// PIIKind is one of the eight detectable categories of personal or
// commercial identifying information.
type PIIKind string

const (
	PIITaxID         PIIKind = "tax_id"
	PIICorporateID   PIIKind = "corporate_id"
	PIIEmail         PIIKind = "email"
	PIIPhone         PIIKind = "phone"
	PIINationalID    PIIKind = "national_id"
	PIIAddress       PIIKind = "address"
	PIICardNumber    PIIKind = "card_number"
	PIIBankAccount   PIIKind = "bank_account"
)

// RedactionStrategy is how a detected PII span gets masked before it
// leaves the policy gate.
type RedactionStrategy string

const (
	RedactionTyped  RedactionStrategy = "typed"
	RedactionHashed RedactionStrategy = "hashed"
	RedactionMasked RedactionStrategy = "masked"
)

// PIIDetection is one detected span, immutable within a run once produced.
type PIIDetection struct {
	Kind               PIIKind           `json:"kind"`
	Start              int               `json:"start"`
	End                int               `json:"end"`
	VerifierDigitValid bool              `json:"verifier_digit_valid"`
	Confidence         float64           `json:"confidence"`
	Strategy           RedactionStrategy `json:"strategy"`
	Redacted           string            `json:"redacted"`
}
