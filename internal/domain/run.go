// Package domain defines the run-centric data model: the state a run
// accumulates as it moves through the graph, the documents and policy it
// reads, and the records it seals on the way out.
package domain

import (
	"sort"
	"time"
)

// Status is the terminal or in-flight state of a run.
type Status string

const (
	StatusPending         Status = "pending"
	StatusRunning         Status = "running"
	StatusAwaitingTool    Status = "awaiting_tool"
	StatusAwaitingModel   Status = "awaiting_model"
	StatusSucceeded       Status = "succeeded"
	StatusFailed          Status = "failed"
	StatusCancelled       Status = "cancelled"
	StatusBudgetExhausted Status = "budget_exhausted"
)

// Terminal reports whether a run in this status can no longer change.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled, StatusBudgetExhausted:
		return true
	default:
		return false
	}
}

// TaskKind is the kind of document operation a run performs.
type TaskKind string

const (
	TaskDraft     TaskKind = "draft"
	TaskReview    TaskKind = "review"
	TaskSummarise TaskKind = "summarise"
	TaskAnswer    TaskKind = "answer"
)

// AgentKind identifies one of the five roles the graph executor dispatches
// turns to. It is a closed sum type, not a base class: internal/agent keys
// prompt builders, parsers and default models off this value.
type AgentKind string

const (
	AgentAnalyser   AgentKind = "analyser"
	AgentResearcher AgentKind = "researcher"
	AgentDrafter    AgentKind = "drafter"
	AgentCritic     AgentKind = "critic"
	AgentFormatter  AgentKind = "formatter"
)

// CriticVerdict is the outcome of a critic turn.
type CriticVerdict string

const (
	VerdictAccept CriticVerdict = "accept"
	VerdictRevise CriticVerdict = "revise"
)

// ExternalDocument is a caller-supplied document attached to a run. Immutable
// once ingested.
type ExternalDocument struct {
	SourceID string            `json:"source_id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ConfigBundle is the per-run tunable surface, one field per submit-run
// option. Zero values are resolved to defaults by domain.ResolveConfig.
type ConfigBundle struct {
	// UseInternalRAG and EnablePersonalisation default to true; *bool lets
	// ResolveConfig distinguish "unset" from an explicit false.
	UseInternalRAG         *bool             `json:"use_internal_rag,omitempty"`
	KTotal                 int               `json:"k_total"`
	EnablePersonalisation  *bool             `json:"enable_personalisation,omitempty"`
	PersonalisationAlpha   float64           `json:"personalisation_alpha"`
	MaxIterations          int               `json:"max_iterations"`
	DeadlineMS             int64             `json:"deadline_ms"`
	CostCeiling            float64           `json:"cost_ceiling"`
	ModelPreferences       map[string]string `json:"model_preferences,omitempty"`
	PIIStrategy            string            `json:"pii_strategy"`
	DocumentType           string            `json:"document_type,omitempty"`
}

// Budget tracks the three independently enforced ceilings for a run.
type Budget struct {
	MaxIterations int
	Deadline      time.Duration
	CostCeiling   float64

	IterationsUsed int
	CostUsed       float64
	StartedAt      time.Time
}

// IterationsExceeded reports whether the iteration ceiling has been reached.
func (b Budget) IterationsExceeded() bool { return b.IterationsUsed >= b.MaxIterations }

// DeadlineExceeded reports whether the wall-clock deadline has passed, given now.
func (b Budget) DeadlineExceeded(now time.Time) bool {
	return b.Deadline > 0 && now.Sub(b.StartedAt) >= b.Deadline
}

// CostExceeded reports whether the monetary ceiling has been reached.
func (b Budget) CostExceeded() bool { return b.CostCeiling > 0 && b.CostUsed >= b.CostCeiling }

// Exhausted reports whether any of the three budgets has been exceeded.
func (b Budget) Exhausted(now time.Time) bool {
	return b.IterationsExceeded() || b.DeadlineExceeded(now) || b.CostExceeded()
}

// TurnRecord is one append-only entry in a run's trace. Turn i's output is
// visible only to turns j > i.
type TurnRecord struct {
	Sequence     int           `json:"sequence"`
	Agent        AgentKind     `json:"agent"`
	ModelID      string        `json:"model_id"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Duration     time.Duration `json:"duration"`
	Summary      string        `json:"summary"`
	Error        string        `json:"error,omitempty"`
}

// WorkingItem is one writer-attributed, versioned slot in the working set
// (draft text, critic verdict text, a research finding, formatter output).
type WorkingItem struct {
	Text     string    `json:"text"`
	WriterID AgentKind `json:"writer_id"`
	Version  int       `json:"version"`
}

// WorkingSet is the mutable scratch space agents read from and write to
// across turns. Each field's version counter increments monotonically.
type WorkingSet struct {
	Draft            *WorkingItem   `json:"draft,omitempty"`
	CriticVerdicts   []WorkingItem  `json:"critic_verdicts,omitempty"`
	ResearchFindings []WorkingItem  `json:"research_findings,omitempty"`
	Formatted        *WorkingItem   `json:"formatted,omitempty"`
}

// LatestVerdict returns the most recently written critic verdict, or the
// zero value and false if none exists yet. Where a critic contradicts an
// earlier verdict in the same run, the latest one wins.
func (w WorkingSet) LatestVerdict() (WorkingItem, bool) {
	if len(w.CriticVerdicts) == 0 {
		return WorkingItem{}, false
	}
	return w.CriticVerdicts[len(w.CriticVerdicts)-1], true
}

// RunState is the full mutable state of one run as it moves through the
// graph executor. Everything the supervisor, retrieval federator, policy
// gate and audit recorder read or write hangs off this struct.
type RunState struct {
	RunID        string    `json:"run_id"`
	TenantID     string    `json:"tenant_id"`
	UserID       string    `json:"user_id,omitempty"`
	TaskKind     TaskKind  `json:"task_kind"`
	DocumentType string    `json:"document_type"`
	StartedAt    time.Time `json:"started_at"`

	Query         string             `json:"query"`
	ExternalDocs  []ExternalDocument `json:"external_docs,omitempty"`
	Config        ConfigBundle       `json:"config"`

	Working WorkingSet `json:"working"`
	Trace   []TurnRecord `json:"trace"`

	Retrieval  []RetrievalRecord `json:"retrieval,omitempty"`
	Policy     PolicySnapshot    `json:"policy"`
	PIIReport  []PIIDetection    `json:"pii_report,omitempty"`
	Budget     Budget            `json:"-"`

	// NeedsExternalInfo is set by the most recent analyser turn and drives
	// whether the graph executor routes to the researcher before drafting.
	NeedsExternalInfo bool `json:"needs_external_info"`

	Status     Status `json:"status"`
	ErrorKind  string `json:"error_kind,omitempty"`
	ErrorCause string `json:"error_cause,omitempty"`
}

// AppendTurn appends a turn record. Trace is append-only: callers must not
// mutate or remove prior entries.
func (r *RunState) AppendTurn(t TurnRecord) {
	t.Sequence = len(r.Trace)
	r.Trace = append(r.Trace, t)
}

// ConsumedSourceIDs returns the sorted, deduplicated set of source ids
// referenced by any retrieval record's hits, the input to the context hash.
func (r *RunState) ConsumedSourceIDs() []string {
	seen := make(map[string]struct{})
	for _, rec := range r.Retrieval {
		for _, hit := range rec.Hits {
			seen[hit.SourceID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
