// Package supervisor implements the graph executor: the state machine that
// routes a run through the analyser, researcher, drafter, critic and
// formatter agents, consulting the policy gate at every checkpoint and
// enforcing the three run budgets, until the run reaches a terminal status.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"legalforge/internal/agent"
	"legalforge/internal/domain"
	"legalforge/internal/errs"
	"legalforge/internal/logging"
	"legalforge/internal/pii"
	"legalforge/internal/policy"
	"legalforge/internal/retrieval"
)

// maxRevisions bounds how many drafter/critic round-trips a run may take
// before the executor forces acceptance of the current draft. Matches
// config.DefaultBudgetConfig's MaxRevisions.
const maxRevisions = 2

// PolicySource resolves the policy snapshot a run pins at start time.
type PolicySource interface {
	Snapshot(ctx context.Context, tenantID string) (domain.PolicySnapshot, error)
}

// AuditSink seals a terminated run's audit record. A write failure here
// always downgrades a run's outcome to failed, even if generation itself
// succeeded.
type AuditSink interface {
	Seal(ctx context.Context, state *domain.RunState) error
}

// Executor is the graph executor: one Federator, one agent Runtime, one
// policy Gate, one policy source and one audit sink wired together.
type Executor struct {
	Agents    *agent.Runtime
	Retrieval *retrieval.Federator
	Gate      *policy.Gate
	Policies  PolicySource
	Audit     AuditSink
	PIIKinds  []domain.PIIKind
	PIIStrat  domain.RedactionStrategy
}

// New builds an Executor from its wired dependencies.
func New(agents *agent.Runtime, federator *retrieval.Federator, gate *policy.Gate, policies PolicySource, audit AuditSink, piiKinds []domain.PIIKind) *Executor {
	return &Executor{Agents: agents, Retrieval: federator, Gate: gate, Policies: policies, Audit: audit, PIIKinds: piiKinds}
}

// Submit is the input to a new run.
type Submit struct {
	TenantID     string
	UserID       string
	TaskKind     domain.TaskKind
	DocumentType string
	Query        string
	ExternalDocs []domain.ExternalDocument
	Config       domain.ConfigBundle
}

// NewRun resolves a submission into a fresh, pending RunState. Every
// external document without a caller-supplied source id is assigned one, so
// the context hash and citation trail always have a stable identifier to
// point at.
func NewRun(sub Submit) *domain.RunState {
	resolved := domain.ResolveConfig(sub.Config)
	resolved.DocumentType = sub.DocumentType

	docs := make([]domain.ExternalDocument, len(sub.ExternalDocs))
	copy(docs, sub.ExternalDocs)
	for i, d := range docs {
		if d.SourceID == "" {
			docs[i].SourceID = "ext-" + uuid.NewString()
		}
	}

	return &domain.RunState{
		RunID:        uuid.NewString(),
		TenantID:     sub.TenantID,
		UserID:       sub.UserID,
		TaskKind:     sub.TaskKind,
		DocumentType: sub.DocumentType,
		StartedAt:    time.Now(),
		Query:        sub.Query,
		ExternalDocs: docs,
		Config:       resolved,
		Status:       domain.StatusPending,
		Budget: domain.Budget{
			MaxIterations: resolved.MaxIterations,
			Deadline:      time.Duration(resolved.DeadlineMS) * time.Millisecond,
			CostCeiling:   resolved.CostCeiling,
			StartedAt:     time.Now(),
		},
	}
}

// Run drives state through the graph until it reaches a terminal status.
// ctx cancellation is checked between turns (cooperative cancellation): a
// cancelled run still runs to audit-sealing so the partial trace is never
// silently lost.
func (e *Executor) Run(ctx context.Context, state *domain.RunState) error {
	log := logging.Get(logging.CategorySupervisor)

	if err := ctx.Err(); err != nil {
		return e.terminate(ctx, state, domain.StatusCancelled, errs.Cancelled, err.Error())
	}

	snapshot, err := e.Policies.Snapshot(ctx, state.TenantID)
	if err != nil {
		return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, err.Error())
	}
	state.Policy = snapshot

	if decision, err := e.checkpoint(ctx, state, domain.CheckpointOnIngest, domain.Origin("")); err != nil {
		return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, err.Error())
	} else if decision.Action == domain.ActionDeny {
		return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, decision.Reason)
	}

	detections := pii.Detect(state.Query, e.PIIKinds)
	redactedQuery, piiRecord := pii.Redact(state.Query, detections, piiStrategy(state))
	state.PIIReport = append(state.PIIReport, piiRecord...)

	state.Status = domain.StatusRunning

	for {
		if err := ctx.Err(); err != nil {
			return e.terminate(ctx, state, domain.StatusCancelled, errs.Cancelled, err.Error())
		}

		if state.Budget.Exhausted(time.Now()) {
			return e.exhaustBudget(ctx, state)
		}

		next, done := route(state)
		if done {
			break
		}

		if next == domain.AgentResearcher {
			if err := e.retrieve(ctx, state); err != nil {
				log.Warn("run %s retrieval leg failed, continuing without new hits: %v", state.RunID, err)
			}
		}

		decision, err := e.checkpoint(ctx, state, domain.CheckpointBeforeModelCall, domain.Origin(""))
		if err != nil {
			return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, err.Error())
		}
		if decision.Action == domain.ActionDeny {
			return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, decision.Reason)
		}

		delta, turn, turnErr := e.Agents.Turn(ctx, state, next, redactedQuery)
		state.AppendTurn(turn)
		state.Budget.IterationsUsed++

		if turnErr != nil {
			if kind, ok := errs.As(turnErr); ok && kind.Retriable() {
				log.Warn("run %s turn %s transient failure: %v", state.RunID, next, turnErr)
				continue
			}
			return e.terminate(ctx, state, domain.StatusFailed, errs.ModelFatal, turnErr.Error())
		}

		apply(state, next, delta)
	}

	decision, err := e.checkpoint(ctx, state, domain.CheckpointBeforeEmit, domain.Origin(""))
	if err != nil {
		return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, err.Error())
	}
	if decision.Action == domain.ActionDeny {
		return e.terminate(ctx, state, domain.StatusFailed, errs.PolicyDeny, decision.Reason)
	}

	return e.terminate(ctx, state, domain.StatusSucceeded, "", "")
}

// route decides the next agent to dispatch, implementing the routing table:
// no analysis yet -> analyser; analyser flagged a gap and no retrieval has
// run yet -> researcher; analysis done, no draft yet -> drafter; draft with
// no verdict -> critic; verdict revise under the revision ceiling ->
// drafter again; verdict accept with no formatted output -> formatter;
// formatted output present -> terminate.
func route(state *domain.RunState) (domain.AgentKind, bool) {
	analysed := false
	for _, t := range state.Trace {
		if t.Agent == domain.AgentAnalyser && t.Error == "" {
			analysed = true
		}
	}

	if !analysed {
		return domain.AgentAnalyser, false
	}

	if needsResearch(state) {
		return domain.AgentResearcher, false
	}

	if state.Working.Draft == nil {
		return domain.AgentDrafter, false
	}

	verdict, hasVerdict := state.Working.LatestVerdict()
	if !hasVerdict || verdict.Version < state.Working.Draft.Version {
		return domain.AgentCritic, false
	}

	if verdict.WriterID == domain.AgentCritic {
		accepted := isAccept(verdict.Text)
		if !accepted {
			if len(state.Working.CriticVerdicts) <= maxRevisions {
				return domain.AgentDrafter, false
			}
			// revision ceiling reached: force acceptance of the current draft
		}
	}

	if state.Working.Formatted == nil {
		return domain.AgentFormatter, false
	}

	return "", true
}

// needsResearch reports whether the analyser flagged a gap that the
// researcher hasn't yet addressed. Once the researcher has run at least
// once, drafting proceeds even if more research could help: the researcher
// is consulted at most once per run, not in a retry loop.
func needsResearch(state *domain.RunState) bool {
	if !state.NeedsExternalInfo {
		return false
	}
	for _, t := range state.Trace {
		if t.Agent == domain.AgentResearcher {
			return false
		}
	}
	return true
}

func isAccept(verdictText string) bool {
	return len(verdictText) >= len(domain.VerdictAccept) && verdictText[:len(domain.VerdictAccept)] == string(domain.VerdictAccept)
}

// apply folds an agent.Delta onto the run's working set, versioning whatever
// slot it touches.
func apply(state *domain.RunState, kind domain.AgentKind, delta agent.Delta) {
	switch kind {
	case domain.AgentAnalyser:
		state.NeedsExternalInfo = delta.NeedsExternalInfo
	case domain.AgentResearcher:
		if delta.ResearchFinding != nil {
			delta.ResearchFinding.Version = len(state.Working.ResearchFindings) + 1
			state.Working.ResearchFindings = append(state.Working.ResearchFindings, *delta.ResearchFinding)
		}
	case domain.AgentDrafter:
		if delta.Draft != nil {
			version := 1
			if state.Working.Draft != nil {
				version = state.Working.Draft.Version + 1
			}
			delta.Draft.Version = version
			state.Working.Draft = delta.Draft
		}
	case domain.AgentCritic:
		if delta.CriticVerdict != nil {
			draftVersion := 0
			if state.Working.Draft != nil {
				draftVersion = state.Working.Draft.Version
			}
			delta.CriticVerdict.Version = draftVersion
			state.Working.CriticVerdicts = append(state.Working.CriticVerdicts, *delta.CriticVerdict)
		}
	case domain.AgentFormatter:
		if delta.Formatted != nil {
			state.Working.Formatted = delta.Formatted
		}
	}
}

func (e *Executor) retrieve(ctx context.Context, state *domain.RunState) error {
	decision, err := e.checkpoint(ctx, state, domain.CheckpointBeforeRetrieval, domain.Origin(""))
	if err != nil {
		return err
	}
	if decision.Action == domain.ActionDeny {
		return errs.Deny(decision.RuleID, nil)
	}

	useInternal := state.Config.UseInternalRAG == nil || *state.Config.UseInternalRAG
	req := retrieval.Request{
		Query:             state.Query,
		TenantID:          state.TenantID,
		K:                 state.Config.KTotal,
		ExternalDocuments: state.ExternalDocs,
		Personalise:       state.Config.EnablePersonalisation != nil && *state.Config.EnablePersonalisation,
		ThemeTag:          state.DocumentType,
	}
	if !useInternal {
		req.K = 0
	}

	record, err := e.Retrieval.Query(ctx, req)
	if err != nil {
		return err
	}
	state.Retrieval = append(state.Retrieval, *record)
	return nil
}

func (e *Executor) checkpoint(ctx context.Context, state *domain.RunState, cp domain.Checkpoint, origin domain.Origin) (domain.Decision, error) {
	return e.Gate.Evaluate(ctx, state.Policy, cp, policy.Context{
		TenantID:     state.TenantID,
		TaskKind:     state.TaskKind,
		DocumentType: state.DocumentType,
		PIIKinds:     detectedKinds(state.PIIReport),
		SourceOrigin: origin,
	})
}

func detectedKinds(report []domain.PIIDetection) []domain.PIIKind {
	seen := make(map[domain.PIIKind]struct{})
	kinds := make([]domain.PIIKind, 0, len(report))
	for _, d := range report {
		if _, ok := seen[d.Kind]; !ok {
			seen[d.Kind] = struct{}{}
			kinds = append(kinds, d.Kind)
		}
	}
	return kinds
}

func piiStrategy(state *domain.RunState) domain.RedactionStrategy {
	if state.Config.PIIStrategy != "" {
		return domain.RedactionStrategy(state.Config.PIIStrategy)
	}
	return domain.RedactionTyped
}

// exhaustBudget handles a mid-run budget breach: if a draft already exists
// it is forced through one last formatter call so the run still emits
// something, otherwise the run simply fails with BudgetExhausted.
func (e *Executor) exhaustBudget(ctx context.Context, state *domain.RunState) error {
	log := logging.Get(logging.CategorySupervisor)
	if state.Working.Draft == nil {
		return e.terminate(ctx, state, domain.StatusBudgetExhausted, errs.BudgetExhausted, "no draft produced before budget exhausted")
	}

	log.Warn("run %s budget exhausted with a draft in hand, forcing one final formatter call", state.RunID)
	redactedQuery, _ := pii.Redact(state.Query, pii.Detect(state.Query, e.PIIKinds), piiStrategy(state))
	delta, turn, err := e.Agents.Turn(ctx, state, domain.AgentFormatter, redactedQuery)
	state.AppendTurn(turn)
	if err != nil {
		return e.terminate(ctx, state, domain.StatusBudgetExhausted, errs.BudgetExhausted, "budget exhausted and final formatter call failed: "+err.Error())
	}
	apply(state, domain.AgentFormatter, delta)
	return e.terminate(ctx, state, domain.StatusBudgetExhausted, errs.BudgetExhausted, "budget exhausted after formatting in-progress draft")
}

// terminate sets the run's final status and seals its audit record. An
// audit write failure always downgrades a successful run to failed: the
// caller never sees a success that was never durably recorded.
func (e *Executor) terminate(ctx context.Context, state *domain.RunState, status domain.Status, errKind errs.Kind, cause string) error {
	state.Status = status
	state.ErrorKind = string(errKind)
	state.ErrorCause = cause

	if e.Audit == nil {
		return nil
	}
	if err := e.Audit.Seal(ctx, state); err != nil {
		state.Status = domain.StatusFailed
		state.ErrorKind = string(errs.AuditWriteFailed)
		state.ErrorCause = err.Error()
		return errs.New(errs.AuditWriteFailed, err)
	}
	return nil
}
