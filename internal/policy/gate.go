// Package policy evaluates a tenant's policy snapshot at each checkpoint in
// a run's lifecycle. Rule predicates are plain Mangle boolean queries
// evaluated against the facts the gate asserts about the run's current
// context; the engine that evaluates them is internal/mangle.Engine, not a
// hand-rolled matcher, so rule authors get real Datalog (conjunction,
// negation, recursive derivation) rather than a string-matching DSL.
package policy

import (
	"context"
	"fmt"
	"sort"

	"legalforge/internal/domain"
	"legalforge/internal/logging"
	"legalforge/internal/mangle"
)

// Context is the run-side facts the gate asserts before evaluating a
// checkpoint's rules. Callers populate whichever fields are relevant to
// the checkpoint being evaluated.
type Context struct {
	TenantID     string
	TaskKind     domain.TaskKind
	DocumentType string
	PIIKinds     []domain.PIIKind
	SourceOrigin domain.Origin
}

// Gate evaluates policy snapshots against a Mangle engine.
type Gate struct {
	engine *mangle.Engine
}

// New builds a Gate backed by engine. The engine is expected to already
// have each tenant's rule predicates loaded as Mangle rules (via
// LoadSchemaString against the policy source path); Gate only asserts
// per-checkpoint context facts and queries the rule heads.
func New(engine *mangle.Engine) *Gate {
	return &Gate{engine: engine}
}

// Evaluate asserts ctx as EDB facts, queries every rule in snapshot whose
// predicate derives true, and resolves the matches to one Decision by
// most-restrictive-wins. Ties between rules at the same restrictiveness
// are broken by ascending rule id (recorded in Decision.Reason so the
// choice is auditable, not silent).
func (g *Gate) Evaluate(ctx context.Context, snapshot domain.PolicySnapshot, checkpoint domain.Checkpoint, rc Context) (domain.Decision, error) {
	if err := g.assertContext(rc, checkpoint); err != nil {
		return domain.Decision{}, fmt.Errorf("policy: asserting context: %w", err)
	}

	type match struct {
		rule domain.PolicyRule
	}
	var matches []match

	for _, rule := range snapshot.Rules {
		result, err := g.engine.Query(ctx, rule.Predicate)
		if err != nil {
			logging.Get(logging.CategoryPolicy).Warn("rule %s predicate query failed: %v", rule.ID, err)
			continue
		}
		if len(result.Bindings) > 0 {
			matches = append(matches, match{rule: rule})
		}
	}

	if len(matches) == 0 {
		return domain.Decision{Action: domain.ActionAllow}, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rule.Action != matches[j].rule.Action {
			return domain.MoreRestrictive(matches[i].rule.Action, matches[j].rule.Action)
		}
		return matches[i].rule.ID < matches[j].rule.ID
	})

	winner := matches[0].rule
	reason := ""
	if len(matches) > 1 && matches[1].rule.Action == winner.Action {
		tied := 0
		for _, m := range matches[1:] {
			if m.rule.Action == winner.Action {
				tied++
			}
		}
		reason = fmt.Sprintf("tied with %d other rule(s) at %s; %s won on lexical rule id", tied, winner.Action, winner.ID)
	}

	logging.Get(logging.CategoryPolicy).Info("checkpoint=%s tenant=%s decision=%s rule=%s", checkpoint, rc.TenantID, winner.Action, winner.ID)

	return domain.Decision{Action: winner.Action, RuleID: winner.ID, Reason: reason}, nil
}

func (g *Gate) assertContext(rc Context, checkpoint domain.Checkpoint) error {
	facts := []mangle.Fact{
		{Predicate: "run_tenant", Args: []interface{}{rc.TenantID}},
		{Predicate: "run_task_kind", Args: []interface{}{string(rc.TaskKind)}},
		{Predicate: "run_checkpoint", Args: []interface{}{string(checkpoint)}},
	}
	if rc.DocumentType != "" {
		facts = append(facts, mangle.Fact{Predicate: "run_document_type", Args: []interface{}{rc.DocumentType}})
	}
	if rc.SourceOrigin != "" {
		facts = append(facts, mangle.Fact{Predicate: "run_source_origin", Args: []interface{}{string(rc.SourceOrigin)}})
	}
	for _, k := range rc.PIIKinds {
		facts = append(facts, mangle.Fact{Predicate: "run_pii_detected", Args: []interface{}{string(k)}})
	}
	return g.engine.AddFacts(facts)
}

// Resolve applies the most-restrictive-wins rule across decisions gathered
// from more than one checkpoint or leg, for callers that evaluate several
// checkpoints before deciding what to do with a run.
func Resolve(decisions ...domain.Decision) domain.Decision {
	if len(decisions) == 0 {
		return domain.Decision{Action: domain.ActionAllow}
	}
	winner := decisions[0]
	for _, d := range decisions[1:] {
		if domain.MoreRestrictive(d.Action, winner.Action) {
			winner = d
		}
	}
	return winner
}
