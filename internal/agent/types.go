// Package agent implements the agent runtime (C4): one exported entry
// point, Runtime.Turn, that executes a single agent turn as a function of
// (run state, agent kind) and returns a state delta plus a turn record. The
// dispatch across domain.AgentKind is a lookup table, not a type hierarchy —
// each kind gets a prompt builder and a parser, nothing more.
package agent

import "legalforge/internal/domain"

// Delta is everything a turn wants written back into the run's working set.
// The runtime never mutates domain.RunState directly; the supervisor applies
// the delta after a turn returns, so turns stay pure functions of their
// inputs.
type Delta struct {
	Draft             *domain.WorkingItem
	CriticVerdict     *domain.WorkingItem
	ResearchFinding   *domain.WorkingItem
	Formatted         *domain.WorkingItem
	NeedsExternalInfo bool
}
