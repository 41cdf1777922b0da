package agent

import (
	"context"
	"time"

	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/errs"
	"legalforge/internal/llm"
	"legalforge/internal/logging"
)

// ClientFactory resolves a model identifier and agent profile to a Client,
// letting the caller decide how clients are constructed and cached (one
// ScheduledClient per tenant per model is the expected wiring).
type ClientFactory func(ctx context.Context, modelID string, profile config.AgentProfile) (llm.Client, error)

// Runtime executes turns for every domain.AgentKind through one dispatch
// table, keyed by kind rather than by a type hierarchy.
type Runtime struct {
	Profiles func(kind domain.AgentKind) config.AgentProfile
	Clients  ClientFactory
}

// NewRuntime builds a Runtime from a profile lookup and client factory.
func NewRuntime(profiles func(domain.AgentKind) config.AgentProfile, clients ClientFactory) *Runtime {
	return &Runtime{Profiles: profiles, Clients: clients}
}

// Turn executes one agent turn: resolve model, build prompt, call the
// model, parse the response (retrying a parse failure at most once with a
// repair directive), and return the resulting delta plus its turn record.
// Transient model errors are retried by the llm.ScheduledClient the caller
// wires in; Turn itself only handles the parse-repair retry described in
// the agent runtime's retry policy.
func (r *Runtime) Turn(ctx context.Context, state *domain.RunState, kind domain.AgentKind, redactedQuery string) (Delta, domain.TurnRecord, error) {
	profile := r.Profiles(kind)
	modelID := resolveModel(state.Config.ModelPreferences, kind, profile.Model)

	turnCtx, cancel := context.WithTimeout(ctx, perTurnCeiling(state, profile))
	defer cancel()

	client, err := r.Clients(turnCtx, modelID, profile)
	if err != nil {
		return Delta{}, errorRecord(kind, modelID, err), errs.New(errs.ModelFatal, err)
	}

	system := systemPromptFor(kind, state.DocumentType)
	user := userPromptFor(kind, state, redactedQuery)

	start := time.Now()
	response, err := client.CompleteWithSystem(turnCtx, system, user)
	if err != nil {
		return Delta{}, errorRecord(kind, modelID, err), err
	}

	delta, summary, parseErr := parseResponse(kind, response)
	if parseErr != nil {
		logging.Get(logging.CategoryAgent).Warn("agent %s parse failure, retrying once with repair directive: %v", kind, parseErr)
		response, err = client.CompleteWithSystem(turnCtx, system, user+repairDirective(parseErr.Error()))
		if err != nil {
			return Delta{}, errorRecord(kind, modelID, err), err
		}
		delta, summary, parseErr = parseResponse(kind, response)
		if parseErr != nil {
			return Delta{}, errorRecord(kind, modelID, parseErr), parseErr
		}
	}

	duration := time.Since(start)
	record := domain.TurnRecord{
		Agent:        kind,
		ModelID:      modelID,
		InputTokens:  estimateTokens(system + user),
		OutputTokens: estimateTokens(response),
		Duration:     duration,
		Summary:      summary,
	}

	logging.Get(logging.CategoryAgent).Info("agent %s turn completed model=%s duration=%v", kind, modelID, duration)
	return delta, record, nil
}

// parseResponse dispatches to the kind-specific parser and builds the
// corresponding Delta and a short trace summary.
func parseResponse(kind domain.AgentKind, response string) (Delta, string, error) {
	switch kind {
	case domain.AgentAnalyser:
		out, err := parseAnalyser(response)
		if err != nil {
			return Delta{}, "", err
		}
		return Delta{NeedsExternalInfo: out.NeedsExternalInfo}, out.Summary, nil

	case domain.AgentResearcher:
		text, err := parsePlainText(response)
		if err != nil {
			return Delta{}, "", err
		}
		return Delta{ResearchFinding: &domain.WorkingItem{Text: text, WriterID: kind}}, summarise(text), nil

	case domain.AgentDrafter:
		text, err := parsePlainText(response)
		if err != nil {
			return Delta{}, "", err
		}
		return Delta{Draft: &domain.WorkingItem{Text: text, WriterID: kind}}, summarise(text), nil

	case domain.AgentCritic:
		out, err := parseCritic(response)
		if err != nil {
			return Delta{}, "", err
		}
		verdictText := string(domain.VerdictRevise)
		if out.Verdict == "accept" {
			verdictText = string(domain.VerdictAccept)
		}
		return Delta{CriticVerdict: &domain.WorkingItem{Text: verdictText + ": " + out.Notes, WriterID: kind}}, out.Notes, nil

	case domain.AgentFormatter:
		text, err := parsePlainText(response)
		if err != nil {
			return Delta{}, "", err
		}
		return Delta{Formatted: &domain.WorkingItem{Text: text, WriterID: kind}}, summarise(text), nil

	default:
		return Delta{}, "", errs.Newf(errs.ParseFailure, "unknown agent kind %q", kind)
	}
}

func resolveModel(preferences map[string]string, kind domain.AgentKind, fallback string) string {
	if preferences != nil {
		if m, ok := preferences[string(kind)]; ok && m != "" {
			return m
		}
	}
	return fallback
}

// perTurnCeiling bounds a turn by the profile's max execution time, capped
// by whatever wall-clock budget the run has left.
func perTurnCeiling(state *domain.RunState, profile config.AgentProfile) time.Duration {
	ceiling := time.Duration(profile.MaxExecutionTimeSec) * time.Second
	if ceiling <= 0 {
		ceiling = 2 * time.Minute
	}
	if state.Budget.Deadline <= 0 {
		return ceiling
	}
	remaining := state.Budget.Deadline - time.Since(state.Budget.StartedAt)
	if remaining <= 0 {
		return time.Millisecond
	}
	if remaining < ceiling {
		return remaining
	}
	return ceiling
}

func errorRecord(kind domain.AgentKind, modelID string, err error) domain.TurnRecord {
	return domain.TurnRecord{Agent: kind, ModelID: modelID, Error: err.Error()}
}

func summarise(text string) string {
	const maxLen = 200
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// estimateTokens is a rough chars/4 heuristic used for trace accounting in
// the absence of a model-specific tokenizer.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
