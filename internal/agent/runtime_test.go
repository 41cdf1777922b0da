package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/llm"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *scriptedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("no more scripted responses")
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

var _ llm.Client = (*scriptedClient)(nil)

func newTestRuntime(client llm.Client) *Runtime {
	return NewRuntime(
		func(kind domain.AgentKind) config.AgentProfile {
			return config.AgentProfile{Model: "test-model", MaxExecutionTimeSec: 60}
		},
		func(ctx context.Context, modelID string, profile config.AgentProfile) (llm.Client, error) {
			return client, nil
		},
	)
}

func newTestState() *domain.RunState {
	return &domain.RunState{
		RunID:     "run-1",
		TenantID:  "tenant-1",
		TaskKind:  domain.TaskDraft,
		Query:     "draft a non-disclosure agreement",
		StartedAt: time.Now(),
		Budget:    domain.Budget{MaxIterations: 10, Deadline: 5 * time.Minute, StartedAt: time.Now()},
	}
}

func TestTurn_Analyser_ParsesNeedsExternalInfo(t *testing.T) {
	client := &scriptedClient{responses: []string{"NEEDS_EXTERNAL_INFO: yes\nSUMMARY: needs case law"}}
	rt := newTestRuntime(client)

	delta, record, err := rt.Turn(context.Background(), newTestState(), domain.AgentAnalyser, "draft an NDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.NeedsExternalInfo {
		t.Error("expected NeedsExternalInfo to be true")
	}
	if record.Agent != domain.AgentAnalyser {
		t.Errorf("expected turn record agent analyser, got %s", record.Agent)
	}
}

func TestTurn_Drafter_ProducesDraft(t *testing.T) {
	client := &scriptedClient{responses: []string{"This agreement is made between the parties..."}}
	rt := newTestRuntime(client)

	delta, _, err := rt.Turn(context.Background(), newTestState(), domain.AgentDrafter, "draft an NDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta.Draft == nil || delta.Draft.Text == "" {
		t.Fatal("expected a non-empty draft delta")
	}
	if delta.Draft.WriterID != domain.AgentDrafter {
		t.Errorf("expected writer id drafter, got %s", delta.Draft.WriterID)
	}
}

func TestTurn_Critic_RetriesOnceOnParseFailure(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"this is not the expected format",
		"VERDICT: revise\nNOTES: missing a confidentiality clause",
	}}
	rt := newTestRuntime(client)

	state := newTestState()
	state.Working.Draft = &domain.WorkingItem{Text: "draft text", WriterID: domain.AgentDrafter, Version: 1}

	delta, _, err := rt.Turn(context.Background(), state, domain.AgentCritic, "draft an NDA")
	if err != nil {
		t.Fatalf("expected repair retry to succeed, got error: %v", err)
	}
	if delta.CriticVerdict == nil {
		t.Fatal("expected a critic verdict delta")
	}
	if client.calls != 2 {
		t.Errorf("expected exactly 2 calls (original + repair), got %d", client.calls)
	}
}

func TestTurn_Critic_FailsAfterSecondParseFailure(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"garbage",
		"still garbage",
	}}
	rt := newTestRuntime(client)

	state := newTestState()
	state.Working.Draft = &domain.WorkingItem{Text: "draft text", WriterID: domain.AgentDrafter, Version: 1}

	_, _, err := rt.Turn(context.Background(), state, domain.AgentCritic, "draft an NDA")
	if err == nil {
		t.Fatal("expected parse failure to surface after the single repair retry")
	}
}

func TestResolveModel_PrefersTenantPreference(t *testing.T) {
	got := resolveModel(map[string]string{"drafter": "custom-model"}, domain.AgentDrafter, "default-model")
	if got != "custom-model" {
		t.Errorf("got %q, want custom-model", got)
	}

	got = resolveModel(nil, domain.AgentDrafter, "default-model")
	if got != "default-model" {
		t.Errorf("got %q, want default-model", got)
	}
}

func TestPerTurnCeiling_CappedByRemainingBudget(t *testing.T) {
	state := newTestState()
	state.Budget.Deadline = 10 * time.Second
	state.Budget.StartedAt = time.Now().Add(-9 * time.Second)

	ceiling := perTurnCeiling(state, config.AgentProfile{MaxExecutionTimeSec: 120})
	if ceiling > 2*time.Second {
		t.Errorf("expected ceiling capped near remaining budget, got %v", ceiling)
	}
}
