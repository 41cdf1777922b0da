package supervisor

import (
	"context"
	"errors"
	"testing"

	"legalforge/internal/agent"
	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/llm"
	"legalforge/internal/mangle"
	"legalforge/internal/policy"
	"legalforge/internal/retrieval"
)

// scriptedClient replays one response per call, keyed by how many times it
// has been called, mirroring internal/agent's test double.
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

type fakeAudit struct {
	sealed []*domain.RunState
	err    error
}

func (f *fakeAudit) Seal(ctx context.Context, state *domain.RunState) error {
	if f.err != nil {
		return f.err
	}
	f.sealed = append(f.sealed, state)
	return nil
}

func newTestExecutor(t *testing.T, client llm.Client, audit AuditSink) *Executor {
	t.Helper()
	engine, err := mangle.NewEngine(mangle.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	store, err := policy.NewStore(engine, cache.NewPolicySnapshots(config.DefaultCacheConfig()))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	gate := policy.New(engine)

	runtime := agent.NewRuntime(
		func(kind domain.AgentKind) config.AgentProfile {
			return config.AgentProfile{Model: "test-model", MaxExecutionTimeSec: 60}
		},
		func(ctx context.Context, modelID string, profile config.AgentProfile) (llm.Client, error) {
			return client, nil
		},
	)

	federator := retrieval.New(nil, nil, nil, nil, config.DefaultRetrievalConfig())

	return New(runtime, federator, gate, store, audit, []domain.PIIKind{domain.PIIEmail})
}

func TestRun_HappyPath_AcceptsOnFirstCritique(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"NEEDS_EXTERNAL_INFO: no\nSUMMARY: straightforward NDA request",
		"This agreement is made between the parties...",
		"VERDICT: accept\nNOTES: looks good",
		"FORMATTED: This Agreement is made between the parties...",
	}}
	audit := &fakeAudit{}
	exec := newTestExecutor(t, client, audit)

	state := NewRun(Submit{
		TenantID: "tenant-1",
		TaskKind: domain.TaskDraft,
		Query:    "draft an NDA",
		Config:   domain.ConfigBundle{KTotal: 0},
	})

	if err := exec.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Status != domain.StatusSucceeded {
		t.Errorf("expected succeeded, got %s (cause=%s)", state.Status, state.ErrorCause)
	}
	if state.Working.Formatted == nil {
		t.Fatal("expected formatted output")
	}
	if len(audit.sealed) != 1 {
		t.Fatalf("expected exactly one sealed audit record, got %d", len(audit.sealed))
	}
}

func TestRun_ReviseLoop_StopsAtRevisionCeiling(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"NEEDS_EXTERNAL_INFO: no\nSUMMARY: needs two revisions",
		"draft v1",
		"VERDICT: revise\nNOTES: add a clause",
		"draft v2",
		"VERDICT: revise\nNOTES: add another clause",
		"draft v3",
		"VERDICT: revise\nNOTES: still not there",
		"final formatted text",
	}}
	audit := &fakeAudit{}
	exec := newTestExecutor(t, client, audit)

	state := NewRun(Submit{
		TenantID: "tenant-1",
		TaskKind: domain.TaskDraft,
		Query:    "draft an NDA",
		Config:   domain.ConfigBundle{KTotal: 0},
	})

	if err := exec.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Status != domain.StatusSucceeded {
		t.Errorf("expected succeeded after forced acceptance, got %s", state.Status)
	}
	if state.Working.Formatted == nil {
		t.Fatal("expected the executor to force a formatter call once the revision ceiling was hit")
	}
}

func TestRun_AuditWriteFailureDowngradesSuccess(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"NEEDS_EXTERNAL_INFO: no\nSUMMARY: straightforward",
		"draft text",
		"VERDICT: accept\nNOTES: fine",
		"formatted text",
	}}
	audit := &fakeAudit{err: errors.New("disk full")}
	exec := newTestExecutor(t, client, audit)

	state := NewRun(Submit{TenantID: "tenant-1", TaskKind: domain.TaskDraft, Query: "draft an NDA"})

	err := exec.Run(context.Background(), state)
	if err == nil {
		t.Fatal("expected an error when the audit sink fails to write")
	}
	if state.Status != domain.StatusFailed {
		t.Errorf("expected a successful run to be downgraded to failed, got %s", state.Status)
	}
}

func TestRun_CancelledMidRunStillSealsAudit(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"NEEDS_EXTERNAL_INFO: no\nSUMMARY: straightforward",
	}}
	audit := &fakeAudit{}
	exec := newTestExecutor(t, client, audit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewRun(Submit{TenantID: "tenant-1", TaskKind: domain.TaskDraft, Query: "draft an NDA"})
	if err := exec.Run(ctx, state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", state.Status)
	}
	if len(audit.sealed) != 1 {
		t.Fatal("expected a cancelled run to still seal an audit record")
	}
}
