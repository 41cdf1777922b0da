package domain

import (
	"testing"
	"time"
)

func TestStatus_Terminal(t *testing.T) {
	terminal := []Status{StatusSucceeded, StatusFailed, StatusCancelled, StatusBudgetExhausted}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	nonTerminal := []Status{StatusPending, StatusRunning, StatusAwaitingTool, StatusAwaitingModel}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestBudget_Exhausted(t *testing.T) {
	now := time.Now()
	b := Budget{MaxIterations: 3, Deadline: time.Minute, CostCeiling: 1.0, StartedAt: now}

	if b.Exhausted(now) {
		t.Error("fresh budget should not be exhausted")
	}

	b.IterationsUsed = 3
	if !b.IterationsExceeded() || !b.Exhausted(now) {
		t.Error("expected iteration ceiling to trip")
	}

	b2 := Budget{MaxIterations: 3, Deadline: time.Minute, StartedAt: now}
	if b2.DeadlineExceeded(now.Add(2 * time.Minute)) != true {
		t.Error("expected deadline to have passed")
	}

	b3 := Budget{MaxIterations: 3, CostCeiling: 1.0, StartedAt: now}
	b3.CostUsed = 1.5
	if !b3.CostExceeded() {
		t.Error("expected cost ceiling to trip")
	}
}

func TestRunState_AppendTurn_IsSequential(t *testing.T) {
	r := &RunState{}
	r.AppendTurn(TurnRecord{Agent: AgentAnalyser})
	r.AppendTurn(TurnRecord{Agent: AgentDrafter})

	if r.Trace[0].Sequence != 0 || r.Trace[1].Sequence != 1 {
		t.Fatalf("expected sequential turn numbers, got %d, %d", r.Trace[0].Sequence, r.Trace[1].Sequence)
	}
}

func TestRunState_ConsumedSourceIDs_SortedDeduplicated(t *testing.T) {
	r := &RunState{
		Retrieval: []RetrievalRecord{
			{Hits: []RetrievalHit{{SourceID: "b"}, {SourceID: "a"}}},
			{Hits: []RetrievalHit{{SourceID: "a"}, {SourceID: "c"}}},
		},
	}
	got := r.ConsumedSourceIDs()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWorkingSet_LatestVerdict(t *testing.T) {
	var w WorkingSet
	if _, ok := w.LatestVerdict(); ok {
		t.Error("empty working set should have no verdict")
	}

	w.CriticVerdicts = []WorkingItem{
		{Text: "revise", Version: 1},
		{Text: "accept", Version: 2},
	}
	v, ok := w.LatestVerdict()
	if !ok || v.Text != "accept" {
		t.Errorf("expected latest verdict 'accept', got %+v, ok=%v", v, ok)
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg := ResolveConfig(ConfigBundle{})

	if cfg.UseInternalRAG == nil || !*cfg.UseInternalRAG {
		t.Error("expected UseInternalRAG to default true")
	}
	if cfg.EnablePersonalisation == nil || !*cfg.EnablePersonalisation {
		t.Error("expected EnablePersonalisation to default true")
	}
	if cfg.PersonalisationAlpha != 0.25 {
		t.Errorf("expected alpha default 0.25, got %v", cfg.PersonalisationAlpha)
	}
	if cfg.MaxIterations != 10 {
		t.Errorf("expected max iterations default 10, got %v", cfg.MaxIterations)
	}
	if cfg.DeadlineMS != 300000 {
		t.Errorf("expected deadline default 300000ms, got %v", cfg.DeadlineMS)
	}
	if cfg.PIIStrategy != string(RedactionTyped) {
		t.Errorf("expected pii strategy default typed, got %v", cfg.PIIStrategy)
	}
}

func TestResolveConfig_ClampsKTotal(t *testing.T) {
	cfg := ResolveConfig(ConfigBundle{KTotal: 500})
	if cfg.KTotal != 100 {
		t.Errorf("expected k_total clamped to 100, got %d", cfg.KTotal)
	}

	cfg = ResolveConfig(ConfigBundle{KTotal: -5})
	if cfg.KTotal != 0 {
		t.Errorf("expected negative k_total clamped to 0, got %d", cfg.KTotal)
	}
}

func TestResolveConfig_PreservesExplicitFalse(t *testing.T) {
	f := false
	cfg := ResolveConfig(ConfigBundle{UseInternalRAG: &f})
	if cfg.UseInternalRAG == nil || *cfg.UseInternalRAG {
		t.Error("explicit false for UseInternalRAG should not be overwritten by default")
	}
}
