package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "legalforge" {
		t.Errorf("expected Name=legalforge, got %s", cfg.Name)
	}
	if cfg.LLM.Provider != "genai" {
		t.Errorf("expected Provider=genai, got %s", cfg.LLM.Provider)
	}
	if cfg.CoreLimits.MaxConcurrentRuns != 8 {
		t.Errorf("expected MaxConcurrentRuns=8, got %d", cfg.CoreLimits.MaxConcurrentRuns)
	}
	if cfg.Retrieval.KRRF != 60 {
		t.Errorf("expected KRRF=60, got %d", cfg.Retrieval.KRRF)
	}
	if cfg.Retrieval.KCeiling != 100 {
		t.Errorf("expected KCeiling=100, got %d", cfg.Retrieval.KCeiling)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "sk-test"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != "anthropic" {
		t.Errorf("expected Provider=anthropic, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "sk-test" {
		t.Errorf("expected APIKey=sk-test, got %s", loaded.LLM.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}

	cfg.LLM.Provider = "invalid-provider"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GetLLMTimeout() == 0 {
		t.Error("GetLLMTimeout should return non-zero duration")
	}
	if cfg.GetQueryTimeout() == 0 {
		t.Error("GetQueryTimeout should return non-zero duration")
	}
	if cfg.GetBudgetDeadline() == 0 {
		t.Error("GetBudgetDeadline should return non-zero duration")
	}

	profile := cfg.GetAgentProfile("unknown_kind")
	if profile.Model != cfg.DefaultAgent.Model {
		t.Error("GetAgentProfile should fall back to default for unknown kind")
	}

	newProfile := AgentProfile{Model: "custom"}
	cfg.SetAgentProfile("custom_kind", newProfile)
	if p := cfg.GetAgentProfile("custom_kind"); p.Model != "custom" {
		t.Error("SetAgentProfile failed")
	}
}

func TestLLMConfig_ModelFor(t *testing.T) {
	llm := LLMConfig{
		Model:        "default-model",
		ModelsByKind: map[string]string{"drafter": "drafter-model"},
	}
	if got := llm.ModelFor("drafter"); got != "drafter-model" {
		t.Errorf("ModelFor(drafter)=%q, want drafter-model", got)
	}
	if got := llm.ModelFor("critic"); got != "default-model" {
		t.Errorf("ModelFor(critic)=%q, want default-model", got)
	}
}
