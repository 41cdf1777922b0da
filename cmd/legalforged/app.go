package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"legalforge/internal/agent"
	"legalforge/internal/audit"
	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/embedding"
	"legalforge/internal/feedback"
	"legalforge/internal/lexical"
	"legalforge/internal/llm"
	"legalforge/internal/mangle"
	"legalforge/internal/policy"
	"legalforge/internal/retrieval"
	"legalforge/internal/supervisor"
	"legalforge/internal/tools"
)

// app wires every package built against the document-generation pipeline
// into one long-lived set of dependencies, shared across every cobra
// command invoked in a single process run.
type app struct {
	cfg *config.Config

	engine    *mangle.Engine
	policies  *policy.Store
	gate      *policy.Gate
	snapshots *cache.PolicySnapshots
	centroids *cache.Centroids

	embedder embedding.EmbeddingEngine
	lexical  *lexical.Index

	federator *retrieval.Federator
	registry  *tools.Registry

	auditStore    *audit.Store
	feedbackStore *feedback.Store

	scheduler *llm.Scheduler
	clients   *clientCache

	piiKinds []domain.PIIKind
}

// clientCache memoizes one llm.ScheduledClient per (tenant, model) pair, the
// wiring agent.ClientFactory's doc comment calls for, so repeated turns for
// the same tenant reuse the same rate-limited slot accounting.
type clientCache struct {
	mu      sync.Mutex
	clients map[string]*llm.ScheduledClient
	cfg     *config.Config
	sched   *llm.Scheduler
}

func newClientCache(cfg *config.Config, sched *llm.Scheduler) *clientCache {
	return &clientCache{clients: make(map[string]*llm.ScheduledClient), cfg: cfg, sched: sched}
}

func (c *clientCache) factoryFor(tenantID string) agent.ClientFactory {
	return func(ctx context.Context, modelID string, profile config.AgentProfile) (llm.Client, error) {
		key := tenantID + "/" + modelID
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.clients[key]; ok {
			return existing, nil
		}

		inner, err := llm.NewGenAIClient(c.cfg.LLM.APIKey, modelID, profile.Temperature, profile.TopP, profile.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("building model client for %s: %w", modelID, err)
		}
		scheduled := llm.NewScheduledClient(c.sched, tenantID, inner, config.GetLLMTimeouts())
		c.clients[key] = scheduled
		return scheduled, nil
	}
}

// buildApp constructs every long-lived dependency from cfg. workspace
// backs the lexical index's on-disk bleve directory and the boot-time
// internal/logging file sink.
func buildApp(cfg *config.Config, workspace string) (*app, error) {
	engine, err := mangle.NewEngine(mangle.Config{
		FactLimit:    cfg.Mangle.FactLimit,
		QueryTimeout: int(cfg.GetQueryTimeout().Seconds()),
		AutoEval:     true,
		SchemaPath:   cfg.Mangle.SchemaPath,
		PolicyPath:   cfg.Mangle.PolicyPath,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("starting mangle engine: %w", err)
	}

	snapshots := cache.NewPolicySnapshots(cfg.Cache)
	centroids := cache.NewCentroids(cfg.Retrieval, cfg.Cache)

	policies, err := policy.NewStore(engine, snapshots)
	if err != nil {
		return nil, fmt.Errorf("starting policy store: %w", err)
	}
	gate := policy.New(engine)

	embedder, err := embedding.NewEngine(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		OllamaEndpoint: cfg.Embedding.OllamaEndpoint,
		OllamaModel:    cfg.Embedding.OllamaModel,
		GenAIAPIKey:    cfg.Embedding.GenAIAPIKey,
		GenAIModel:     cfg.Embedding.GenAIModel,
		TaskType:       cfg.Embedding.TaskType,
	})
	if err != nil {
		return nil, fmt.Errorf("starting embedding engine: %w", err)
	}

	lexIndex, err := lexical.Open(filepath.Join(workspace, "lexical.bleve"))
	if err != nil {
		return nil, fmt.Errorf("opening lexical index: %w", err)
	}

	federator := retrieval.New(nil, lexIndex, embedder, centroids, cfg.Retrieval)

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry, federator, lexIndex); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	auditStore := audit.NewStore()
	feedbackStore := feedback.NewStore(auditStore)

	scheduler := llm.NewScheduler(llm.DefaultSchedulerConfig())

	piiKinds := make([]domain.PIIKind, 0, len(cfg.PII.EnabledKinds))
	for _, k := range cfg.PII.EnabledKinds {
		piiKinds = append(piiKinds, domain.PIIKind(k))
	}

	return &app{
		cfg:           cfg,
		engine:        engine,
		policies:      policies,
		gate:          gate,
		snapshots:     snapshots,
		centroids:     centroids,
		embedder:      embedder,
		lexical:       lexIndex,
		federator:     federator,
		registry:      registry,
		auditStore:    auditStore,
		feedbackStore: feedbackStore,
		scheduler:     scheduler,
		clients:       newClientCache(cfg, scheduler),
		piiKinds:      piiKinds,
	}, nil
}

// executorFor builds a supervisor.Executor whose agent runtime dispatches
// model calls for tenantID through this app's shared client cache.
func (a *app) executorFor(tenantID string) *supervisor.Executor {
	runtime := agent.NewRuntime(func(kind domain.AgentKind) config.AgentProfile {
		return a.cfg.GetAgentProfile(string(kind))
	}, a.clients.factoryFor(tenantID))

	return supervisor.New(runtime, a.federator, a.gate, a.policies, a.auditStore, a.piiKinds)
}

func (a *app) close() {
	if a.lexical != nil {
		_ = a.lexical.Close()
	}
	if a.engine != nil {
		_ = a.engine.Close()
	}
}
