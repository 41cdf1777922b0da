package llm

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"legalforge/internal/config"
	"legalforge/internal/errs"
	"legalforge/internal/logging"
)

// TenantPhase tracks where a tenant's in-flight model call sits.
type TenantPhase string

const (
	PhaseIdle    TenantPhase = "idle"
	PhaseWaiting TenantPhase = "waiting_for_slot"
	PhaseCalling TenantPhase = "calling_model"
	PhaseFailed  TenantPhase = "failed"
)

// TenantCallState is the scheduler's bookkeeping for one tenant's call
// history; it never holds prompt or response content.
type TenantCallState struct {
	TenantID      string
	Phase         TenantPhase
	CallCount     int
	TotalWaitTime time.Duration
	LastCallAt    time.Time
	LastError     error
}

// SchedulerConfig bounds global concurrency across all tenants.
type SchedulerConfig struct {
	MaxConcurrentCalls int
	SlotAcquireTimeout time.Duration
}

// DefaultSchedulerConfig matches the orchestrator's default cross-tenant
// concurrency ceiling.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentCalls: 5,
		SlotAcquireTimeout: 2 * time.Minute,
	}
}

// SchedulerMetrics is a snapshot of scheduler-wide counters.
type SchedulerMetrics struct {
	TotalAcquisitions int64
	TotalWaitTime     time.Duration
	ActiveSlots       int
	TenantsSeen       int
}

// Scheduler bounds concurrent model calls across every tenant sharing this
// process with one shared pool of slots. There is no per-tenant quota: one
// tenant's calls can hold every slot while other tenants' calls wait.
type Scheduler struct {
	mu     sync.RWMutex
	config SchedulerConfig
	slots  chan struct{}
	states map[string]*TenantCallState

	totalAcquisitions int64
	totalWaitTime     time.Duration
}

// NewScheduler creates a scheduler with cfg.MaxConcurrentCalls slots.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = DefaultSchedulerConfig().MaxConcurrentCalls
	}
	if cfg.SlotAcquireTimeout <= 0 {
		cfg.SlotAcquireTimeout = DefaultSchedulerConfig().SlotAcquireTimeout
	}
	return &Scheduler{
		config: cfg,
		slots:  make(chan struct{}, cfg.MaxConcurrentCalls),
		states: make(map[string]*TenantCallState),
	}
}

// AcquireSlot blocks until a model-call slot is free, ctx is cancelled, or
// the scheduler's acquire timeout elapses, whichever comes first.
func (s *Scheduler) AcquireSlot(ctx context.Context, tenantID string) error {
	s.setPhase(tenantID, PhaseWaiting)
	start := time.Now()

	acquireCtx, cancel := context.WithTimeout(ctx, s.config.SlotAcquireTimeout)
	defer cancel()

	select {
	case s.slots <- struct{}{}:
		wait := time.Since(start)
		s.mu.Lock()
		s.totalAcquisitions++
		s.totalWaitTime += wait
		st := s.stateLocked(tenantID)
		st.Phase = PhaseCalling
		st.TotalWaitTime += wait
		s.mu.Unlock()
		logging.APIDebug("tenant %s acquired model-call slot after %v", tenantID, wait)
		return nil
	case <-acquireCtx.Done():
		s.setPhase(tenantID, PhaseFailed)
		logging.Get(logging.CategoryAPI).Warn("tenant %s failed to acquire model-call slot: %v", tenantID, acquireCtx.Err())
		return fmt.Errorf("acquire model-call slot: %w", acquireCtx.Err())
	}
}

// ReleaseSlot frees a slot acquired by AcquireSlot for tenantID.
func (s *Scheduler) ReleaseSlot(tenantID string) {
	select {
	case <-s.slots:
	default:
	}
	s.setPhase(tenantID, PhaseIdle)
}

func (s *Scheduler) setPhase(tenantID string, phase TenantPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(tenantID)
	st.Phase = phase
	st.LastCallAt = time.Now()
	if phase == PhaseCalling {
		st.CallCount++
	}
}

// stateLocked returns (creating if needed) the state entry for tenantID.
// Caller must hold s.mu.
func (s *Scheduler) stateLocked(tenantID string) *TenantCallState {
	st, ok := s.states[tenantID]
	if !ok {
		st = &TenantCallState{TenantID: tenantID, Phase: PhaseIdle}
		s.states[tenantID] = st
	}
	return st
}

// TenantState returns a copy of the tracked state for tenantID, or nil if
// the tenant has never acquired a slot.
func (s *Scheduler) TenantState(tenantID string) *TenantCallState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[tenantID]
	if !ok {
		return nil
	}
	cp := *st
	return &cp
}

// Metrics returns a snapshot of scheduler-wide counters.
func (s *Scheduler) Metrics() SchedulerMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SchedulerMetrics{
		TotalAcquisitions: s.totalAcquisitions,
		TotalWaitTime:     s.totalWaitTime,
		ActiveSlots:       len(s.slots),
		TenantsSeen:       len(s.states),
	}
}

// ScheduledClient wraps a Client so every call first passes through a
// slot from the Scheduler's shared pool (taken on behalf of its tenant) and
// a retry policy with exponential backoff
// and full jitter, per the model-call contract every agent turn relies on.
type ScheduledClient struct {
	scheduler *Scheduler
	tenantID  string
	inner     Client
	timeouts  config.LLMTimeouts
}

// NewScheduledClient builds a ScheduledClient for one tenant's calls against
// inner, governed by scheduler and timeouts.
func NewScheduledClient(scheduler *Scheduler, tenantID string, inner Client, timeouts config.LLMTimeouts) *ScheduledClient {
	return &ScheduledClient{scheduler: scheduler, tenantID: tenantID, inner: inner, timeouts: timeouts}
}

var _ Client = (*ScheduledClient)(nil)

// Complete implements Client.
func (s *ScheduledClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.callWithRetry(ctx, func(callCtx context.Context) (string, error) {
		return s.inner.Complete(callCtx, prompt)
	})
}

// CompleteWithSystem implements Client.
func (s *ScheduledClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.callWithRetry(ctx, func(callCtx context.Context) (string, error) {
		return s.inner.CompleteWithSystem(callCtx, systemPrompt, userPrompt)
	})
}

// callWithRetry acquires a slot for the life of the call (all retries share
// it) and retries transient failures up to timeouts.MaxRetries times with
// exponential backoff capped at RetryBackoffMax and full jitter.
func (s *ScheduledClient) callWithRetry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if err := s.scheduler.AcquireSlot(ctx, s.tenantID); err != nil {
		return "", err
	}
	defer s.scheduler.ReleaseSlot(s.tenantID)

	maxRetries := s.timeouts.MaxRetries
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDuration(attempt, s.timeouts.RetryBackoffBase, s.timeouts.RetryBackoffMax)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if s.timeouts.PerCallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, s.timeouts.PerCallTimeout)
		}
		result, err := fn(callCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, nil
		}

		lastErr = err
		s.recordFailure(err)
		if kind, ok := errs.As(err); ok && !kind.Retriable() {
			return "", err
		}
		logging.Get(logging.CategoryAPI).Warn("tenant %s model call attempt %d/%d failed: %v", s.tenantID, attempt+1, maxRetries+1, err)
	}

	return "", errs.New(errs.ModelFatal, fmt.Errorf("model call failed after %d attempts: %w", maxRetries+1, lastErr))
}

func (s *ScheduledClient) recordFailure(err error) {
	s.scheduler.mu.Lock()
	defer s.scheduler.mu.Unlock()
	st := s.scheduler.stateLocked(s.tenantID)
	st.LastError = err
}

// backoffDuration computes attempt N's wait: base*2^(attempt-1) capped at
// max, with full jitter (uniform in [0, cap]).
func backoffDuration(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	if max <= 0 {
		max = 30 * time.Second
	}
	cap := base * time.Duration(1<<uint(attempt-1))
	if cap <= 0 || cap > max {
		cap = max
	}
	return time.Duration(rand.Int63n(int64(cap) + 1))
}
