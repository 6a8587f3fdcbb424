// Package startup drives the application boot sequence: hydrate from the
// local cache first, then reconcile with the backend, and declare the app
// ready as soon as either the sync finishes or a deadline passes.
package startup

import (
	"context"
	"sync"
	"time"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/store"
)

// Phase is the observable boot state.
type Phase string

const (
	PhaseColdStart Phase = "coldStart"
	PhaseHydrating Phase = "hydratingFromCache"
	PhaseSyncing   Phase = "syncingRemote"
	PhaseReady     Phase = "ready"
)

const (
	// shortTimeout applies when the cache held data: the user already sees
	// their bookmarks, so the sync races a tight deadline.
	shortTimeout = 3 * time.Second
	// longTimeout applies on an empty cache, where waiting longer beats
	// presenting an empty app.
	longTimeout = 12 * time.Second
)

// Syncer is the remote side of the boot sequence.
type Syncer interface {
	RecoverSession(ctx context.Context) error
	FetchAll(ctx context.Context) (*model.State, error)
}

// Coordinator runs the boot sequence once.
type Coordinator struct {
	store  *store.Store
	syncer Syncer
	log    logger.Logger

	// after is time.After, injectable for tests.
	after func(d time.Duration) <-chan time.Time

	mu    sync.Mutex
	phase Phase
	ready chan struct{}
}

// New creates a boot coordinator. syncer may be nil for a purely local run.
func New(st *store.Store, syncer Syncer, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{
		store:  st,
		syncer: syncer,
		log:    log,
		after:  time.After,
		phase:  PhaseColdStart,
		ready:  make(chan struct{}),
	}
}

// Phase returns the current boot phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Ready returns a channel closed once the app is ready to use.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Run executes the boot sequence and blocks until the app is ready: cache
// hydration, then the remote sync racing a deadline. The deadline is short
// when the cache held data and long when it was empty. A sync that loses the
// race keeps running in the background and lands when it finishes.
func (c *Coordinator) Run(ctx context.Context) {
	c.setPhase(PhaseHydrating)

	hadCache, err := c.store.Hydrate()
	if err != nil {
		c.log.Warn("cache hydration failed, starting from empty state", logger.Error(err))
	}

	if c.syncer == nil {
		c.finish()
		return
	}

	c.setPhase(PhaseSyncing)
	done := make(chan struct{})
	go c.sync(ctx, done)

	timeout := longTimeout
	if hadCache {
		timeout = shortTimeout
	}

	select {
	case <-done:
	case <-c.after(timeout):
		c.log.Info("remote sync still running, continuing with local state",
			logger.Duration("deadline", timeout))
	case <-ctx.Done():
	}

	c.finish()
}

// sync recovers the session and replaces the store with the remote dataset.
// Failures are logged and leave local state authoritative.
func (c *Coordinator) sync(ctx context.Context, done chan struct{}) {
	defer close(done)

	c.store.SetSyncing(true)
	defer c.store.SetSyncing(false)

	if err := c.syncer.RecoverSession(ctx); err != nil {
		c.log.Info("no remote session, running local-only", logger.Error(err))
		c.store.SetSessionActive(false)
		return
	}
	c.store.SetSessionActive(true)

	state, err := c.syncer.FetchAll(ctx)
	if err != nil {
		c.log.Warn("remote fetch failed, keeping local state", logger.Error(err))
		return
	}
	c.store.ReplaceAll(state)
}

func (c *Coordinator) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

func (c *Coordinator) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseReady {
		return
	}
	c.phase = PhaseReady
	close(c.ready)
}
