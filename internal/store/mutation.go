package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
)

// Outcome is the final disposition of a mutating action.
type Outcome int

const (
	// OutcomeRejected means the action was a no-op: demo mode, a failed
	// precondition, or an unknown target id.
	OutcomeRejected Outcome = iota
	// OutcomeApplied means the local change stuck (and the remote write, if
	// any, was confirmed).
	OutcomeApplied
	// OutcomeAppliedThenReverted means the local change was applied, the
	// mirrored remote write failed, and the pre-change snapshot was
	// restored.
	OutcomeAppliedThenReverted
)

// Result is the typed outcome of a mutating action.
type Result struct {
	Outcome Outcome
	Err     error // remote error when reverted, nil otherwise
}

// Pending tracks a mutating action until its remote mirror settles. The
// local change is visible immediately; Wait blocks until the final outcome
// is known. Callers must treat an applied change as revertible until then.
type Pending struct {
	once sync.Once
	done chan struct{}
	res  Result
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func settled(r Result) *Pending {
	p := newPending()
	p.settle(r)
	return p
}

func (p *Pending) settle(r Result) {
	p.once.Do(func() {
		p.res = r
		close(p.done)
	})
}

// Wait blocks until the action's final outcome is known and returns it.
func (p *Pending) Wait() Result {
	<-p.done
	return p.res
}

// Done returns a channel closed once the final outcome is known.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// snapshot is an explicit pre-change copy of the full state, captured before
// an optimistic mutation is applied and restored if its remote mirror fails.
type snapshot struct {
	state *model.State
}

func (s *Store) captureLocked() snapshot {
	return snapshot{state: s.state.Clone()}
}

// restore swaps the snapshot back in. Caller must hold the lock.
func (sn snapshot) restore(s *Store) {
	s.state = sn.state
}

// remoteOp is the remote write mirroring a single applied mutation.
type remoteOp func(ctx context.Context, r Remote) error

type remoteJob struct {
	op   remoteOp
	snap snapshot
	p    *Pending
}

// offliner matches errors raised when the device has no connectivity. An
// offline remote write is skipped, not failed: local state stays
// authoritative until connectivity returns, so no rollback happens.
type offliner interface {
	Offline() bool
}

func isOffline(err error) bool {
	var o offliner
	return errors.As(err, &o) && o.Offline()
}

// apply runs fn as an optimistic mutation. fn validates preconditions and
// applies the change to the state, returning the remote op that mirrors it
// (nil for none) and whether the change was applied. Rejections and demo
// mode resolve immediately; otherwise the change is persisted and the
// remote write queued in call order.
func (s *Store) apply(fn func(st *model.State) (remoteOp, bool)) *Pending {
	s.mu.Lock()

	if s.demo {
		s.mu.Unlock()
		return settled(Result{Outcome: OutcomeRejected})
	}

	snap := s.captureLocked()
	op, ok := fn(s.state)
	if !ok {
		s.mu.Unlock()
		return settled(Result{Outcome: OutcomeRejected})
	}

	s.persistLocked()
	mirror := s.remote != nil && s.sessionActive && op != nil
	s.mu.Unlock()

	if !mirror {
		return settled(Result{Outcome: OutcomeApplied})
	}

	p := newPending()
	s.jobMu.Lock()
	if s.closed {
		// The local change stuck; there is just no dispatch loop left to
		// mirror it.
		s.jobMu.Unlock()
		p.settle(Result{Outcome: OutcomeApplied})
		return p
	}
	s.jobs <- remoteJob{op: op, snap: snap, p: p}
	s.jobMu.Unlock()
	return p
}

// dispatchLoop mirrors applied mutations to the remote backend in call
// order. On failure the pre-change snapshot is restored and the action
// settles as AppliedThenReverted.
func (s *Store) dispatchLoop() {
	defer s.wg.Done()

	for job := range s.jobs {
		err := job.op(context.Background(), s.remote)
		if err == nil || isOffline(err) {
			job.p.settle(Result{Outcome: OutcomeApplied})
			continue
		}

		s.mu.Lock()
		job.snap.restore(s)
		s.persistLocked()
		s.mu.Unlock()

		s.log.Warn("remote write failed, optimistic change rolled back",
			logger.Error(err))
		job.p.settle(Result{Outcome: OutcomeAppliedThenReverted, Err: err})
	}
}
