package engagement

import (
	"context"
	"fmt"

	"tripmate/pkg/logger"
)

// Task is the remote half of an operation. It runs off the event loop and
// never touches engagement state; the Completion it returns must be settled
// on the goroutine that owns the state.
type Task func(ctx context.Context) Completion

// Completion carries a finished remote call back to the event loop
type Completion struct {
	err    error
	settle func(err error) Result
}

// Settle applies the outcome of the remote call and reports it
func (c Completion) Settle() Result {
	if c.settle == nil {
		return Result{Stale: true}
	}
	return c.settle(c.err)
}

// Result is all that crosses back to a screen after an operation settles
type Result struct {
	Succeeded bool
	// Stale is set when a later call on the same key is still pending or the
	// screen is gone. Stale results carry no message and need no handling.
	Stale   bool
	Message string
	Err     error
}

// Mutation describes one optimistic write. Undo must exactly reverse Apply.
// Remote returns an optional reconcile step that runs on the loop after the
// server confirmed the write.
type Mutation struct {
	Op     string
	Scope  string
	Key    ID
	Apply  func()
	Undo   func()
	Remote func(ctx context.Context) (reconcile func(), err error)
}

type seqKey struct {
	scope string
	id    ID
}

// call is one issued mutation in a chain of writes to the same key
type call struct {
	seq       uint64
	op        string
	undo      func()
	reconcile func()
	done      bool
	err       error
}

// Runner executes mutations for one screen. Mutations with the same scope
// and key form a chain that resolves once every call in it has settled:
// failed calls are undone newest first, stopping at the newest call the
// server accepted, then accepted calls reconcile in issue order.
// Completions settling before the chain is complete are stale. A mutation
// with an empty scope is not chained.
type Runner struct {
	seq    map[seqKey]uint64
	chains map[seqKey][]*call
	closed bool
}

// NewRunner creates a runner
func NewRunner() *Runner {
	return &Runner{
		seq:    make(map[seqKey]uint64),
		chains: make(map[seqKey][]*call),
	}
}

// Close marks the owning screen as gone. Later completions report stale,
// but failed writes are still undone since their effects may live in
// state shared with other screens.
func (r *Runner) Close() {
	r.closed = true
}

// Closed reports whether Close was called
func (r *Runner) Closed() bool {
	return r.closed
}

// Run applies m locally and returns the task performing the remote call
func (r *Runner) Run(m Mutation) Task {
	if m.Apply != nil {
		m.Apply()
	}

	key := seqKey{scope: m.Scope, id: m.Key}
	c := &call{op: m.Op, undo: m.Undo}
	if m.Scope != "" {
		r.seq[key]++
		c.seq = r.seq[key]
		r.chains[key] = append(r.chains[key], c)
	}

	return func(ctx context.Context) Completion {
		reconcile, err := m.Remote(ctx)
		return Completion{
			err: err,
			settle: func(err error) Result {
				return r.settle(m, key, c, reconcile, err)
			},
		}
	}
}

func (r *Runner) settle(m Mutation, key seqKey, c *call, reconcile func(), err error) Result {
	fields := map[string]interface{}{
		"op":  m.Op,
		"key": m.Key.String(),
		"seq": c.seq,
	}
	if c.done {
		return Result{Stale: true}
	}
	c.done, c.err, c.reconcile = true, err, reconcile

	chain := []*call{c}
	if m.Scope != "" {
		chain = r.chains[key]
		for _, other := range chain {
			if !other.done {
				logger.WithFields(fields).Debug("call settled, waiting for the rest of its chain")
				return Result{Stale: true}
			}
		}
		delete(r.chains, key)
	}

	var failed *call
	undone := 0
	for i := len(chain) - 1; i >= 0 && chain[i].err != nil; i-- {
		if chain[i].undo != nil {
			chain[i].undo()
		}
		if failed == nil {
			failed = chain[i]
		}
		undone++
	}

	if r.closed {
		logger.WithFields(fields).Debug("completion for closed screen")
		return Result{Stale: true}
	}
	for _, done := range chain {
		if done.err == nil && done.reconcile != nil {
			done.reconcile()
		}
	}
	if failed != nil {
		fields["err"] = failed.err.Error()
		fields["undone"] = undone
		logger.WithFields(fields).Warn("remote call failed, local change rolled back")
		return Result{
			Err:     failed.err,
			Message: fmt.Sprintf("Could not %s. Please try again.", failed.op),
		}
	}
	return Result{Succeeded: true}
}

// guard wraps task so its completion is dropped once alive reports false
func guard(task Task, alive func() bool) Task {
	if task == nil {
		return nil
	}
	return func(ctx context.Context) Completion {
		inner := task(ctx)
		return Completion{
			err: inner.err,
			settle: func(error) Result {
				if !alive() {
					return Result{Stale: true}
				}
				return inner.Settle()
			},
		}
	}
}
