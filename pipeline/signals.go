package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Signals carries the interrupt state shared by every stream of one
// top-level evaluation. The engine installs a single handle per
// evaluation and threads it into each stream it creates; a Ctrl-C
// handler or an embedding host flips the flag, and every consumer
// observes it on its next pull.
type Signals struct {
	ctx       context.Context
	triggered atomic.Bool
}

// NewSignals returns a fresh interrupt handle. A nil ctx is treated as
// context.Background; a cancelled ctx triggers the handle the same way
// an explicit Interrupt does.
func NewSignals(ctx context.Context) *Signals {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Signals{ctx: ctx}
}

// Context returns the context the handle was built with.
func (s *Signals) Context() context.Context {
	return s.ctx
}

// Interrupt trips the interrupt flag. Safe to call from any goroutine.
func (s *Signals) Interrupt() {
	s.triggered.Store(true)
}

// Reset clears the interrupt flag so the handle can serve the next
// evaluation. The REPL resets between lines instead of rebuilding the
// engine.
func (s *Signals) Reset() {
	s.triggered.Store(false)
}

// Triggered reports whether the handle has been interrupted, either
// explicitly or through context cancellation.
func (s *Signals) Triggered() bool {
	if s.triggered.Load() {
		return true
	}
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Check returns an Interrupted error blamed at tag when the handle has
// been triggered, and nil otherwise. Streams call it once per pull.
func (s *Signals) Check(tag source.Tag) *errors.ShellError {
	if s.Triggered() {
		return errors.Interrupted(tag)
	}
	return nil
}
