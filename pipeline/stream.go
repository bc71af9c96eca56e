package pipeline

import (
	"github.com/google/uuid"

	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// ValueStream is a lazy, once-drainable source of values. A stream has
// a single consumer: Next is not safe for concurrent use, and a
// drained or closed stream stays exhausted.
//
// Every pull first checks the stream's Signals handle. When an
// interrupt has been triggered the stream yields one Interrupted error
// value and then reports exhaustion.
type ValueStream struct {
	id      uuid.UUID
	signals *Signals
	tag     source.Tag
	next    func() (value.Value, bool)
	onClose []func() error
	known   int64
	hasLen  bool
	done    bool
	closed  bool
}

// Option configures a stream at construction time.
type Option func(*ValueStream)

// WithKnownLength records how many items the stream will yield. The
// length is a hint for preallocation and display, never a contract:
// interrupt and error cancellation can cut a stream short.
func WithKnownLength(n int64) Option {
	return func(s *ValueStream) {
		s.known = n
		s.hasLen = true
	}
}

// WithOnClose registers fn to run when the stream is closed. Hooks run
// once, in registration order, and are the place to release whatever
// feeds the stream (worker pools, process handles, files).
func WithOnClose(fn func() error) Option {
	return func(s *ValueStream) {
		s.onClose = append(s.onClose, fn)
	}
}

// New builds a stream around a pull function. next returns the
// following item and true, or false when the source is exhausted; it is
// never called again after it reports false. tag is the provenance of
// the expression that produced the stream and blames interrupt errors.
func New(signals *Signals, tag source.Tag, next func() (value.Value, bool), opts ...Option) *ValueStream {
	if signals == nil {
		signals = NewSignals(nil)
	}
	s := &ValueStream{
		id:      uuid.New(),
		signals: signals,
		tag:     tag,
		next:    next,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the stream's identity, used to correlate trace logs.
func (s *ValueStream) ID() uuid.UUID {
	return s.id
}

// Tag returns the provenance of the expression that produced the stream.
func (s *ValueStream) Tag() source.Tag {
	return s.tag
}

// Signals returns the interrupt handle the stream was built with.
// Derived streams are built against the same handle.
func (s *ValueStream) Signals() *Signals {
	return s.signals
}

// KnownLength returns the declared item count, when one was declared.
func (s *ValueStream) KnownLength() (int64, bool) {
	return s.known, s.hasLen
}

// Next pulls the following item. The second return is false once the
// stream is exhausted. After an interrupt trips, Next yields a single
// Interrupted error value and reports exhaustion from then on.
func (s *ValueStream) Next() (value.Value, bool) {
	if s.done {
		return value.Value{}, false
	}
	if err := s.signals.Check(s.tag); err != nil {
		s.done = true
		return value.Error(err), true
	}
	v, ok := s.next()
	if !ok {
		s.done = true
		return value.Value{}, false
	}
	return v, true
}

// Close marks the stream exhausted and runs its close hooks. Closing
// twice is a no-op; the first hook error wins.
func (s *ValueStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	var firstErr error
	for _, fn := range s.onClose {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FromSlice returns a stream over vals with a known length.
func FromSlice(signals *Signals, vals []value.Value, tag source.Tag) *ValueStream {
	i := 0
	return New(signals, tag, func() (value.Value, bool) {
		if i >= len(vals) {
			return value.Value{}, false
		}
		v := vals[i]
		i++
		return v, true
	}, WithKnownLength(int64(len(vals))))
}

// FromRange returns a stream of the range's integer elements. Bounded
// ranges carry a known length; unbounded ranges yield forever and rely
// on a downstream bound (Take, first) or an interrupt.
func FromRange(signals *Signals, r *value.Range, tag source.Tag) *ValueStream {
	iter := r.Iter()
	var opts []Option
	if n, ok := r.Len(); ok {
		opts = append(opts, WithKnownLength(n))
	}
	return New(signals, tag, func() (value.Value, bool) {
		n, ok := iter()
		if !ok {
			return value.Value{}, false
		}
		return value.Int(n, tag), true
	}, opts...)
}

// Generate returns a stream driven by a stateful step function. Each
// pull calls step with the current state: a non-nil out is yielded, a
// non-nil next becomes the state for the following pull, and a nil
// next ends the stream after any final out. A step may return a nil
// out with a non-nil next to skip a turn without emitting.
func Generate(signals *Signals, initial value.Value, step func(state value.Value) (out, next *value.Value), tag source.Tag) *ValueStream {
	state := initial
	stopped := false
	return New(signals, tag, func() (value.Value, bool) {
		for !stopped {
			out, next := step(state)
			if next != nil {
				state = *next
			} else {
				stopped = true
			}
			if out != nil {
				return *out, true
			}
		}
		return value.Value{}, false
	})
}

// Take returns a stream yielding at most n leading items of s. The
// source sees exactly the pulls needed, so taking from an unbounded or
// side-effecting source is safe. Closing the derived stream closes s.
func (s *ValueStream) Take(n int64) *ValueStream {
	opts := []Option{WithOnClose(s.Close)}
	limit := n
	if limit < 0 {
		limit = 0
	}
	if known, ok := s.KnownLength(); ok {
		if known < limit {
			opts = append(opts, WithKnownLength(known))
		} else {
			opts = append(opts, WithKnownLength(limit))
		}
	}
	var taken int64
	return New(s.signals, s.tag, func() (value.Value, bool) {
		if taken >= limit {
			return value.Value{}, false
		}
		taken++
		return s.Next()
	}, opts...)
}
