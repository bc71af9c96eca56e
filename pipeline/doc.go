// Package pipeline moves values between command stages.
//
// A stage receives PipelineData: nothing, a single value, or a lazy
// ValueStream. Streams are pull-based and once-drainable — no work
// happens until a downstream stage asks for the next item, which gives
// natural backpressure without explicit flow control.
//
// # Interrupts
//
// Every stream is built against a Signals handle shared by one
// top-level evaluation. Interrupt checks happen at pull granularity: a
// triggered stream yields a single Interrupted error value and then
// reports exhaustion, so a partially consumed pipeline stops quickly
// without tearing down the engine.
//
// # Parallel stages
//
// ParEach fans items out to a bounded worker pool. Results arrive in
// completion order unless keep-order is requested, in which case they
// are reordered through an index heap. The first error value produced
// by the pool cancels the remaining work.
//
// # Usage
//
//	src := pipeline.FromSlice(signals, rows, tag)
//	out := pipeline.ParEach(src, 4, false, func(i int, v value.Value) value.Value {
//	    return transform(v)
//	})
//	result := pipeline.FromStream(out).IntoValue(tag)
package pipeline
