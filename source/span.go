package source

import "fmt"

// Span is a half-open byte-offset range [Start, End) into some source text.
// The zero Span doubles as the unknown-position sentinel; see UnknownSpan.
type Span struct {
	Start int
	End   int
}

// NewSpan creates a Span from start and end offsets. End must be greater
// than or equal to Start; spans always come from parser-verified offsets,
// so a reversed range is a programmer error, not a runtime condition.
func NewSpan(start, end int) Span {
	if end < start {
		panic(fmt.Sprintf("source: span end < start (start=%d, end=%d)", start, end))
	}
	return Span{Start: start, End: end}
}

// UnknownSpan returns the sentinel span used for synthetic values that have
// no position in any source text. Renderers must special-case it and never
// point at offset zero on its behalf.
func UnknownSpan() Span {
	return Span{}
}

// ForChar returns a span covering the single byte at pos.
func ForChar(pos int) Span {
	return Span{Start: pos, End: pos + 1}
}

// IsUnknown reports whether the span is the unknown-position sentinel.
func (s Span) IsUnknown() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// Merge returns the smallest span covering both s and other. Merging with
// the unknown sentinel returns the other span unchanged, so synthetic
// operands never drag a result's blame back to offset zero.
func (s Span) Merge(other Span) Span {
	if s.IsUnknown() {
		return other
	}
	if other.IsUnknown() {
		return s
	}
	merged := s
	if other.Start < merged.Start {
		merged.Start = other.Start
	}
	if other.End > merged.End {
		merged.End = other.End
	}
	return merged
}

// SpanForList returns the smallest span covering every span in the list,
// or the unknown sentinel for an empty list.
func SpanForList(spans []Span) Span {
	out := UnknownSpan()
	for _, s := range spans {
		out = out.Merge(s)
	}
	return out
}

// String renders the span as "start..end" for debug output.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
