package pipeline

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

type dataKind int

const (
	dataEmpty dataKind = iota
	dataValue
	dataStream
)

// PipelineData is the unit handed from one stage to the next: nothing,
// a single value, or a lazy stream.
type PipelineData struct {
	kind   dataKind
	val    value.Value
	stream *ValueStream
}

// Empty returns pipeline data carrying nothing. The first stage of a
// pipeline receives it.
func Empty() PipelineData {
	return PipelineData{}
}

// FromValue wraps a single value as pipeline data.
func FromValue(v value.Value) PipelineData {
	return PipelineData{kind: dataValue, val: v}
}

// FromStream wraps a stream as pipeline data.
func FromStream(s *ValueStream) PipelineData {
	return PipelineData{kind: dataStream, stream: s}
}

// IsEmpty reports whether the data carries nothing.
func (d PipelineData) IsEmpty() bool {
	return d.kind == dataEmpty
}

// Value returns the carried value when the data is a single value.
func (d PipelineData) Value() (value.Value, bool) {
	if d.kind != dataValue {
		return value.Value{}, false
	}
	return d.val, true
}

// Stream returns the carried stream when the data is a stream.
func (d PipelineData) Stream() (*ValueStream, bool) {
	if d.kind != dataStream {
		return nil, false
	}
	return d.stream, true
}

// IntoStream adapts the data to a stream: a list explodes to its
// elements, a range iterates lazily, any other value yields itself
// once, and empty data yields nothing.
func (d PipelineData) IntoStream(signals *Signals) *ValueStream {
	switch d.kind {
	case dataStream:
		return d.stream
	case dataValue:
		switch d.val.Kind() {
		case value.KindList:
			vals, _ := d.val.AsList()
			return FromSlice(signals, vals, d.val.Tag())
		case value.KindRange:
			r, _ := d.val.AsRange()
			return FromRange(signals, r, d.val.Tag())
		default:
			return FromSlice(signals, []value.Value{d.val}, d.val.Tag())
		}
	default:
		return FromSlice(signals, nil, source.UnknownTag())
	}
}

// IntoValue materializes the data into a single value. A stream drains
// into a list tagged with tag, which loads the entire remainder into
// memory; bound unbounded sources (take, first) before collecting. An
// error value produced mid-stream stops the drain and is returned
// itself, dropping the items collected before it. Empty data
// materializes as nothing.
func (d PipelineData) IntoValue(tag source.Tag) value.Value {
	switch d.kind {
	case dataValue:
		return d.val
	case dataStream:
		var vals []value.Value
		if n, ok := d.stream.KnownLength(); ok {
			vals = make([]value.Value, 0, n)
		}
		for {
			v, ok := d.stream.Next()
			if !ok {
				break
			}
			if v.IsError() {
				_ = d.stream.Close()
				return v
			}
			vals = append(vals, v)
		}
		_ = d.stream.Close()
		return value.List(vals, tag)
	default:
		return value.Nothing(tag)
	}
}

// Drain consumes and discards whatever the data still holds, then
// releases stream resources.
func (d PipelineData) Drain() error {
	if d.kind != dataStream {
		return nil
	}
	for {
		if _, ok := d.stream.Next(); !ok {
			break
		}
	}
	return d.stream.Close()
}

// Type reports the data's type for signature dispatch. A stream types
// as list<any> without being consumed; empty data types as nothing.
func (d PipelineData) Type() value.Type {
	switch d.kind {
	case dataValue:
		return value.TypeOf(d.val)
	case dataStream:
		return value.ListOf(value.AnyType)
	default:
		return value.NothingType
	}
}

// Tag returns the provenance of the carried value or stream.
func (d PipelineData) Tag() source.Tag {
	switch d.kind {
	case dataValue:
		return d.val.Tag()
	case dataStream:
		return d.stream.Tag()
	default:
		return source.UnknownTag()
	}
}

// FirstError returns the carried error when the data is a single error
// value. Streams are not inspected: their errors surface on pull.
func (d PipelineData) FirstError() (*errors.ShellError, bool) {
	if d.kind != dataValue || !d.val.IsError() {
		return nil, false
	}
	err, _ := d.val.AsError()
	return err, true
}
