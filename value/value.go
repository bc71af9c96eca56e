package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Kind identifies a Value's payload.
type Kind int

const (
	KindNothing Kind = iota
	KindBool
	KindInt
	KindFloat
	KindFilesize
	KindDuration
	KindDate
	KindString
	KindBinary
	KindRange
	KindRecord
	KindList
	KindClosure
	KindCellPath
	KindError
)

var kindNames = map[Kind]string{
	KindNothing:  "nothing",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindFilesize: "filesize",
	KindDuration: "duration",
	KindDate:     "date",
	KindString:   "string",
	KindBinary:   "binary",
	KindRange:    "range",
	KindRecord:   "record",
	KindList:     "list",
	KindClosure:  "closure",
	KindCellPath: "cell-path",
	KindError:    "error",
}

// String returns the kind's display name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one tagged runtime datum. The zero Value is nothing with the
// unknown tag. Values copy cheaply; structured payloads share by pointer
// and mutation operations copy the touched spine.
type Value struct {
	kind Kind
	data any
	tag  source.Tag
}

// Closure is an unevaluated block plus the environment it closed over.
// The block id refers into the engine's block registry; captures are a
// frozen snapshot of the variables the block read from enclosing scopes.
type Closure struct {
	BlockID  int
	Params   []string
	Captures []Capture
}

// Capture is one captured variable.
type Capture struct {
	Name  string
	Value Value
}

// --- Constructors ---

// Nothing returns the absent value.
func Nothing(tag source.Tag) Value {
	return Value{kind: KindNothing, tag: tag}
}

// Bool returns a boolean value.
func Bool(b bool, tag source.Tag) Value {
	return Value{kind: KindBool, data: b, tag: tag}
}

// Int returns an integer value.
func Int(i int64, tag source.Tag) Value {
	return Value{kind: KindInt, data: i, tag: tag}
}

// Float returns a floating-point value.
func Float(f float64, tag source.Tag) Value {
	return Value{kind: KindFloat, data: f, tag: tag}
}

// Filesize returns a byte-count value.
func Filesize(bytes int64, tag source.Tag) Value {
	return Value{kind: KindFilesize, data: bytes, tag: tag}
}

// Duration returns an elapsed-time value.
func Duration(d time.Duration, tag source.Tag) Value {
	return Value{kind: KindDuration, data: d, tag: tag}
}

// Date returns a point-in-time value.
func Date(t time.Time, tag source.Tag) Value {
	return Value{kind: KindDate, data: t, tag: tag}
}

// String returns a text value.
func String(s string, tag source.Tag) Value {
	return Value{kind: KindString, data: s, tag: tag}
}

// Binary returns a byte-string value.
func Binary(b []byte, tag source.Tag) Value {
	return Value{kind: KindBinary, data: b, tag: tag}
}

// NewRange returns a lazy integer sequence value.
func NewRange(r *Range, tag source.Tag) Value {
	return Value{kind: KindRange, data: r, tag: tag}
}

// NewRecord returns a record value.
func NewRecord(r *Record, tag source.Tag) Value {
	if r == nil {
		r = &Record{}
	}
	return Value{kind: KindRecord, data: r, tag: tag}
}

// List returns a list value.
func List(vals []Value, tag source.Tag) Value {
	return Value{kind: KindList, data: vals, tag: tag}
}

// NewClosure returns a closure value.
func NewClosure(c *Closure, tag source.Tag) Value {
	return Value{kind: KindClosure, data: c, tag: tag}
}

// CellPathValue returns a cell-path value.
func CellPathValue(p cellpath.Path, tag source.Tag) Value {
	return Value{kind: KindCellPath, data: p, tag: tag}
}

// Error returns an error value. The error's own tag becomes the value's
// tag, so blame follows the error through the pipeline.
func Error(err *errors.ShellError) Value {
	return Value{kind: KindError, data: err, tag: err.Tag}
}

// --- Accessors ---

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Tag returns the value's provenance tag.
func (v Value) Tag() source.Tag {
	return v.tag
}

// WithTag returns a copy of the value re-tagged with tag. The payload is
// shared, not copied.
func (v Value) WithTag(tag source.Tag) Value {
	v.tag = tag
	return v
}

// IsNothing reports whether the value is the absent value.
func (v Value) IsNothing() bool {
	return v.kind == KindNothing
}

// IsError reports whether the value carries an error.
func (v Value) IsError() bool {
	return v.kind == KindError
}

// AsError returns the carried error for error values.
func (v Value) AsError() (*errors.ShellError, bool) {
	if v.kind != KindError {
		return nil, false
	}
	return v.data.(*errors.ShellError), true
}

// AsBool returns the payload as a bool. Only bool values convert.
func (v Value) AsBool() (bool, error) {
	if v.kind == KindBool {
		return v.data.(bool), nil
	}
	return false, v.cantConvert("bool")
}

// AsInt returns the payload as an integer. Floats convert when integral;
// strings parse.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.data.(int64), nil
	case KindFloat:
		f := v.data.(float64)
		if f == float64(int64(f)) {
			return int64(f), nil
		}
		return 0, v.cantConvert("int")
	case KindString:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.data.(string)), 10, 64); err == nil {
			return i, nil
		}
		return 0, v.cantConvert("int")
	}
	return 0, v.cantConvert("int")
}

// AsFloat returns the payload as a float. Ints widen; strings parse.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.data.(float64), nil
	case KindInt:
		return float64(v.data.(int64)), nil
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.data.(string)), 64); err == nil {
			return f, nil
		}
		return 0, v.cantConvert("float")
	}
	return 0, v.cantConvert("float")
}

// AsString returns the payload as text. Only string values convert; use
// String() for display rendering of other kinds.
func (v Value) AsString() (string, error) {
	if v.kind == KindString {
		return v.data.(string), nil
	}
	return "", v.cantConvert("string")
}

// AsBinary returns the payload as bytes. Strings convert to their bytes.
func (v Value) AsBinary() ([]byte, error) {
	switch v.kind {
	case KindBinary:
		return v.data.([]byte), nil
	case KindString:
		return []byte(v.data.(string)), nil
	}
	return nil, v.cantConvert("binary")
}

// AsFilesize returns the payload as a byte count. Ints convert directly;
// strings parse with a unit suffix ("10mb", "1.5GiB").
func (v Value) AsFilesize() (int64, error) {
	switch v.kind {
	case KindFilesize:
		return v.data.(int64), nil
	case KindInt:
		return v.data.(int64), nil
	case KindString:
		if n, ok := parseFilesize(v.data.(string)); ok {
			return n, nil
		}
		return 0, v.cantConvert("filesize")
	}
	return 0, v.cantConvert("filesize")
}

// AsDuration returns the payload as elapsed time. Ints convert as
// nanoseconds; strings parse with a unit suffix ("2sec", "150ms").
func (v Value) AsDuration() (time.Duration, error) {
	switch v.kind {
	case KindDuration:
		return v.data.(time.Duration), nil
	case KindInt:
		return time.Duration(v.data.(int64)), nil
	case KindString:
		if d, ok := parseDuration(v.data.(string)); ok {
			return d, nil
		}
		return 0, v.cantConvert("duration")
	}
	return 0, v.cantConvert("duration")
}

// AsDate returns the payload as a point in time. Strings parse as RFC 3339.
func (v Value) AsDate() (time.Time, error) {
	switch v.kind {
	case KindDate:
		return v.data.(time.Time), nil
	case KindString:
		if t, err := time.Parse(time.RFC3339, v.data.(string)); err == nil {
			return t, nil
		}
		return time.Time{}, v.cantConvert("date")
	}
	return time.Time{}, v.cantConvert("date")
}

// AsRange returns the payload as a range.
func (v Value) AsRange() (*Range, error) {
	if v.kind == KindRange {
		return v.data.(*Range), nil
	}
	return nil, v.cantConvert("range")
}

// AsRecord returns the payload as a record.
func (v Value) AsRecord() (*Record, error) {
	if v.kind == KindRecord {
		return v.data.(*Record), nil
	}
	return nil, v.cantConvert("record")
}

// AsList returns the payload as a slice of values.
func (v Value) AsList() ([]Value, error) {
	if v.kind == KindList {
		return v.data.([]Value), nil
	}
	return nil, v.cantConvert("list")
}

// AsClosure returns the payload as a closure.
func (v Value) AsClosure() (*Closure, error) {
	if v.kind == KindClosure {
		return v.data.(*Closure), nil
	}
	return nil, v.cantConvert("closure")
}

// AsCellPath returns the payload as a cell path. Strings parse in dotted
// syntax; ints lift to a single index member. Both keep the value's tag,
// so path misses still blame the argument that spelled the path.
func (v Value) AsCellPath() (cellpath.Path, error) {
	switch v.kind {
	case KindCellPath:
		return v.data.(cellpath.Path), nil
	case KindString:
		p, err := cellpath.Parse(v.data.(string), v.tag)
		if err != nil {
			return cellpath.Path{}, v.cantConvert("cell-path")
		}
		return p, nil
	case KindInt:
		return cellpath.New(cellpath.Index(int(v.data.(int64)), v.tag)), nil
	}
	return cellpath.Path{}, v.cantConvert("cell-path")
}

func (v Value) cantConvert(to string) *errors.ShellError {
	return errors.CantConvert(v.kind.String(), to, v.tag)
}
