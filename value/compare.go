package value

import (
	"bytes"
	"strings"
	"time"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
)

func isNumericKind(k Kind) bool {
	switch k {
	case KindInt, KindFloat, KindFilesize, KindDuration:
		return true
	}
	return false
}

// intMagnitude returns the value's magnitude when it is exactly
// representable as an integer.
func intMagnitude(v Value) (int64, bool) {
	switch v.kind {
	case KindInt, KindFilesize:
		return v.data.(int64), true
	case KindDuration:
		return int64(v.data.(time.Duration)), true
	}
	return 0, false
}

func floatMagnitude(v Value) float64 {
	if i, ok := intMagnitude(v); ok {
		return float64(i)
	}
	return v.data.(float64)
}

func compareNumeric(a, b Value) int {
	ai, aInt := intMagnitude(a)
	bi, bInt := intMagnitude(b)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	af, bf := floatMagnitude(a), floatMagnitude(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

// Compare orders two values, returning -1, 0, or +1. The numeric tower
// compares int, float, filesize, and duration against each other by
// magnitude; every other kind compares only with itself. Incomparable
// pairs return a TYPE_MISMATCH error carrying both operand tags.
func Compare(a, b Value) (int, error) {
	if isNumericKind(a.kind) && isNumericKind(b.kind) {
		return compareNumeric(a, b), nil
	}
	if a.kind != b.kind {
		return 0, incomparable(a, b)
	}
	switch a.kind {
	case KindNothing:
		return 0, nil
	case KindBool:
		av, bv := a.data.(bool), b.data.(bool)
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		}
		return 1, nil
	case KindString:
		return strings.Compare(a.data.(string), b.data.(string)), nil
	case KindBinary:
		return bytes.Compare(a.data.([]byte), b.data.([]byte)), nil
	case KindDate:
		at, bt := a.data.(time.Time), b.data.(time.Time)
		switch {
		case at.Equal(bt):
			return 0, nil
		case at.Before(bt):
			return -1, nil
		}
		return 1, nil
	case KindList:
		return compareLists(a.data.([]Value), b.data.([]Value))
	case KindRecord:
		return compareRecords(a.data.(*Record), b.data.(*Record))
	case KindRange:
		return compareRanges(a.data.(*Range), b.data.(*Range)), nil
	case KindCellPath:
		ap := a.data.(cellpath.Path)
		bp := b.data.(cellpath.Path)
		return strings.Compare(ap.String(), bp.String()), nil
	}
	return 0, incomparable(a, b)
}

func compareLists(a, b []Value) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

// compareRecords orders column-by-column in insertion order: name first,
// then value. Records are insertion-ordered, so order participates in
// identity.
func compareRecords(a, b *Record) (int, error) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.cols[i], b.cols[i]); c != 0 {
			return c, nil
		}
		c, err := Compare(a.vals[i], b.vals[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1, nil
	case a.Len() > b.Len():
		return 1, nil
	}
	return 0, nil
}

func compareRanges(a, b *Range) int {
	if c := compareInt64(a.start, b.start); c != 0 {
		return c
	}
	if c := compareInt64(a.step, b.step); c != 0 {
		return c
	}
	if a.bounded != b.bounded {
		if !a.bounded {
			return 1
		}
		return -1
	}
	if a.bounded {
		if c := compareInt64(a.end, b.end); c != 0 {
			return c
		}
		if a.inclusive != b.inclusive {
			if a.inclusive {
				return 1
			}
			return -1
		}
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func incomparable(a, b Value) *errors.ShellError {
	return errors.UnsupportedOperands("compare",
		TypeOf(a).String(), TypeOf(b).String(), a.tag.Until(b.tag))
}

// Equal reports structural equality. It never errors: incomparable pairs
// are simply not equal. Numeric-tower pairs are equal by magnitude, so
// 1 == 1.0 and 1024 == 1kib.
func Equal(a, b Value) bool {
	if isNumericKind(a.kind) && isNumericKind(b.kind) {
		return compareNumeric(a, b) == 0
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindClosure:
		return closuresEqual(a.data.(*Closure), b.data.(*Closure))
	case KindError:
		ae, be := a.data.(*errors.ShellError), b.data.(*errors.ShellError)
		return ae.Kind == be.Kind && ae.Message == be.Message
	case KindRange:
		return compareRanges(a.data.(*Range), b.data.(*Range)) == 0
	case KindCellPath:
		return a.String() == b.String()
	}
	c, err := Compare(a, b)
	return err == nil && c == 0
}

func closuresEqual(a, b *Closure) bool {
	if a.BlockID != b.BlockID || len(a.Params) != len(b.Params) || len(a.Captures) != len(b.Captures) {
		return false
	}
	for i, p := range a.Params {
		if b.Params[i] != p {
			return false
		}
	}
	for i, c := range a.Captures {
		if b.Captures[i].Name != c.Name || !Equal(b.Captures[i].Value, c.Value) {
			return false
		}
	}
	return true
}

// SortCompare is a total order for sorting heterogeneous data. Pairs that
// Compare handles order normally; everything else falls back to a fixed
// kind rank and then the display form, so sorts stay deterministic.
func SortCompare(a, b Value) int {
	if c, err := Compare(a, b); err == nil {
		return c
	}
	if c := compareInt64(int64(a.kind), int64(b.kind)); c != 0 {
		return c
	}
	return strings.Compare(a.String(), b.String())
}
