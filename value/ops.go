package value

import (
	"math"
	"time"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Operator identifies a binary operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpAppend
)

var operatorNames = map[Operator]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "mod",
	OpEq:     "==",
	OpNe:     "!=",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpAnd:    "and",
	OpOr:     "or",
	OpAppend: "++",
}

// String returns the operator's surface spelling.
func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return "op?"
}

// Apply evaluates a binary operator. The result carries the merged tag of
// both operands, so blame for a computed value covers the whole
// expression that produced it. Type errors and zero divisors come back as
// tagged ShellErrors.
func Apply(op Operator, lhs, rhs Value) (Value, error) {
	tag := lhs.tag.Until(rhs.tag)
	switch op {
	case OpEq:
		return Bool(Equal(lhs, rhs), tag), nil
	case OpNe:
		return Bool(!Equal(lhs, rhs), tag), nil
	case OpLt, OpLe, OpGt, OpGe:
		c, err := Compare(lhs, rhs)
		if err != nil {
			return Value{}, opError(op, lhs, rhs, tag)
		}
		switch op {
		case OpLt:
			return Bool(c < 0, tag), nil
		case OpLe:
			return Bool(c <= 0, tag), nil
		case OpGt:
			return Bool(c > 0, tag), nil
		default:
			return Bool(c >= 0, tag), nil
		}
	case OpAnd, OpOr:
		if lhs.kind != KindBool || rhs.kind != KindBool {
			return Value{}, opError(op, lhs, rhs, tag)
		}
		a, b := lhs.data.(bool), rhs.data.(bool)
		if op == OpAnd {
			return Bool(a && b, tag), nil
		}
		return Bool(a || b, tag), nil
	case OpAdd:
		return add(lhs, rhs, tag)
	case OpSub:
		return sub(lhs, rhs, tag)
	case OpMul:
		return mul(lhs, rhs, tag)
	case OpDiv:
		return div(lhs, rhs, tag)
	case OpMod:
		return mod(lhs, rhs, tag)
	case OpAppend:
		return appendOp(lhs, rhs, tag)
	}
	return Value{}, opError(op, lhs, rhs, tag)
}

// bothIntFloat reports whether the pair stays inside plain int/float
// arithmetic, keeping filesize and duration out of the mixed branches.
func bothIntFloat(a, b Value) bool {
	okA := a.kind == KindInt || a.kind == KindFloat
	okB := b.kind == KindInt || b.kind == KindFloat
	return okA && okB
}

func numFloat(v Value) float64 {
	if v.kind == KindInt {
		return float64(v.data.(int64))
	}
	return v.data.(float64)
}

func add(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindInt && rhs.kind == KindInt:
		return Int(lhs.data.(int64)+rhs.data.(int64), tag), nil
	case bothIntFloat(lhs, rhs):
		return Float(numFloat(lhs)+numFloat(rhs), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFilesize:
		return Filesize(lhs.data.(int64)+rhs.data.(int64), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindDuration:
		return Duration(lhs.data.(time.Duration)+rhs.data.(time.Duration), tag), nil
	case lhs.kind == KindString && rhs.kind == KindString:
		return String(lhs.data.(string)+rhs.data.(string), tag), nil
	case lhs.kind == KindDate && rhs.kind == KindDuration:
		return Date(lhs.data.(time.Time).Add(rhs.data.(time.Duration)), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindDate:
		return Date(rhs.data.(time.Time).Add(lhs.data.(time.Duration)), tag), nil
	}
	return Value{}, opError(OpAdd, lhs, rhs, tag)
}

func sub(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindInt && rhs.kind == KindInt:
		return Int(lhs.data.(int64)-rhs.data.(int64), tag), nil
	case bothIntFloat(lhs, rhs):
		return Float(numFloat(lhs)-numFloat(rhs), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFilesize:
		return Filesize(lhs.data.(int64)-rhs.data.(int64), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindDuration:
		return Duration(lhs.data.(time.Duration)-rhs.data.(time.Duration), tag), nil
	case lhs.kind == KindDate && rhs.kind == KindDate:
		return Duration(lhs.data.(time.Time).Sub(rhs.data.(time.Time)), tag), nil
	case lhs.kind == KindDate && rhs.kind == KindDuration:
		return Date(lhs.data.(time.Time).Add(-rhs.data.(time.Duration)), tag), nil
	}
	return Value{}, opError(OpSub, lhs, rhs, tag)
}

func mul(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindInt && rhs.kind == KindInt:
		return Int(lhs.data.(int64)*rhs.data.(int64), tag), nil
	case bothIntFloat(lhs, rhs):
		return Float(numFloat(lhs)*numFloat(rhs), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindInt:
		return Filesize(lhs.data.(int64)*rhs.data.(int64), tag), nil
	case lhs.kind == KindInt && rhs.kind == KindFilesize:
		return Filesize(lhs.data.(int64)*rhs.data.(int64), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFloat:
		return Filesize(int64(float64(lhs.data.(int64))*rhs.data.(float64)), tag), nil
	case lhs.kind == KindFloat && rhs.kind == KindFilesize:
		return Filesize(int64(lhs.data.(float64)*float64(rhs.data.(int64))), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindInt:
		return Duration(lhs.data.(time.Duration)*time.Duration(rhs.data.(int64)), tag), nil
	case lhs.kind == KindInt && rhs.kind == KindDuration:
		return Duration(time.Duration(lhs.data.(int64))*rhs.data.(time.Duration), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindFloat:
		return Duration(time.Duration(float64(lhs.data.(time.Duration))*rhs.data.(float64)), tag), nil
	case lhs.kind == KindFloat && rhs.kind == KindDuration:
		return Duration(time.Duration(lhs.data.(float64)*float64(rhs.data.(time.Duration))), tag), nil
	}
	return Value{}, opError(OpMul, lhs, rhs, tag)
}

func div(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindInt && rhs.kind == KindInt:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		a := lhs.data.(int64)
		// Integer division stays exact: an uneven quotient widens to float.
		if a%b == 0 {
			return Int(a/b, tag), nil
		}
		return Float(float64(a)/float64(b), tag), nil
	case bothIntFloat(lhs, rhs):
		b := numFloat(rhs)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Float(numFloat(lhs)/b, tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFilesize:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Float(float64(lhs.data.(int64))/float64(b), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindInt:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Filesize(lhs.data.(int64)/b, tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFloat:
		b := rhs.data.(float64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Filesize(int64(float64(lhs.data.(int64))/b), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindDuration:
		b := rhs.data.(time.Duration)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Float(float64(lhs.data.(time.Duration))/float64(b), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindInt:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Duration(lhs.data.(time.Duration)/time.Duration(b), tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindFloat:
		b := rhs.data.(float64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Duration(time.Duration(float64(lhs.data.(time.Duration))/b), tag), nil
	}
	return Value{}, opError(OpDiv, lhs, rhs, tag)
}

func mod(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindInt && rhs.kind == KindInt:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Int(lhs.data.(int64)%b, tag), nil
	case bothIntFloat(lhs, rhs):
		b := numFloat(rhs)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Float(math.Mod(numFloat(lhs), b), tag), nil
	case lhs.kind == KindFilesize && rhs.kind == KindFilesize:
		b := rhs.data.(int64)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Filesize(lhs.data.(int64)%b, tag), nil
	case lhs.kind == KindDuration && rhs.kind == KindDuration:
		b := rhs.data.(time.Duration)
		if b == 0 {
			return Value{}, errors.DivisionByZero(rhs.tag)
		}
		return Duration(lhs.data.(time.Duration)%b, tag), nil
	}
	return Value{}, opError(OpMod, lhs, rhs, tag)
}

func appendOp(lhs, rhs Value, tag source.Tag) (Value, error) {
	switch {
	case lhs.kind == KindList && rhs.kind == KindList:
		a, b := lhs.data.([]Value), rhs.data.([]Value)
		out := make([]Value, 0, len(a)+len(b))
		out = append(out, a...)
		out = append(out, b...)
		return List(out, tag), nil
	case lhs.kind == KindString && rhs.kind == KindString:
		return String(lhs.data.(string)+rhs.data.(string), tag), nil
	case lhs.kind == KindBinary && rhs.kind == KindBinary:
		a, b := lhs.data.([]byte), rhs.data.([]byte)
		out := make([]byte, 0, len(a)+len(b))
		out = append(out, a...)
		out = append(out, b...)
		return Binary(out, tag), nil
	}
	return Value{}, opError(OpAppend, lhs, rhs, tag)
}

// Not negates a boolean value.
func Not(v Value) (Value, error) {
	if v.kind != KindBool {
		return Value{}, errors.TypeMismatch("bool", v.kind.String(), v.tag)
	}
	return Bool(!v.data.(bool), v.tag), nil
}

// Neg flips the sign of a numeric value.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return Int(-v.data.(int64), v.tag), nil
	case KindFloat:
		return Float(-v.data.(float64), v.tag), nil
	case KindFilesize:
		return Filesize(-v.data.(int64), v.tag), nil
	case KindDuration:
		return Duration(-v.data.(time.Duration), v.tag), nil
	}
	return Value{}, errors.TypeMismatch("number", v.kind.String(), v.tag)
}

func opError(op Operator, lhs, rhs Value, tag source.Tag) *errors.ShellError {
	return errors.UnsupportedOperands(op.String(),
		TypeOf(lhs).String(), TypeOf(rhs).String(), tag)
}
