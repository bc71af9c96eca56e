package value

import "github.com/shale-sh/shale/errors"

// Type is a runtime type tag used for overload dispatch and parameter
// declarations. Types are values; compare them with Equal, never ==.
type Type struct {
	kind typeKind
	elem *Type
}

type typeKind int

const (
	anyType typeKind = iota
	nothingType
	boolType
	intType
	floatType
	numberType
	filesizeType
	durationType
	dateType
	stringType
	binaryType
	rangeType
	recordType
	tableType
	listType
	closureType
	cellPathType
	errorType
)

var (
	AnyType      = Type{kind: anyType}
	NothingType  = Type{kind: nothingType}
	BoolType     = Type{kind: boolType}
	IntType      = Type{kind: intType}
	FloatType    = Type{kind: floatType}
	NumberType   = Type{kind: numberType}
	FilesizeType = Type{kind: filesizeType}
	DurationType = Type{kind: durationType}
	DateType     = Type{kind: dateType}
	StringType   = Type{kind: stringType}
	BinaryType   = Type{kind: binaryType}
	RangeType    = Type{kind: rangeType}
	RecordType   = Type{kind: recordType}
	TableType    = Type{kind: tableType}
	ClosureType  = Type{kind: closureType}
	CellPathType = Type{kind: cellPathType}
	ErrorType    = Type{kind: errorType}
)

// ListOf returns the list type with the given element type.
func ListOf(elem Type) Type {
	return Type{kind: listType, elem: &elem}
}

// Elem returns the element type of a list type; any other type reports
// AnyType.
func (t Type) Elem() Type {
	if t.elem == nil {
		return AnyType
	}
	return *t.elem
}

// IsAny reports whether the type is the unconstrained any.
func (t Type) IsAny() bool {
	return t.kind == anyType
}

// Equal reports whether two types are identical.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	if t.kind != listType {
		return true
	}
	return t.Elem().Equal(other.Elem())
}

var typeNames = map[typeKind]string{
	anyType:      "any",
	nothingType:  "nothing",
	boolType:     "bool",
	intType:      "int",
	floatType:    "float",
	numberType:   "number",
	filesizeType: "filesize",
	durationType: "duration",
	dateType:     "date",
	stringType:   "string",
	binaryType:   "binary",
	rangeType:    "range",
	recordType:   "record",
	tableType:    "table",
	closureType:  "closure",
	cellPathType: "cell-path",
	errorType:    "error",
}

// String returns the type's display name.
func (t Type) String() string {
	if t.kind == listType {
		return "list<" + t.Elem().String() + ">"
	}
	return typeNames[t.kind]
}

// Accepts is the matching relation used for overload dispatch: it reports
// whether a value of type other satisfies a declaration of type t. Number
// accepts the whole numeric tower; table and list accept each other when
// the element types line up; any accepts everything.
func (t Type) Accepts(other Type) bool {
	switch t.kind {
	case anyType:
		return true
	case numberType:
		switch other.kind {
		case intType, floatType, filesizeType, durationType, numberType:
			return true
		}
		return false
	case listType:
		switch other.kind {
		case listType:
			return t.Elem().Accepts(other.Elem())
		case tableType:
			return t.Elem().Accepts(RecordType)
		}
		return false
	case tableType:
		switch other.kind {
		case tableType:
			return true
		case listType:
			// An empty list types as list<any>; a table declaration
			// admits it so table commands work on no rows.
			return other.Elem().kind == recordType || other.Elem().kind == anyType
		}
		return false
	default:
		return t.kind == other.kind
	}
}

// TypeOf computes the precise runtime type of a value. List element types
// unify: a list whose elements all share one type reports it, a list of
// records reports table, anything mixed reports list<any>.
func TypeOf(v Value) Type {
	switch v.kind {
	case KindNothing:
		return NothingType
	case KindBool:
		return BoolType
	case KindInt:
		return IntType
	case KindFloat:
		return FloatType
	case KindFilesize:
		return FilesizeType
	case KindDuration:
		return DurationType
	case KindDate:
		return DateType
	case KindString:
		return StringType
	case KindBinary:
		return BinaryType
	case KindRange:
		return RangeType
	case KindRecord:
		return RecordType
	case KindClosure:
		return ClosureType
	case KindCellPath:
		return CellPathType
	case KindError:
		return ErrorType
	case KindList:
		vals := v.data.([]Value)
		if len(vals) == 0 {
			return ListOf(AnyType)
		}
		elem := TypeOf(vals[0])
		for _, item := range vals[1:] {
			if !TypeOf(item).Equal(elem) {
				return ListOf(AnyType)
			}
		}
		if elem.kind == recordType {
			return TableType
		}
		return ListOf(elem)
	}
	return AnyType
}

// Coerce converts v to satisfy the declared type t, applying the lenient
// scalar rules. A value whose type already matches passes through
// untouched; structured types never coerce.
func Coerce(v Value, t Type) (Value, error) {
	if t.Accepts(TypeOf(v)) {
		return v, nil
	}
	switch t.kind {
	case boolType:
		b, err := v.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(b, v.tag), nil
	case intType:
		i, err := v.AsInt()
		if err != nil {
			return Value{}, err
		}
		return Int(i, v.tag), nil
	case floatType, numberType:
		f, err := v.AsFloat()
		if err != nil {
			return Value{}, err
		}
		return Float(f, v.tag), nil
	case stringType:
		s, err := v.AsString()
		if err != nil {
			return Value{}, err
		}
		return String(s, v.tag), nil
	case binaryType:
		b, err := v.AsBinary()
		if err != nil {
			return Value{}, err
		}
		return Binary(b, v.tag), nil
	case filesizeType:
		n, err := v.AsFilesize()
		if err != nil {
			return Value{}, err
		}
		return Filesize(n, v.tag), nil
	case durationType:
		d, err := v.AsDuration()
		if err != nil {
			return Value{}, err
		}
		return Duration(d, v.tag), nil
	case dateType:
		d, err := v.AsDate()
		if err != nil {
			return Value{}, err
		}
		return Date(d, v.tag), nil
	case cellPathType:
		p, err := v.AsCellPath()
		if err != nil {
			return Value{}, err
		}
		return CellPathValue(p, v.tag), nil
	}
	return Value{}, errors.CantConvert(TypeOf(v).String(), t.String(), v.tag)
}
