package eval

import (
	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// Expr is one node of the expression tree. Front ends build Expr trees
// and hand them to the evaluator; every node carries the span it was
// written at so failures blame the right characters.
type Expr interface {
	Tag() source.Tag
}

// Literal is a value known before evaluation.
type Literal struct {
	Value value.Value
	At    source.Tag
}

func (e *Literal) Tag() source.Tag { return e.At }

// Var reads a variable from the visible scope.
type Var struct {
	Name string
	At   source.Tag
}

func (e *Var) Tag() source.Tag { return e.At }

// EnvVar reads one environment entry. An empty Name reads the whole
// environment as a record ($env).
type EnvVar struct {
	Name string
	At   source.Tag
}

func (e *EnvVar) Tag() source.Tag { return e.At }

// ListExpr builds a list from element expressions.
type ListExpr struct {
	Items []Expr
	At    source.Tag
}

func (e *ListExpr) Tag() source.Tag { return e.At }

// RecordEntry is one column of a record literal.
type RecordEntry struct {
	Name    string
	NameTag source.Tag
	Value   Expr
}

// RecordExpr builds a record, columns in written order.
type RecordExpr struct {
	Entries []RecordEntry
	At      source.Tag
}

func (e *RecordExpr) Tag() source.Tag { return e.At }

// RangeExpr builds an int range. A nil To means unbounded; a nil Step
// means 1.
type RangeExpr struct {
	From      Expr
	To        Expr
	Step      Expr
	Inclusive bool
	At        source.Tag
}

func (e *RangeExpr) Tag() source.Tag { return e.At }

// CellPathExpr follows Path into the value Head evaluates to. A nil
// Head yields the path itself as a cell-path value.
type CellPathExpr struct {
	Head Expr
	Path cellpath.Path
	At   source.Tag
}

func (e *CellPathExpr) Tag() source.Tag { return e.At }

// ClosureExpr freezes the visible scope around a registered block.
type ClosureExpr struct {
	Params  []string
	BlockID int
	At      source.Tag
}

func (e *ClosureExpr) Tag() source.Tag { return e.At }

// SubExpr runs a nested pipeline and yields its collected value.
type SubExpr struct {
	Pipeline *Pipeline
	At       source.Tag
}

func (e *SubExpr) Tag() source.Tag { return e.At }

// BinaryExpr applies an operator to two operands. An error value in
// either operand propagates without applying the operator.
type BinaryExpr struct {
	Op  value.Operator
	Lhs Expr
	Rhs Expr
	At  source.Tag
}

func (e *BinaryExpr) Tag() source.Tag { return e.At }

// UnaryOp selects the unary operation.
type UnaryOp int

const (
	// UnaryNot inverts a boolean.
	UnaryNot UnaryOp = iota
	// UnaryNeg negates a number.
	UnaryNeg
)

// UnaryExpr applies not or negation to one operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	At      source.Tag
}

func (e *UnaryExpr) Tag() source.Tag { return e.At }

// NamedArg is one flag as written at a call site. A nil Value means the
// flag was bare.
type NamedArg struct {
	Name    string
	NameTag source.Tag
	Value   Expr
}

// Stage is one pipeline element: a command call by name, or a leading
// expression (Expr non-nil) that produces the stage's data directly.
type Stage struct {
	Expr Expr

	Name       string
	NameTag    source.Tag
	Positional []Expr
	Named      []NamedArg
}

// Pipeline is a left-to-right chain of stages. When Decl is set the
// collected result binds to that variable in the current frame and the
// pipeline yields empty data (let bindings).
type Pipeline struct {
	Decl    string
	DeclTag source.Tag
	Stages  []Stage
}

// Block is a sequence of pipelines; the last one's data is the block
// result. Blocks register in the engine and are referenced by id from
// closures.
type Block struct {
	Pipelines []*Pipeline
}

// ExprStage wraps an expression as a pipeline stage.
func ExprStage(e Expr) Stage {
	return Stage{Expr: e}
}

// CallStage builds a command call stage.
func CallStage(name string, nameTag source.Tag, positional ...Expr) Stage {
	return Stage{Name: name, NameTag: nameTag, Positional: positional}
}

// WithNamed returns a copy of the stage with a flag appended. A nil
// val marks a bare switch.
func (st Stage) WithNamed(name string, nameTag source.Tag, val Expr) Stage {
	st.Named = append(st.Named, NamedArg{Name: name, NameTag: nameTag, Value: val})
	return st
}

// ExprPipeline wraps a single expression as a one-stage pipeline.
func ExprPipeline(e Expr) *Pipeline {
	return &Pipeline{Stages: []Stage{ExprStage(e)}}
}

// ExprBlock wraps a single expression as a one-pipeline block.
func ExprBlock(e Expr) *Block {
	return &Block{Pipelines: []*Pipeline{ExprPipeline(e)}}
}
