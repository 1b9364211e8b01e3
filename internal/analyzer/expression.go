package analyzer

import (
	"strings"

	"github.com/ludo-technologies/ilscn/internal/il"
)

// ExpressionKind tags the two shapes an Expression can take
type ExpressionKind int

const (
	// AtomicExpression is a literal or load with no children
	AtomicExpression ExpressionKind = iota + 1
	// CompositeExpression is an operation applied to child expressions
	CompositeExpression
)

// String returns string representation of ExpressionKind
func (k ExpressionKind) String() string {
	switch k {
	case AtomicExpression:
		return "atomic"
	case CompositeExpression:
		return "composite"
	default:
		return "unknown"
	}
}

// Expression is one structurally comparable unit of computation.
//
// Operand holds the abstracted operand: the literal or slot index of an
// atomic, the field, type or callee of a composite. Branch targets are never
// kept.
type Expression struct {
	Kind     ExpressionKind
	Op       il.OpCode
	Operand  string
	Children []*Expression
}

// NewAtomic creates a leaf expression
func NewAtomic(op il.OpCode, operand string) *Expression {
	return &Expression{
		Kind:    AtomicExpression,
		Op:      op,
		Operand: operand,
	}
}

// NewComposite creates an operation expression over children
func NewComposite(op il.OpCode, operand string, children ...*Expression) *Expression {
	return &Expression{
		Kind:     CompositeExpression,
		Op:       op,
		Operand:  operand,
		Children: children,
	}
}

// Equal reports structural equality. Nil expressions are equal only to nil.
func (e *Expression) Equal(other *Expression) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	if e.Kind != other.Kind || e.Op != other.Op || e.Operand != other.Operand {
		return false
	}
	if len(e.Children) != len(other.Children) {
		return false
	}
	for i, child := range e.Children {
		if !child.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Size returns the number of nodes in the expression tree
func (e *Expression) Size() int {
	if e == nil {
		return 0
	}
	size := 1
	for _, child := range e.Children {
		size += child.Size()
	}
	return size
}

// String renders the expression as op[operand](children...)
func (e *Expression) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expression) write(b *strings.Builder) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(e.Op.String())
	if e.Operand != "" {
		b.WriteByte('[')
		b.WriteString(e.Operand)
		b.WriteByte(']')
	}
	if e.Kind != CompositeExpression {
		return
	}
	b.WriteByte('(')
	for i, child := range e.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		child.write(b)
	}
	b.WriteByte(')')
}

// ExpressionSequence is the ordered expression listing of one method body
type ExpressionSequence []*Expression

// Strings renders every expression of the sequence
func (s ExpressionSequence) Strings() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.String()
	}
	return out
}
