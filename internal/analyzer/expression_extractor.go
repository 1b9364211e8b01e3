package analyzer

import (
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/il"
)

// ExpressionExtractor folds a method's instruction stream into an
// ExpressionSequence.
//
// The fold walks the instructions in program order with an evaluation stack.
// Leaves push an atomic expression. Operations pop their operands, become a
// composite over them and push it when they produce a value. Every composite
// is appended to the sequence as soon as it is formed, so intermediate values
// appear alongside the statements that consume them.
type ExpressionExtractor struct{}

// NewExpressionExtractor creates a new expression extractor
func NewExpressionExtractor() *ExpressionExtractor {
	return &ExpressionExtractor{}
}

// Extract returns the expression sequence of a method. Methods without a body
// yield an empty sequence.
func (x *ExpressionExtractor) Extract(method domain.MethodHandle) ExpressionSequence {
	if method == nil || !method.HasBody() {
		return ExpressionSequence{}
	}
	return x.Fold(method.Instructions())
}

// Fold builds the expression sequence of an instruction stream
func (x *ExpressionExtractor) Fold(instructions []il.Instruction) ExpressionSequence {
	sequence := ExpressionSequence{}
	if len(instructions) == 0 {
		return sequence
	}

	// each instruction pushes at most one value
	stack := newExpressionStack(len(instructions))

	for _, inst := range instructions {
		switch inst.OpCode.Behavior() {
		case il.BehaviorLeaf:
			stack.push(NewAtomic(inst.OpCode, inst.OperandKey()))

		case il.BehaviorDup:
			if top := stack.peek(); top != nil {
				stack.push(top)
			}

		case il.BehaviorOperation, il.BehaviorCall:
			pop, push := inst.StackEffect()
			expr := NewComposite(inst.OpCode, inst.OperandKey(), stack.popN(pop)...)
			sequence = append(sequence, expr)
			if push > 0 {
				stack.push(expr)
			}
		}
	}

	return sequence
}

// expressionStack is the evaluation stack of the fold. Popping more values
// than it holds returns what is available: values flowing in from other
// blocks are not tracked.
type expressionStack struct {
	items []*Expression
}

func newExpressionStack(capacity int) *expressionStack {
	return &expressionStack{items: make([]*Expression, 0, capacity)}
}

func (s *expressionStack) push(e *Expression) {
	s.items = append(s.items, e)
}

func (s *expressionStack) peek() *Expression {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// popN removes up to n values and returns them in push order
func (s *expressionStack) popN(n int) []*Expression {
	if n > len(s.items) {
		n = len(s.items)
	}
	if n <= 0 {
		return nil
	}
	start := len(s.items) - n
	popped := make([]*Expression, n)
	copy(popped, s.items[start:])
	s.items = s.items[:start]
	return popped
}
