// Package il models the subset of the CIL instruction set needed to fold a
// method body into comparable expressions.
package il

// OpCode identifies a canonical instruction. Short and macro forms such as
// ldarg.1 or br.s are folded into their canonical opcode when parsed.
type OpCode int

const (
	Invalid OpCode = iota

	// No stack effect
	Nop
	Br
	Leave

	// Leaves: push one value without consuming any
	Ldarg
	Ldarga
	Ldloc
	Ldloca
	Ldnull
	LdcI4
	LdcI8
	LdcR4
	LdcR8
	Ldstr
	Ldtoken
	Ldftn
	Ldsfld
	Ldsflda

	// Stack manipulation
	Dup
	Pop

	// Stores
	Starg
	Stloc
	Stfld
	Stsfld
	Stelem

	// Field and array access
	Ldfld
	Ldflda
	Ldelem
	Ldelema
	Ldlen
	Newarr

	// Arithmetic and logic
	Add
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Neg
	Not
	Ceq
	Cgt
	Clt
	Conv

	// Type operations
	Box
	Unbox
	Castclass
	Isinst

	// Calls
	Call
	Callvirt
	Newobj

	// Control flow
	Ret
	Brfalse
	Brtrue
	Beq
	Bne
	Bge
	Bgt
	Ble
	Blt
	Switch
	Throw
	Rethrow

	opCodeCount
)

// Behavior describes how an opcode takes part in the expression fold.
type Behavior int

const (
	// BehaviorNone instructions leave the evaluation stack untouched.
	BehaviorNone Behavior = iota
	// BehaviorLeaf instructions push one atomic value.
	BehaviorLeaf
	// BehaviorDup duplicates the top of the stack.
	BehaviorDup
	// BehaviorOperation instructions pop a fixed operand count and may push a result.
	BehaviorOperation
	// BehaviorCall instructions take their operand count from the callee signature.
	BehaviorCall
)

// OperandKind tells how an operand contributes to structural identity.
type OperandKind int

const (
	// OperandNone opcodes take no operand.
	OperandNone OperandKind = iota
	// OperandValue operands (indexes, literals, tokens) are part of identity.
	OperandValue
	// OperandTarget operands are branch labels; they are position dependent
	// and never part of identity.
	OperandTarget
	// OperandSignature operands are callee signatures.
	OperandSignature
)

type opInfo struct {
	name     string
	behavior Behavior
	operand  OperandKind
	pop      int
	push     int
}

var opTable = [opCodeCount]opInfo{
	Invalid: {"invalid", BehaviorNone, OperandNone, 0, 0},

	Nop:   {"nop", BehaviorNone, OperandNone, 0, 0},
	Br:    {"br", BehaviorNone, OperandTarget, 0, 0},
	Leave: {"leave", BehaviorNone, OperandTarget, 0, 0},

	Ldarg:   {"ldarg", BehaviorLeaf, OperandValue, 0, 1},
	Ldarga:  {"ldarga", BehaviorLeaf, OperandValue, 0, 1},
	Ldloc:   {"ldloc", BehaviorLeaf, OperandValue, 0, 1},
	Ldloca:  {"ldloca", BehaviorLeaf, OperandValue, 0, 1},
	Ldnull:  {"ldnull", BehaviorLeaf, OperandNone, 0, 1},
	LdcI4:   {"ldc.i4", BehaviorLeaf, OperandValue, 0, 1},
	LdcI8:   {"ldc.i8", BehaviorLeaf, OperandValue, 0, 1},
	LdcR4:   {"ldc.r4", BehaviorLeaf, OperandValue, 0, 1},
	LdcR8:   {"ldc.r8", BehaviorLeaf, OperandValue, 0, 1},
	Ldstr:   {"ldstr", BehaviorLeaf, OperandValue, 0, 1},
	Ldtoken: {"ldtoken", BehaviorLeaf, OperandValue, 0, 1},
	Ldftn:   {"ldftn", BehaviorLeaf, OperandValue, 0, 1},
	Ldsfld:  {"ldsfld", BehaviorLeaf, OperandValue, 0, 1},
	Ldsflda: {"ldsflda", BehaviorLeaf, OperandValue, 0, 1},

	Dup: {"dup", BehaviorDup, OperandNone, 1, 2},
	Pop: {"pop", BehaviorOperation, OperandNone, 1, 0},

	Starg:  {"starg", BehaviorOperation, OperandValue, 1, 0},
	Stloc:  {"stloc", BehaviorOperation, OperandValue, 1, 0},
	Stfld:  {"stfld", BehaviorOperation, OperandValue, 2, 0},
	Stsfld: {"stsfld", BehaviorOperation, OperandValue, 1, 0},
	Stelem: {"stelem", BehaviorOperation, OperandValue, 3, 0},

	Ldfld:   {"ldfld", BehaviorOperation, OperandValue, 1, 1},
	Ldflda:  {"ldflda", BehaviorOperation, OperandValue, 1, 1},
	Ldelem:  {"ldelem", BehaviorOperation, OperandValue, 2, 1},
	Ldelema: {"ldelema", BehaviorOperation, OperandValue, 2, 1},
	Ldlen:   {"ldlen", BehaviorOperation, OperandNone, 1, 1},
	Newarr:  {"newarr", BehaviorOperation, OperandValue, 1, 1},

	Add:  {"add", BehaviorOperation, OperandNone, 2, 1},
	Sub:  {"sub", BehaviorOperation, OperandNone, 2, 1},
	Mul:  {"mul", BehaviorOperation, OperandNone, 2, 1},
	Div:  {"div", BehaviorOperation, OperandNone, 2, 1},
	Rem:  {"rem", BehaviorOperation, OperandNone, 2, 1},
	And:  {"and", BehaviorOperation, OperandNone, 2, 1},
	Or:   {"or", BehaviorOperation, OperandNone, 2, 1},
	Xor:  {"xor", BehaviorOperation, OperandNone, 2, 1},
	Shl:  {"shl", BehaviorOperation, OperandNone, 2, 1},
	Shr:  {"shr", BehaviorOperation, OperandNone, 2, 1},
	Neg:  {"neg", BehaviorOperation, OperandNone, 1, 1},
	Not:  {"not", BehaviorOperation, OperandNone, 1, 1},
	Ceq:  {"ceq", BehaviorOperation, OperandNone, 2, 1},
	Cgt:  {"cgt", BehaviorOperation, OperandNone, 2, 1},
	Clt:  {"clt", BehaviorOperation, OperandNone, 2, 1},
	Conv: {"conv", BehaviorOperation, OperandValue, 1, 1},

	Box:       {"box", BehaviorOperation, OperandValue, 1, 1},
	Unbox:     {"unbox", BehaviorOperation, OperandValue, 1, 1},
	Castclass: {"castclass", BehaviorOperation, OperandValue, 1, 1},
	Isinst:    {"isinst", BehaviorOperation, OperandValue, 1, 1},

	Call:     {"call", BehaviorCall, OperandSignature, 0, 0},
	Callvirt: {"callvirt", BehaviorCall, OperandSignature, 0, 0},
	Newobj:   {"newobj", BehaviorCall, OperandSignature, 0, 1},

	Ret:     {"ret", BehaviorOperation, OperandNone, 1, 0},
	Brfalse: {"brfalse", BehaviorOperation, OperandTarget, 1, 0},
	Brtrue:  {"brtrue", BehaviorOperation, OperandTarget, 1, 0},
	Beq:     {"beq", BehaviorOperation, OperandTarget, 2, 0},
	Bne:     {"bne", BehaviorOperation, OperandTarget, 2, 0},
	Bge:     {"bge", BehaviorOperation, OperandTarget, 2, 0},
	Bgt:     {"bgt", BehaviorOperation, OperandTarget, 2, 0},
	Ble:     {"ble", BehaviorOperation, OperandTarget, 2, 0},
	Blt:     {"blt", BehaviorOperation, OperandTarget, 2, 0},
	Switch:  {"switch", BehaviorOperation, OperandTarget, 1, 0},
	Throw:   {"throw", BehaviorOperation, OperandNone, 1, 0},
	Rethrow: {"rethrow", BehaviorOperation, OperandNone, 0, 0},
}

// String returns the canonical mnemonic of the opcode
func (op OpCode) String() string {
	if op < 0 || op >= opCodeCount {
		return opTable[Invalid].name
	}
	return opTable[op].name
}

// Valid reports whether op is a known opcode other than Invalid
func (op OpCode) Valid() bool {
	return op > Invalid && op < opCodeCount
}

// Behavior returns the fold behavior of the opcode
func (op OpCode) Behavior() Behavior {
	if !op.Valid() {
		return BehaviorNone
	}
	return opTable[op].behavior
}

// OperandKind returns how the opcode's operand is interpreted
func (op OpCode) OperandKind() OperandKind {
	if !op.Valid() {
		return OperandNone
	}
	return opTable[op].operand
}

// StackEffect returns the fixed pop and push counts of the opcode.
// Call-like opcodes report zero pops; use Instruction.StackEffect for them.
func (op OpCode) StackEffect() (pop, push int) {
	if !op.Valid() {
		return 0, 0
	}
	info := opTable[op]
	return info.pop, info.push
}
