package il

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one canonicalized instruction of a method body
type Instruction struct {
	OpCode  OpCode
	Operand string
}

// String renders the instruction in "opcode operand" form
func (i Instruction) String() string {
	if i.Operand == "" {
		return i.OpCode.String()
	}
	return i.OpCode.String() + " " + i.Operand
}

// OperandKey returns the operand in the abstracted form used for structural
// comparison. Branch targets are dropped since they depend on the position of
// the code inside its method.
func (i Instruction) OperandKey() string {
	switch i.OpCode.OperandKind() {
	case OperandValue:
		return i.Operand
	case OperandSignature:
		site, err := ParseCallSite(i.Operand)
		if err != nil {
			return i.Operand
		}
		return site.String()
	default:
		return ""
	}
}

// StackEffect returns how many values the instruction pops and pushes
func (i Instruction) StackEffect() (pop, push int) {
	if i.OpCode.Behavior() != BehaviorCall {
		return i.OpCode.StackEffect()
	}

	site, err := ParseCallSite(i.Operand)
	if err != nil {
		return 0, 0
	}

	pop = len(site.Params)
	switch i.OpCode {
	case Newobj:
		return pop, 1
	default:
		if site.HasThis {
			pop++
		}
		if site.ReturnType != "void" {
			push = 1
		}
		return pop, push
	}
}

// alias maps a short or macro mnemonic to its canonical opcode and the
// operand it implies, if any.
type alias struct {
	op      OpCode
	operand string
}

var mnemonics = buildMnemonics()

func buildMnemonics() map[string]alias {
	m := make(map[string]alias, 128)
	for op := Nop; op < opCodeCount; op++ {
		m[opTable[op].name] = alias{op: op}
	}

	for n := 0; n <= 3; n++ {
		idx := strconv.Itoa(n)
		m["ldarg."+idx] = alias{Ldarg, idx}
		m["ldloc."+idx] = alias{Ldloc, idx}
		m["stloc."+idx] = alias{Stloc, idx}
	}
	for n := 0; n <= 8; n++ {
		m["ldc.i4."+strconv.Itoa(n)] = alias{LdcI4, strconv.Itoa(n)}
	}
	m["ldc.i4.m1"] = alias{LdcI4, "-1"}

	for _, op := range []OpCode{Ldarg, Ldarga, Starg, Ldloc, Ldloca, Stloc, LdcI4, Br, Leave, Brfalse, Brtrue, Beq, Bge, Bgt, Ble, Blt} {
		m[opTable[op].name+".s"] = alias{op: op}
	}
	for _, op := range []OpCode{Bne, Bge, Bgt, Ble, Blt} {
		m[opTable[op].name+".un"] = alias{op: op}
		m[opTable[op].name+".un.s"] = alias{op: op}
	}
	for _, op := range []OpCode{Div, Rem, Shr, Cgt, Clt} {
		m[opTable[op].name+".un"] = alias{op: op}
	}
	for _, op := range []OpCode{Add, Sub, Mul} {
		m[opTable[op].name+".ovf"] = alias{op: op}
		m[opTable[op].name+".ovf.un"] = alias{op: op}
	}

	m["brnull"] = alias{op: Brfalse}
	m["brzero"] = alias{op: Brfalse}
	m["brinst"] = alias{op: Brtrue}
	m["unbox.any"] = alias{op: Unbox}
	return m
}

// suffixed opcodes carry their element or target type in the mnemonic
var suffixed = []struct {
	prefix string
	op     OpCode
}{
	{"conv.", Conv},
	{"ldelem.", Ldelem},
	{"stelem.", Stelem},
}

// Lookup resolves a mnemonic to its canonical opcode and implied operand
func Lookup(mnemonic string) (OpCode, string, bool) {
	if a, ok := mnemonics[mnemonic]; ok {
		return a.op, a.operand, true
	}
	lower := strings.ToLower(mnemonic)
	if a, ok := mnemonics[lower]; ok {
		return a.op, a.operand, true
	}
	for _, s := range suffixed {
		if rest, ok := strings.CutPrefix(lower, s.prefix); ok && rest != "" {
			return s.op, rest, true
		}
	}
	return Invalid, "", false
}

// ParseInstruction parses one textual instruction such as "ldarg.1",
// "ldc.i4 42" or "call instance void Sample.Foo::Bar(int32)". A leading
// "IL_xxxx:" label is ignored.
func ParseInstruction(text string) (Instruction, error) {
	line := strings.TrimSpace(text)
	if label, rest, ok := strings.Cut(line, ":"); ok && isLabel(label) {
		line = strings.TrimSpace(rest)
	}
	if line == "" {
		return Instruction{}, fmt.Errorf("empty instruction")
	}

	mnemonic, operand, _ := strings.Cut(line, " ")
	operand = strings.TrimSpace(operand)

	op, implied, ok := Lookup(mnemonic)
	if !ok {
		return Instruction{}, fmt.Errorf("unknown opcode %q", mnemonic)
	}

	if implied != "" {
		if operand != "" {
			return Instruction{}, fmt.Errorf("%s does not take an operand, got %q", mnemonic, operand)
		}
		operand = implied
	}

	switch op.OperandKind() {
	case OperandNone:
		if operand != "" {
			return Instruction{}, fmt.Errorf("%s does not take an operand, got %q", mnemonic, operand)
		}
	case OperandValue, OperandTarget:
		if operand == "" {
			return Instruction{}, fmt.Errorf("%s requires an operand", mnemonic)
		}
	case OperandSignature:
		site, err := ParseCallSite(operand)
		if err != nil {
			return Instruction{}, fmt.Errorf("%s: %w", mnemonic, err)
		}
		operand = site.String()
	}

	return Instruction{OpCode: op, Operand: operand}, nil
}

func isLabel(s string) bool {
	if !strings.HasPrefix(s, "IL_") || len(s) == 3 {
		return false
	}
	_, err := strconv.ParseUint(s[3:], 16, 32)
	return err == nil
}

// MustParse parses a list of instructions and panics on the first error.
// Intended for tests and static fixtures.
func MustParse(lines ...string) []Instruction {
	out := make([]Instruction, 0, len(lines))
	for _, line := range lines {
		inst, err := ParseInstruction(line)
		if err != nil {
			panic(fmt.Sprintf("il: %q: %v", line, err))
		}
		out = append(out, inst)
	}
	return out
}
