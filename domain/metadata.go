package domain

import "github.com/ludo-technologies/ilscn/internal/il"

// MethodHandle is a borrowed reference to a method of the metadata model.
// Implementations must be comparable and compare equal only to themselves;
// pointer receivers satisfy this.
type MethodHandle interface {
	// Name returns the simple method name; overloads share it
	Name() string

	// FullName returns a name unique within the assembly, including the
	// declaring type and parameter list
	FullName() string

	// DeclaringTypeName returns the full name of the declaring type
	DeclaringTypeName() string

	// HasBody reports whether the method has executable instructions
	HasBody() bool

	// Instructions returns the body in program order; nil when HasBody is false
	Instructions() []il.Instruction
}

// TypeHandle is a borrowed reference to a type of the metadata model
type TypeHandle interface {
	// Name returns the full type name
	Name() string

	// BaseTypeName returns the full name of the base type, empty for none
	BaseTypeName() string

	// Methods returns the declared methods in stable declaration order
	Methods() []MethodHandle
}

// AssemblyHandle is a borrowed reference to one unit of analysis
type AssemblyHandle interface {
	// Name returns the assembly name
	Name() string

	// Types returns the declared types in stable declaration order
	Types() []TypeHandle
}
