// Package metadata provides an in-memory metadata model implementing the
// domain handles, decoded from assembly manifest files.
package metadata

import (
	"strings"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/il"
)

// Method is a method of the in-memory model
type Method struct {
	name          string
	signature     string
	declaringType string
	hasBody       bool
	body          []il.Instruction
}

// NewMethod creates a method with a body. An empty body is still a body.
func NewMethod(name, signature string, body []il.Instruction) *Method {
	return &Method{
		name:      name,
		signature: signature,
		hasBody:   true,
		body:      body,
	}
}

// NewAbstractMethod creates a method without a body
func NewAbstractMethod(name, signature string) *Method {
	return &Method{
		name:      name,
		signature: signature,
	}
}

func (m *Method) Name() string { return m.name }

func (m *Method) DeclaringTypeName() string { return m.declaringType }

func (m *Method) HasBody() bool { return m.hasBody }

// Signature returns the signature as declared, e.g. "int32(int32,string)"
func (m *Method) Signature() string { return m.signature }

// Instructions returns the method body
func (m *Method) Instructions() []il.Instruction {
	if !m.hasBody {
		return nil
	}
	return m.body
}

// FullName returns Type::Name(params)
func (m *Method) FullName() string {
	var b strings.Builder
	if m.declaringType != "" {
		b.WriteString(m.declaringType)
		b.WriteString("::")
	}
	b.WriteString(m.name)
	b.WriteString(parameterList(m.signature))
	return b.String()
}

// parameterList extracts "(a,b)" from a signature such as "void(a, b)"
func parameterList(signature string) string {
	open := strings.IndexByte(signature, '(')
	if open < 0 {
		return "()"
	}
	params := strings.TrimSuffix(signature[open+1:], ")")
	parts := strings.Split(params, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Type is a type of the in-memory model
type Type struct {
	name     string
	baseType string
	methods  []*Method
}

// NewType creates a type with the given methods, in declaration order
func NewType(name, baseType string, methods ...*Method) *Type {
	t := &Type{name: name, baseType: baseType}
	for _, m := range methods {
		t.AddMethod(m)
	}
	return t
}

// AddMethod appends a method and makes t its declaring type
func (t *Type) AddMethod(m *Method) *Type {
	m.declaringType = t.name
	t.methods = append(t.methods, m)
	return t
}

func (t *Type) Name() string { return t.name }

func (t *Type) BaseTypeName() string { return t.baseType }

// Methods returns the declared methods in declaration order
func (t *Type) Methods() []domain.MethodHandle {
	handles := make([]domain.MethodHandle, len(t.methods))
	for i, m := range t.methods {
		handles[i] = m
	}
	return handles
}

// Method looks a method up by full name or by Type::Name when unambiguous
func (t *Type) Method(name string) *Method {
	for _, m := range t.methods {
		if m.FullName() == name {
			return m
		}
	}

	var match *Method
	for _, m := range t.methods {
		if m.declaringType+"::"+m.name == name || m.name == name {
			if match != nil {
				return nil
			}
			match = m
		}
	}
	return match
}

// Assembly is one decoded manifest
type Assembly struct {
	name   string
	source string
	types  []*Type
}

// NewAssembly creates an assembly with the given types, in declaration order
func NewAssembly(name string, types ...*Type) *Assembly {
	return &Assembly{name: name, types: types}
}

func (a *Assembly) Name() string { return a.name }

// Source returns the manifest path the assembly was loaded from, if any
func (a *Assembly) Source() string { return a.source }

// Types returns the declared types in declaration order
func (a *Assembly) Types() []domain.TypeHandle {
	handles := make([]domain.TypeHandle, len(a.types))
	for i, t := range a.types {
		handles[i] = t
	}
	return handles
}

// FindMethod resolves "Type::Name" or a full name with parameter list
func (a *Assembly) FindMethod(name string) (*Method, bool) {
	typeName, _, ok := strings.Cut(name, "::")
	if !ok {
		return nil, false
	}
	for _, t := range a.types {
		if t.name != typeName {
			continue
		}
		if m := t.Method(name); m != nil {
			return m, true
		}
	}
	return nil, false
}
