package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/il"
)

const sampleYAML = `assembly: Sample
types:
  - name: Sample.Calculator
    base: System.Object
    methods:
      - name: Add
        signature: "int32(int32, int32)"
        body:
          - ldarg.1
          - ldarg.2
          - add
          - ret
      - name: Compute
        signature: "int32()"
        abstract: true
`

const sampleJSON = `{
  "assembly": "Sample",
  "types": [
    {
      "name": "Sample.Calculator",
      "base": "System.Object",
      "methods": [
        {"name": "Add", "signature": "int32(int32, int32)", "body": ["ldarg.1", "ldarg.2", "add", "ret"]},
        {"name": "Compute", "signature": "int32()", "abstract": true}
      ]
    }
  ]
}`

const sampleTOML = `assembly = "Sample"

[[types]]
name = "Sample.Calculator"
base = "System.Object"

  [[types.methods]]
  name = "Add"
  signature = "int32(int32, int32)"
  body = ["ldarg.1", "ldarg.2", "add", "ret"]

  [[types.methods]]
  name = "Compute"
  signature = "int32()"
  abstract = true
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_AllFormats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"sample.asm.yaml", sampleYAML},
		{"sample.asm.json", sampleJSON},
		{"sample.asm.toml", sampleTOML},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeManifest(t, tt.file, tt.content)

			asm, err := LoadFile(path)
			require.NoError(t, err)

			assert.Equal(t, "Sample", asm.Name())
			assert.Equal(t, path, asm.Source())
			require.Len(t, asm.Types(), 1)

			typ := asm.Types()[0]
			assert.Equal(t, "Sample.Calculator", typ.Name())
			assert.Equal(t, "System.Object", typ.BaseTypeName())

			methods := typ.Methods()
			require.Len(t, methods, 2)

			add := methods[0]
			assert.Equal(t, "Add", add.Name())
			assert.Equal(t, "Sample.Calculator::Add(int32,int32)", add.FullName())
			assert.Equal(t, "Sample.Calculator", add.DeclaringTypeName())
			assert.True(t, add.HasBody())
			assert.Equal(t, il.MustParse("ldarg 1", "ldarg 2", "add", "ret"), add.Instructions())

			compute := methods[1]
			assert.False(t, compute.HasBody())
			assert.Nil(t, compute.Instructions())
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "unsupported extension",
			file:     "sample.asm.xml",
			content:  "<assembly/>",
			wantCode: domain.ErrCodeUnsupportedFormat,
		},
		{
			name:     "malformed yaml",
			file:     "bad.asm.yaml",
			content:  "assembly: [",
			wantCode: domain.ErrCodeParseError,
		},
		{
			name:     "unknown field",
			file:     "bad.asm.yaml",
			content:  "assembly: A\nnamespace: B\n",
			wantCode: domain.ErrCodeParseError,
		},
		{
			name:     "missing assembly name",
			file:     "bad.asm.json",
			content:  `{"types": []}`,
			wantCode: domain.ErrCodeParseError,
			wantMsg:  "assembly name is required",
		},
		{
			name:     "unknown opcode",
			file:     "bad.asm.yaml",
			content:  "assembly: A\ntypes:\n  - name: A.T\n    methods:\n      - name: M\n        body: [ldarg.0, frob]\n",
			wantCode: domain.ErrCodeParseError,
			wantMsg:  "A.T::M instruction 2",
		},
		{
			name:     "abstract with body",
			file:     "bad.asm.yaml",
			content:  "assembly: A\ntypes:\n  - name: A.T\n    methods:\n      - name: M\n        abstract: true\n        body: [ret]\n",
			wantCode: domain.ErrCodeParseError,
			wantMsg:  "cannot have a body",
		},
		{
			name:     "duplicate type",
			file:     "bad.asm.yaml",
			content:  "assembly: A\ntypes:\n  - name: A.T\n  - name: A.T\n",
			wantCode: domain.ErrCodeParseError,
			wantMsg:  "type declared twice",
		},
		{
			name:     "duplicate method",
			file:     "bad.asm.yaml",
			content:  "assembly: A\ntypes:\n  - name: A.T\n    methods:\n      - name: M\n      - name: M\n",
			wantCode: domain.ErrCodeParseError,
			wantMsg:  "method declared twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.file, tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.True(t, domain.HasErrorCode(err, tt.wantCode), "unexpected error: %v", err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.asm.yaml"))
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeFileNotFound))
}

func TestDecode_EmptyBodyIsStillABody(t *testing.T) {
	m, err := Decode(strings.NewReader("assembly: A\ntypes:\n  - name: A.T\n    methods:\n      - name: Empty\n"), FormatYAML)
	require.NoError(t, err)

	asm, err := m.Build("inline")
	require.NoError(t, err)

	method := asm.Types()[0].Methods()[0]
	assert.True(t, method.HasBody())
	assert.Empty(t, method.Instructions())
	assert.Equal(t, "A.T::Empty()", method.FullName())
}

func TestAssembly_FindMethod(t *testing.T) {
	overloadInt := NewMethod("Print", "void(int32)", il.MustParse("ret"))
	overloadString := NewMethod("Print", "void(string)", il.MustParse("ret"))
	single := NewMethod("Reset", "void()", il.MustParse("ret"))
	asm := NewAssembly("A", NewType("A.T", "", overloadInt, overloadString, single))

	m, ok := asm.FindMethod("A.T::Reset")
	require.True(t, ok)
	assert.Same(t, single, m)

	m, ok = asm.FindMethod("A.T::Print(string)")
	require.True(t, ok)
	assert.Same(t, overloadString, m)

	_, ok = asm.FindMethod("A.T::Print")
	assert.False(t, ok, "ambiguous overloads need a parameter list")

	_, ok = asm.FindMethod("A.Missing::Reset")
	assert.False(t, ok)

	_, ok = asm.FindMethod("Reset")
	assert.False(t, ok)
}
