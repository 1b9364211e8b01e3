package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/il"
)

// Format identifies a manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Manifest is the decoded form of an assembly manifest file:
//
//	assembly: Sample
//	types:
//	  - name: Sample.Calculator
//	    base: System.Object
//	    methods:
//	      - name: Add
//	        signature: "int32(int32,int32)"
//	        body: [ldarg.1, ldarg.2, add, ret]
type Manifest struct {
	Assembly string         `yaml:"assembly" json:"assembly" toml:"assembly"`
	Types    []TypeManifest `yaml:"types" json:"types" toml:"types"`
}

// TypeManifest describes one type
type TypeManifest struct {
	Name    string           `yaml:"name" json:"name" toml:"name"`
	Base    string           `yaml:"base,omitempty" json:"base,omitempty" toml:"base,omitempty"`
	Methods []MethodManifest `yaml:"methods" json:"methods" toml:"methods"`
}

// MethodManifest describes one method. Abstract and extern methods have no
// body.
type MethodManifest struct {
	Name      string   `yaml:"name" json:"name" toml:"name"`
	Signature string   `yaml:"signature,omitempty" json:"signature,omitempty" toml:"signature,omitempty"`
	Abstract  bool     `yaml:"abstract,omitempty" json:"abstract,omitempty" toml:"abstract,omitempty"`
	Extern    bool     `yaml:"extern,omitempty" json:"extern,omitempty" toml:"extern,omitempty"`
	Body      []string `yaml:"body,omitempty" json:"body,omitempty" toml:"body,omitempty"`
}

// FormatFromPath picks the manifest format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", domain.NewUnsupportedFormatError(filepath.Ext(path))
	}
}

// Decode decodes a manifest. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	default:
		return nil, domain.NewUnsupportedFormatError(string(format))
	}
	return &m, nil
}

// LoadFile reads and builds the assembly described by a manifest file
func LoadFile(path string) (*Assembly, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	m, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, domain.NewParseError(path, "", err)
	}

	return m.Build(path)
}

// Build validates the manifest and creates the assembly. source names the
// manifest in errors.
func (m *Manifest) Build(source string) (*Assembly, error) {
	if strings.TrimSpace(m.Assembly) == "" {
		return nil, domain.NewParseError(source, "", errors.New("assembly name is required"))
	}

	asm := &Assembly{name: m.Assembly, source: source}
	typeNames := make(map[string]struct{}, len(m.Types))
	fullNames := make(map[string]struct{})

	for ti, tm := range m.Types {
		if strings.TrimSpace(tm.Name) == "" {
			return nil, domain.NewParseError(source, fmt.Sprintf("type #%d", ti+1), errors.New("type name is required"))
		}
		if _, dup := typeNames[tm.Name]; dup {
			return nil, domain.NewParseError(source, tm.Name, errors.New("type declared twice"))
		}
		typeNames[tm.Name] = struct{}{}

		t := NewType(tm.Name, tm.Base)
		for mi, mm := range tm.Methods {
			method, err := mm.build(source, tm.Name, mi)
			if err != nil {
				return nil, err
			}
			t.AddMethod(method)

			full := method.FullName()
			if _, dup := fullNames[full]; dup {
				return nil, domain.NewParseError(source, full, errors.New("method declared twice"))
			}
			fullNames[full] = struct{}{}
		}
		asm.types = append(asm.types, t)
	}

	return asm, nil
}

func (mm MethodManifest) build(source, typeName string, index int) (*Method, error) {
	if strings.TrimSpace(mm.Name) == "" {
		return nil, domain.NewParseError(source, fmt.Sprintf("%s method #%d", typeName, index+1), errors.New("method name is required"))
	}
	location := typeName + "::" + mm.Name

	if mm.Abstract || mm.Extern {
		if len(mm.Body) > 0 {
			return nil, domain.NewParseError(source, location, errors.New("abstract and extern methods cannot have a body"))
		}
		return NewAbstractMethod(mm.Name, mm.Signature), nil
	}

	body := make([]il.Instruction, 0, len(mm.Body))
	for i, line := range mm.Body {
		inst, err := il.ParseInstruction(line)
		if err != nil {
			return nil, domain.NewParseError(source, fmt.Sprintf("%s instruction %d", location, i+1), err)
		}
		body = append(body, inst)
	}
	return NewMethod(mm.Name, mm.Signature, body), nil
}
