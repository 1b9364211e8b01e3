package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/ilscn/domain"
)

const testAssemblies = "../testdata/assemblies"

func TestAssemblyReader_CollectManifests(t *testing.T) {
	clean := filepath.Join(testAssemblies, "clean.asm.json")
	billing := filepath.Join(testAssemblies, "nested", "billing.asm.toml")
	shapes := filepath.Join(testAssemblies, "shapes.asm.yaml")

	tests := []struct {
		name      string
		paths     []string
		recursive bool
		include   []string
		exclude   []string
		expected  []string
	}{
		{
			name:      "recursive walk with default patterns",
			paths:     []string{testAssemblies},
			recursive: true,
			include:   domain.DefaultManifestPatterns(),
			expected:  []string{clean, billing, shapes},
		},
		{
			name:     "top level only",
			paths:    []string{testAssemblies},
			include:  domain.DefaultManifestPatterns(),
			expected: []string{clean, shapes},
		},
		{
			name:      "exclude a directory",
			paths:     []string{testAssemblies},
			recursive: true,
			include:   domain.DefaultManifestPatterns(),
			exclude:   []string{"**/nested/**"},
			expected:  []string{clean, shapes},
		},
		{
			name:      "include a single format",
			paths:     []string{testAssemblies},
			recursive: true,
			include:   []string{"**/*.asm.toml"},
			expected:  []string{billing},
		},
		{
			name:      "empty include falls back to defaults",
			paths:     []string{testAssemblies},
			recursive: true,
			expected:  []string{clean, billing, shapes},
		},
		{
			name:     "explicit file",
			paths:    []string{shapes},
			include:  domain.DefaultManifestPatterns(),
			expected: []string{shapes},
		},
		{
			name:      "file and directory are not listed twice",
			paths:     []string{shapes, testAssemblies},
			recursive: true,
			include:   domain.DefaultManifestPatterns(),
			expected:  []string{shapes, clean, billing},
		},
		{
			name:     "non-manifest file",
			paths:    []string{filepath.Join(testAssemblies, "notes.txt")},
			include:  domain.DefaultManifestPatterns(),
			expected: nil,
		},
	}

	reader := NewAssemblyReader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := reader.CollectManifests(tt.paths, tt.recursive, tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, files)
		})
	}
}

func TestAssemblyReader_MissingPath(t *testing.T) {
	reader := NewAssemblyReader()

	_, err := reader.CollectManifests([]string{"../testdata/does-not-exist"}, true, nil, nil)
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeFileNotFound))

	err = reader.ValidatePaths([]string{testAssemblies, "../testdata/does-not-exist"})
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeFileNotFound))
}

func TestAssemblyReader_LoadAssembly(t *testing.T) {
	reader := NewAssemblyReader()

	asm, err := reader.LoadAssembly(filepath.Join(testAssemblies, "shapes.asm.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Shapes", asm.Name())
	assert.Len(t, asm.Types(), 4)

	_, err = reader.LoadAssembly("../testdata/invalid/broken.asm.yaml")
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeParseError))
	assert.Contains(t, err.Error(), "Broken.T::M instruction 2")
}
