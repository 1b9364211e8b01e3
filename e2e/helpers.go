package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildIlscnBinary compiles the CLI into a temporary directory
func buildIlscnBinary(t *testing.T) string {
	t.Helper()
	binaryPath := filepath.Join(t.TempDir(), "ilscn")

	cmd := exec.Command("go", "build", "-o", binaryPath, "../cmd/ilscn")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\nOutput: %s", err, output)
	}
	return binaryPath
}

// createTestManifest writes an assembly manifest into dir
func createTestManifest(t *testing.T, dir, filename, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}
	return path
}

// createTestConfigFile writes a .ilscn.toml into dir
func createTestConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".ilscn.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}
