package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/metadata"
)

// AssemblyReaderImpl implements the domain.AssemblyReader interface over
// manifest files
type AssemblyReaderImpl struct{}

// NewAssemblyReader creates a new assembly reader service
func NewAssemblyReader() *AssemblyReaderImpl {
	return &AssemblyReaderImpl{}
}

// CollectManifests finds all manifest files under the given paths. Files named
// directly are kept when they match the patterns, whatever their location.
func (r *AssemblyReaderImpl) CollectManifests(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(path string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if r.shouldIncludeFile(path, includePatterns, excludePatterns) {
				add(path)
			}
			continue
		}

		dirFiles, err := r.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, f := range dirFiles {
			add(f)
		}
	}

	return files, nil
}

// LoadAssembly decodes one manifest file
func (r *AssemblyReaderImpl) LoadAssembly(path string) (domain.AssemblyHandle, error) {
	return r.Load(path)
}

// Load decodes one manifest file into the concrete metadata model
func (r *AssemblyReaderImpl) Load(path string) (*metadata.Assembly, error) {
	return metadata.LoadFile(path)
}

// collectFromDirectory collects manifest files from a directory in lexical
// order
func (r *AssemblyReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}

		if d.IsDir() {
			if path == dirPath {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") || r.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, relErr := filepath.Rel(dirPath, path)
		if relErr != nil {
			rel = path
		}
		if r.matches(rel, path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	sort.Strings(files)
	return files, nil
}

func (r *AssemblyReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	return r.matches(filepath.Base(path), path, includePatterns, excludePatterns)
}

// matches checks a file against the patterns. Patterns are tried against the
// path relative to the walked root, the path as given, and the base name.
func (r *AssemblyReaderImpl) matches(rel, path string, includePatterns, excludePatterns []string) bool {
	candidates := []string{
		filepath.ToSlash(rel),
		filepath.ToSlash(path),
		filepath.Base(path),
	}

	matchAny := func(pattern string) bool {
		for _, c := range candidates {
			if matched, _ := doublestar.Match(pattern, c); matched {
				return true
			}
		}
		return false
	}

	for _, pattern := range excludePatterns {
		if matchAny(pattern) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		includePatterns = domain.DefaultManifestPatterns()
	}
	for _, pattern := range includePatterns {
		if matchAny(pattern) {
			return true
		}
	}
	return false
}

// shouldSkipDirectory checks if a directory never holds manifests
func (r *AssemblyReaderImpl) shouldSkipDirectory(dirName string) bool {
	switch strings.ToLower(dirName) {
	case "node_modules", "obj", "packages", "testresults":
		return true
	default:
		return false
	}
}

// ValidatePaths validates that all provided paths exist and are accessible
func (r *AssemblyReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
