package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/ludo-technologies/ilscn/internal/metadata"
)

// LoadedAssembly holds the decode result for a single manifest.
type LoadedAssembly struct {
	Assembly *metadata.Assembly
	Err      error
}

// AssemblyCache stores decoded manifests for a detection run.
// After Seal() is called the cache is read-only and safe for concurrent access
// without locks.
type AssemblyCache struct {
	results map[string]*LoadedAssembly
	sealed  bool
}

// NewAssemblyCache creates a new empty AssemblyCache.
func NewAssemblyCache() *AssemblyCache {
	return &AssemblyCache{
		results: make(map[string]*LoadedAssembly),
	}
}

// Put stores a decode result. Must be called before Seal().
func (c *AssemblyCache) Put(path string, result *LoadedAssembly) {
	if c.sealed {
		return
	}
	c.results[path] = result
}

// Seal marks the cache as read-only.
func (c *AssemblyCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached decode result. Returns (result, true) on hit.
func (c *AssemblyCache) Get(path string) (*LoadedAssembly, bool) {
	r, ok := c.results[path]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *AssemblyCache) Len() int {
	return len(c.results)
}

// PopulateAssemblyCache decodes all manifests in parallel and returns a
// sealed cache. Decoding only builds immutable models; scanning stays
// sequential. concurrency <= 0 means runtime.GOMAXPROCS(0).
func PopulateAssemblyCache(ctx context.Context, reader *AssemblyReaderImpl, files []string, concurrency int) *AssemblyCache {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]*LoadedAssembly, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, path := range files {
		wg.Add(1)
		go func(idx int, fp string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[idx] = &LoadedAssembly{Err: err}
				return
			}

			asm, err := reader.Load(fp)
			results[idx] = &LoadedAssembly{Assembly: asm, Err: err}
		}(i, path)
	}

	wg.Wait()

	cache := NewAssemblyCache()
	for i, path := range files {
		cache.Put(path, results[i])
	}
	cache.Seal()

	return cache
}
