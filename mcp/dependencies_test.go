package mcp

import (
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/config"
)

func NewTestDependencies(reader domain.AssemblyReader, cfg *config.Config, path string) *Dependencies {
	deps := NewDependencies(cfg, path, nil)
	deps.reader = reader
	return deps
}
