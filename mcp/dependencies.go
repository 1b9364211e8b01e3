package mcp

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/ilscn/app"
	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/config"
	"github.com/ludo-technologies/ilscn/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	reader     domain.AssemblyReader
	config     *config.Config
	configPath string
	logger     *zap.Logger
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config, configPath string, logger *zap.Logger) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dependencies{
		reader:     service.NewAssemblyReader(),
		config:     cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BaseRequest returns a detection request seeded from the configuration
func (d *Dependencies) BaseRequest() *domain.DuplicateRequest {
	cfg := d.config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	req := service.ConfigToRequest(cfg)
	req.ConfigPath = d.configPath
	return req
}

// BuildDuplicateUseCase assembles a fresh DuplicateUseCase with injected dependencies.
func (d *Dependencies) BuildDuplicateUseCase() (*app.DuplicateUseCase, error) {
	return app.NewDuplicateUseCaseBuilder().
		WithService(service.NewDuplicateService(nil, d.logger)).
		WithAssemblyReader(d.reader).
		WithFormatter(service.NewDuplicateFormatter()).
		WithLogger(d.logger).
		Build()
}
