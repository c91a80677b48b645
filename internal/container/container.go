package container

import (
	"fmt"

	"groupstats/adapters/export"
	"groupstats/app"
	"groupstats/internal"
	"groupstats/internal/config"
	"groupstats/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Report output
	Exporter ports.Exporter

	// Services
	Analysis *app.AnalysisService
}

// Option adjusts a container before its components are built
type Option func(*Container)

// WithOutputDir overrides the configured report directory
func WithOutputDir(dir string) Option {
	return func(c *Container) {
		if dir != "" {
			c.Config.Paths.OutputDir = dir
		}
	}
}

// WithLogger replaces the logger built from configuration
func WithLogger(l *internal.Logger) Option {
	return func(c *Container) { c.Logger = l }
}

// New creates a new dependency injection container
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	cfgCopy := *cfg
	c := &Container{Config: &cfgCopy}
	for _, opt := range opts {
		opt(c)
	}

	if c.Logger == nil {
		c.Logger = internal.NewLoggerFromConfig(c.Config.Logging.Level, c.Config.Logging.Format)
	}

	writer, err := export.NewWriter(c.Config.Paths.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report writer: %w", err)
	}
	c.Exporter = writer

	c.Analysis = app.NewAnalysisService(c.Config, c.Exporter, c.Logger)

	c.Logger.Debug("container ready (data dir %q, output dir %q)", c.Config.Paths.DataDir, c.Config.Paths.OutputDir)
	return c, nil
}
