package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"groupstats/domain/record"
	"groupstats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathConfig
	Import  ImportDefaults
	Logging LoggingConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	// DataDir is prefixed to relative source paths
	DataDir string
	// OutputDir receives exported reports
	OutputDir string
}

// ImportDefaults holds defaults applied to every import unless a job overrides them
type ImportDefaults struct {
	NoneStrings record.NoneStrings
	RowLimit    int
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Paths:   loadPathConfig(),
		Logging: loadLoggingConfig(),
	}

	importDefaults, err := loadImportDefaults()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load import configuration")
	}
	config.Import = *importDefaults

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadPathConfig() PathConfig {
	return PathConfig{
		DataDir:   getEnvOrDefault("DATA_FILE_PATH", ""),
		OutputDir: getEnvOrDefault("DATA_FILE_OUTPUT_PATH", "."),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func loadImportDefaults() (*ImportDefaults, error) {
	defaults := &ImportDefaults{
		NoneStrings: record.DefaultNoneStrings(),
	}

	if raw, ok := os.LookupEnv("NONE_STRINGS"); ok {
		defaults.NoneStrings = record.NewNoneStrings(splitList(raw)...)
	}

	if raw := os.Getenv("ROW_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.ConfigInvalidf("ROW_LIMIT must be an integer, got %q", raw)
		}
		defaults.RowLimit = limit
	}

	return defaults, nil
}

func validateConfig(config *Config) error {
	if config.Import.RowLimit < 0 {
		return errors.ConfigInvalidf("ROW_LIMIT must be positive, got %d", config.Import.RowLimit)
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return errors.ConfigInvalidf("LOG_FORMAT must be text or json, got %q", config.Logging.Format)
	}
	return nil
}

// ResolveSource prefixes relative source paths with the data directory
func (c *Config) ResolveSource(path string) string {
	if c.Paths.DataDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Paths.DataDir, path)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
