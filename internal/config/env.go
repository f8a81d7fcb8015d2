package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds configuration loaded from environment variables.
// SECURITY: tokens come from the environment rather than CLI flags, which
// are visible in process listings (ps auxww).
type Env struct {
	// Tokens is the delimited list of access tokens.
	// Env: TOKENS
	Tokens string `envconfig:"TOKENS"`

	// AllowedDirs is the delimited list of permitted root directories.
	// Env: ALLOWED_DIRS
	AllowedDirs string `envconfig:"ALLOWED_DIRS"`

	// AllowedFilePatterns is the delimited list of filename globs.
	// Env: ALLOWED_FILE_PATTERNS
	AllowedFilePatterns string `envconfig:"ALLOWED_FILE_PATTERNS"`

	// LogRequests enables per-request logging ("boolean-ish" string).
	// Env: LOG_REQUESTS
	LogRequests string `envconfig:"LOG_REQUESTS"`

	// LogCreatedFiles enables logging of completed downloads.
	// Env: LOG_CREATED_FILES
	LogCreatedFiles string `envconfig:"LOG_CREATED_FILES"`

	// Port overrides the configured server port when set.
	// Env: PORT
	Port int `envconfig:"PORT"`
}

// LoadEnv loads the environment configuration.
func LoadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}
	return &e, nil
}

// ApplyEnv overlays environment values onto the config. Delimited lists
// are split here; the resulting slices are never mutated again.
func (c *Config) ApplyEnv(e *Env) {
	c.Tokens = SplitList(e.Tokens)
	c.AllowedDirs = SplitList(e.AllowedDirs)
	c.AllowedFilePatterns = SplitList(e.AllowedFilePatterns)
	c.LogRequests = ParseBool(e.LogRequests)
	c.LogCreatedFiles = ParseBool(e.LogCreatedFiles)
	if e.Port > 0 {
		c.Server.Port = e.Port
	}
}
