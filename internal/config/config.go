package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sv443/WHDL/internal/logger"
	"github.com/Sv443/WHDL/internal/policy"
)

var cfgLog = logger.New("config")

// Config represents the whdl configuration. The policy material (tokens,
// allowed directories, file patterns) comes from environment variables and
// is immutable after startup; the YAML file only carries server tuning.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Download DownloadConfig `yaml:"download"`

	// Policy material, loaded from the environment (see Env). Never
	// mutated after ApplyEnv.
	Tokens              []string `yaml:"-"`
	AllowedDirs         []string `yaml:"-"`
	AllowedFilePatterns []string `yaml:"-"`
	LogRequests         bool     `yaml:"-"`
	LogCreatedFiles     bool     `yaml:"-"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	NoColor  bool   `yaml:"no_color"`
}

// DownloadConfig holds download operation settings
type DownloadConfig struct {
	// EarlyReplySeconds is the window after which a still-running download
	// is answered with success while the fetch continues in the background.
	EarlyReplySeconds int `yaml:"early_reply_seconds"`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return "config.yaml"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8090,
			LogLevel: "info",
			NoColor:  false,
		},
		Download: DownloadConfig{
			EarlyReplySeconds: 25,
		},
	}
}

// SplitList splits a delimited configuration value on semicolons and
// commas, trimming whitespace and dropping empty entries.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseBool interprets a boolean-ish configuration string.
// "1", "true", "yes" and "on" (any case) mean true; everything else false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks all Config fields and returns a multi-error report.
// Call this AFTER ApplyEnv and CLI overrides have been applied.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be 1-65535 (got %d)", c.Server.Port))
	}

	if _, err := logger.ParseLevel(c.Server.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("server.log_level: %v", err))
	}

	if c.Download.EarlyReplySeconds < 1 {
		errs = append(errs, fmt.Sprintf("download.early_reply_seconds: must be >= 1 (got %d)", c.Download.EarlyReplySeconds))
	}

	if len(c.Tokens) == 0 {
		errs = append(errs, "TOKENS: at least one token is required")
	}
	if len(c.AllowedDirs) == 0 {
		errs = append(errs, "ALLOWED_DIRS: at least one directory is required")
	}
	if len(c.AllowedFilePatterns) == 0 {
		errs = append(errs, "ALLOWED_FILE_PATTERNS: at least one pattern is required")
	}

	// Compile patterns now so a bad glob fails startup, not a request.
	if _, err := policy.NewNameMatcher(c.AllowedFilePatterns); err != nil {
		errs = append(errs, fmt.Sprintf("ALLOWED_FILE_PATTERNS: %v", err))
	}

	if len(errs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for i, e := range errs {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e)
	}
	return errors.New(sb.String())
}

// isUnknownFieldError returns true if the error is from yaml.Decoder.KnownFields(true)
// detecting an unrecognized key (e.g. typo like "servr:").
func isUnknownFieldError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found in type")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Note: Load does NOT call Validate(); callers apply env and CLI
// overrides first, then call cfg.Validate() themselves.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Try strict decode to warn about unknown fields (typos like "servr:")
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if isUnknownFieldError(err) {
			cfgLog.Warn("config has unknown fields (ignored): %v", err)
			cfg = DefaultConfig()
			if err2 := yaml.Unmarshal(data, cfg); err2 != nil {
				return nil, fmt.Errorf("config parse error: %w", err2)
			}
		} else {
			return nil, fmt.Errorf("config parse error: %w", err)
		}
	}

	return cfg, nil
}
