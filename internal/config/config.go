// Package config loads cobble's project configuration from
// .cobble/config.yaml, applying defaults for missing fields and environment
// variable overrides on top of the file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultStampDir      = ".cobble/stamps"
	DefaultEnvDir        = ".cobble/env"
	DefaultEnvDescriptor = "env.yaml"
	DefaultJobs          = 1
)

// DefaultInstaller returns the default installer argv prefix.
func DefaultInstaller() []string {
	return []string{"pip", "install"}
}

// EnvConfig configures the isolated tool environment.
type EnvConfig struct {
	// Dir is the environment root, relative to the project root.
	Dir string `yaml:"dir"`
	// Descriptor is the provisioning marker file, relative to Dir.
	Descriptor string `yaml:"descriptor"`
	// Installer is the argv prefix used to install tools. Options are
	// appended to it and passed through without interpretation.
	Installer []string `yaml:"installer"`
	// Options holds opaque extra installer arguments (cache location,
	// resolver mode, feature flags).
	Options []string `yaml:"options"`
}

// Config holds cobble's project configuration.
type Config struct {
	// StampDir is the stamp root, relative to the project root.
	StampDir string `yaml:"stamp_dir"`
	// Jobs is the default number of parallel workers for cobble run.
	Jobs int       `yaml:"jobs"`
	Env  EnvConfig `yaml:"env"`
}

// DefaultEnvConfig returns an EnvConfig with sensible default values.
func DefaultEnvConfig() EnvConfig {
	return EnvConfig{
		Dir:        DefaultEnvDir,
		Descriptor: DefaultEnvDescriptor,
		Installer:  DefaultInstaller(),
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		StampDir: DefaultStampDir,
		Jobs:     DefaultJobs,
		Env:      DefaultEnvConfig(),
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// LoadConfig reads and parses .cobble/config.yaml from the given base path.
// If the file doesn't exist, returns default config. Environment variable
// overrides (COBBLE_STAMP_DIR, COBBLE_ENV_DIR, COBBLE_INSTALL_OPTS,
// COBBLE_JOBS) are applied after the file values.
func LoadConfig(basePath string) (*Config, error) {
	configPath := filepath.Join(basePath, ".cobble", "config.yaml")

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides layers COBBLE_* environment variables over cfg.
func applyEnvOverrides(cfg *Config) error {
	cfg.StampDir = lookupString("COBBLE_STAMP_DIR", cfg.StampDir)
	cfg.Env.Dir = lookupString("COBBLE_ENV_DIR", cfg.Env.Dir)

	jobs, err := lookupInt("COBBLE_JOBS", cfg.Jobs)
	if err != nil {
		return err
	}
	cfg.Jobs = jobs

	// Extra installer options are appended, never replaced, so the file
	// configuration keeps working when the variable is set.
	if opts, ok := os.LookupEnv("COBBLE_INSTALL_OPTS"); ok {
		cfg.Env.Options = append(cfg.Env.Options, strings.Fields(opts)...)
	}

	return nil
}

// lookupString returns the value of the environment variable key, or def
// when unset.
func lookupString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// lookupInt returns the integer value of the environment variable key, or
// def when unset.
func lookupInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.StampDir == "" {
		return ValidationError{Field: "stamp_dir", Message: "required field is empty"}
	}
	if cfg.Jobs <= 0 {
		return ValidationError{Field: "jobs", Message: "must be positive"}
	}
	if cfg.Env.Dir == "" {
		return ValidationError{Field: "env.dir", Message: "required field is empty"}
	}
	if cfg.Env.Descriptor == "" {
		return ValidationError{Field: "env.descriptor", Message: "required field is empty"}
	}
	if len(cfg.Env.Installer) == 0 {
		return ValidationError{Field: "env.installer", Message: "required field is empty"}
	}
	return nil
}
