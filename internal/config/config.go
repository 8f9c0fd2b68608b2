// Package config resolves notifier configuration from defaults, an
// optional hopper.yml file, and environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is where notices go unless overridden.
const DefaultEndpoint = "https://api.hopperapp.dev"

// DefaultParamsFilters are always worth redacting.
func DefaultParamsFilters() []string {
	return []string{"password", "password_confirmation"}
}

// Config holds all notifier configuration.
type Config struct {
	APIKey        string   `yaml:"api_key"`
	Endpoint      string   `yaml:"endpoint"`
	Environment   string   `yaml:"environment"`
	ProjectRoot   string   `yaml:"project_root"`
	Hostname      string   `yaml:"hostname"`
	ParamsFilters []string `yaml:"params_filters"`
	IgnoreClasses []string `yaml:"ignore"`
	LogLevel      string   `yaml:"log_level"`
}

// Load resolves configuration. The file path comes from HOPPER_CONFIG,
// falling back to ./hopper.yml; a missing file is not an error, a
// malformed one is.
func Load() (Config, error) {
	cfg := defaults()

	path := getenv("HOPPER_CONFIG", "hopper.yml")
	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}

	loadEnv(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Endpoint:      DefaultEndpoint,
		Environment:   "development",
		ParamsFilters: DefaultParamsFilters(),
		LogLevel:      "warn",
	}
}

// loadFile overlays cfg with values from a YAML file, if it exists.
func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	overlay(cfg, file)
	return nil
}

// loadEnv overlays cfg with values from HOPPER_* environment variables.
func loadEnv(cfg *Config) {
	overlay(cfg, Config{
		APIKey:        os.Getenv("HOPPER_API_KEY"),
		Endpoint:      os.Getenv("HOPPER_ENDPOINT"),
		Environment:   os.Getenv("HOPPER_ENV"),
		ProjectRoot:   os.Getenv("HOPPER_PROJECT_ROOT"),
		Hostname:      os.Getenv("HOPPER_HOSTNAME"),
		ParamsFilters: splitList(os.Getenv("HOPPER_PARAMS_FILTERS")),
		IgnoreClasses: splitList(os.Getenv("HOPPER_IGNORE")),
		LogLevel:      os.Getenv("HOPPER_LOG_LEVEL"),
	})
}

// overlay copies every non-zero field of src onto dst. List fields
// replace rather than append, so a layer can both narrow and widen the
// one below it.
func overlay(dst *Config, src Config) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.Environment != "" {
		dst.Environment = src.Environment
	}
	if src.ProjectRoot != "" {
		dst.ProjectRoot = src.ProjectRoot
	}
	if src.Hostname != "" {
		dst.Hostname = src.Hostname
	}
	if src.ParamsFilters != nil {
		dst.ParamsFilters = src.ParamsFilters
	}
	if src.IgnoreClasses != nil {
		dst.IgnoreClasses = src.IgnoreClasses
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated env value. Empty input returns nil
// (meaning "not set"), and blank entries are dropped.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
