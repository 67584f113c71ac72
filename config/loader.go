package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads a Config from a YAML file, falling back to defaults and
// applying environment-variable overrides on top of it.
type Loader struct {
	searchPaths   []string
	envPrefix     string
	defaultConfig *Config
}

// NewLoader returns a Loader searching the current directory, "./config",
// and "/etc/bollywood" for a config file, with default overrides read
// from BOLLYWOOD_-prefixed environment variables.
func NewLoader() *Loader {
	return &Loader{
		searchPaths:   []string{".", "./config", "/etc/bollywood"},
		envPrefix:     "BOLLYWOOD",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths overrides the loader's search paths.
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix overrides the loader's environment-variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// AutoLoad searches the configured paths for "bollywood.yaml" or
// "bollywood.yml", merges it over the default configuration, applies
// environment overrides, and validates the result. A missing file is not
// an error — the loader falls back to defaults.
func (l *Loader) AutoLoad() (*Config, error) {
	path, err := l.findConfigFile()
	if err != nil {
		if err == ErrConfigFileNotFound {
			cfg := *l.defaultConfig
			l.applyEnv(&cfg)
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, err
	}
	return l.LoadFromFile(path)
}

// LoadFromFile loads and merges the named YAML file over the default
// configuration.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := *l.defaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	l.applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (l *Loader) findConfigFile() (string, error) {
	for _, dir := range l.searchPaths {
		for _, name := range []string{"bollywood.yaml", "bollywood.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", ErrConfigFileNotFound
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv(l.envPrefix + "_MAILBOX_VARIANT"); v != "" {
		cfg.Mailbox.Variant = Variant(v)
	}
	if v := os.Getenv(l.envPrefix + "_MAILBOX_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Mailbox.Capacity = n
		}
	}
	if v := os.Getenv(l.envPrefix + "_MAILBOX_PUSH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mailbox.PushTimeout = d
		}
	}
	if v := os.Getenv(l.envPrefix + "_DISPATCHER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dispatcher.Workers = n
		}
	}
	if v := os.Getenv(l.envPrefix + "_DISPATCHER_THROUGHPUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dispatcher.Throughput = n
		}
	}
}
