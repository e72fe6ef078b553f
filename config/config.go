// Package config loads the daemon configuration: in-code defaults,
// overridden by an optional YAML file, overridden by environment
// variables for provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/obahamonde/cms-nlp-plugins/llm"
	"github.com/obahamonde/cms-nlp-plugins/runs"
)

// OpenAIConfig represents configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// RetryConfig represents the backoff policy for outbound provider calls.
type RetryConfig struct {
	MaxAttempts uint64 `yaml:"max_attempts,omitempty"` // Total attempts including the first
	BaseDelayMS int    `yaml:"base_delay_ms,omitempty"`
	MaxDelayMS  int    `yaml:"max_delay_ms,omitempty"`
}

// Policy converts the config into the retry policy used by the LLM
// client. Unset fields fall back to the default policy.
func (c RetryConfig) Policy() llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	if c.MaxAttempts > 0 {
		policy.MaxAttempts = c.MaxAttempts
	}
	if c.BaseDelayMS > 0 {
		policy.BaseDelay = time.Duration(c.BaseDelayMS) * time.Millisecond
	}
	if c.MaxDelayMS > 0 {
		policy.MaxDelay = time.Duration(c.MaxDelayMS) * time.Millisecond
	}
	return policy
}

// PollConfig represents the run poller intervals.
type PollConfig struct {
	QueuedIntervalMS int `yaml:"queued_interval_ms,omitempty"` // Between polls while queued
	ActiveIntervalMS int `yaml:"active_interval_ms,omitempty"` // Between polls while in progress
}

// PollerConfig converts the config into the poller's interval set.
func (c PollConfig) PollerConfig() runs.Config {
	return runs.Config{
		QueuedInterval: time.Duration(c.QueuedIntervalMS) * time.Millisecond,
		ActiveInterval: time.Duration(c.ActiveIntervalMS) * time.Millisecond,
	}
}

// ServerConfig represents the configuration for the nlpd daemon.
type ServerConfig struct {
	Server struct {
		Addr      string `yaml:"addr,omitempty"`       // HTTP listen address (default: :8080)
		StaticDir string `yaml:"static_dir,omitempty"` // Directory served at / (empty disables)
	} `yaml:"server,omitempty"`

	OpenAI OpenAIConfig `yaml:"openai,omitempty"`
	Retry  RetryConfig  `yaml:"retry,omitempty"`
	Poll   PollConfig   `yaml:"poll,omitempty"`
}

// GetServerConfigPath returns the default config file path.
// Can be overridden via NLPD_CONFIG_PATH environment variable.
func GetServerConfigPath() string {
	if envPath := os.Getenv("NLPD_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.nlpd/config.yaml"
	}
	return filepath.Join(homeDir, ".nlpd", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// LoadServerConfig loads the daemon configuration. A missing config
// file is not an error; defaults and environment overrides still apply.
func LoadServerConfig(path string) (*ServerConfig, error) {
	defaults := ServerConfig{
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-3.5-turbo-1106",
		},
		Retry: RetryConfig{
			MaxAttempts: llm.DefaultMaxAttempts,
			BaseDelayMS: int(llm.DefaultBaseDelay / time.Millisecond),
			MaxDelayMS:  int(llm.DefaultMaxDelay / time.Millisecond),
		},
		Poll: PollConfig{
			QueuedIntervalMS: 1000,
			ActiveIntervalMS: 500,
		},
	}
	defaults.Server.Addr = ":8080"

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileConfig ServerConfig
		if err := yaml.Unmarshal(configYAML, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
		}

		if err := mergo.Merge(&defaults, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	applyOpenAIEnvOverrides(&defaults.OpenAI)

	return &defaults, nil
}

// SaveServerConfig saves the configuration to the specified path.
func SaveServerConfig(cfg *ServerConfig, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
