// Package config handles RobotCLI configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./robotcli.yaml, ~/.config/robotcli/config.yaml, /etc/robotcli/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"robotcli.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "robotcli", "config.yaml"))
	}

	paths = append(paths, "/etc/robotcli/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// An empty return with nil error means no config file — that is fine,
// defaults cover everything except the API key.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Config holds all RobotCLI configuration.
type Config struct {
	Scope      ScopeConfig      `yaml:"scope"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Session    SessionConfig    `yaml:"session"`
	LogLevel   string           `yaml:"log_level"`
}

// ScopeConfig defines the allow-listed root for all file operations.
type ScopeConfig struct {
	// Root is the directory subtree file operations are confined to.
	// Defaults to the user's home directory. Tilde is expanded.
	Root string `yaml:"root"`
}

// OpenRouterConfig defines the reasoning service connection.
type OpenRouterConfig struct {
	// APIKey authenticates against the OpenAI-compatible endpoint.
	// Usually supplied via OPENROUTER_API_KEY (a .env file is honored).
	APIKey string `yaml:"api_key"`
	// BaseURL is the API root. Defaults to the OpenRouter endpoint.
	BaseURL string `yaml:"base_url"`
	// Model is the model identifier sent with every request.
	Model string `yaml:"model"`
}

// SessionConfig tunes the interactive session behavior.
type SessionConfig struct {
	// CloseDelaySec is how long the farewell lingers before the process
	// exits. The delay doubles as a grace window for in-flight scans.
	CloseDelaySec int `yaml:"close_delay_sec"`
	// HistoryTurns is how many recent turns are included in the
	// reasoning service payload.
	HistoryTurns int `yaml:"history_turns"`
}

const (
	// DefaultModel matches the original default routing choice.
	DefaultModel = "google/gemini-2.0-flash-001"

	// DefaultBaseURL is the OpenRouter OpenAI-compatible API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultCloseDelay is the farewell-to-exit grace window.
	DefaultCloseDelay = 3 * time.Second

	// DefaultHistoryTurns bounds the context payload.
	DefaultHistoryTurns = 10
)

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first so ${OPENROUTER_API_KEY} and friends expand
// inside the YAML. A missing .env is not an error. An empty path loads
// pure defaults plus environment values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills gaps from the environment. The config file wins when both
// are set.
func (c *Config) applyEnv() {
	if c.OpenRouter.APIKey == "" {
		c.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
}

// CloseDelay returns the configured close delay as a duration.
func (c *Config) CloseDelay() time.Duration {
	if c.Session.CloseDelaySec <= 0 {
		return DefaultCloseDelay
	}
	return time.Duration(c.Session.CloseDelaySec) * time.Second
}

// HistoryWindow returns the configured context window size.
func (c *Config) HistoryWindow() int {
	if c.Session.HistoryTurns <= 0 {
		return DefaultHistoryTurns
	}
	return c.Session.HistoryTurns
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		OpenRouter: OpenRouterConfig{
			BaseURL: DefaultBaseURL,
			Model:   DefaultModel,
		},
		Session: SessionConfig{
			CloseDelaySec: int(DefaultCloseDelay / time.Second),
			HistoryTurns:  DefaultHistoryTurns,
		},
	}
}
