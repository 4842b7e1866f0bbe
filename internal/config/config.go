// Package config handles configuration loading and management for voxide.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for voxide.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Planner   PlannerConfig   `mapstructure:"planner"`
}

// WorkspaceConfig holds persistence settings.
type WorkspaceConfig struct {
	// Dir is the state directory, relative paths resolve against cwd.
	Dir string `mapstructure:"dir"`
	// HistoryLimit bounds how many history events survive a save.
	HistoryLimit int `mapstructure:"history_limit"`
	// DebugLog enables the per-session debug log under <dir>/logs.
	DebugLog bool `mapstructure:"debug_log"`
}

// BackendConfig selects and tunes the execution backend.
type BackendConfig struct {
	// Kind is "sim" or "anthropic".
	Kind string `mapstructure:"kind"`
	// SimDelay is the simulated processing time per task.
	SimDelay time.Duration `mapstructure:"sim_delay"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// SpeechConfig holds voice capture settings.
type SpeechConfig struct {
	// Enabled turns on the voice capture prompt in the console.
	Enabled bool `mapstructure:"enabled"`
	// Timeout bounds how long a single utterance capture may take.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlannerConfig holds task planning settings.
type PlannerConfig struct {
	// RulesFile points at a YAML rule table overriding the built-in rules.
	RulesFile string `mapstructure:"rules_file"`
	// WatchRules reloads the rule table when the file changes.
	WatchRules bool `mapstructure:"watch_rules"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (VOXIDE_*, ANTHROPIC_API_KEY)
// 2. Project config (.voxide.yaml in current directory or parent)
// 3. User config (~/.config/voxide/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence over the user config.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("VOXIDE")
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("backend.kind", "VOXIDE_BACKEND")
	v.BindEnv("workspace.dir", "VOXIDE_WORKSPACE")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.dir", ".voxide")
	v.SetDefault("workspace.history_limit", 100)
	v.SetDefault("workspace.debug_log", true)

	v.SetDefault("backend.kind", "sim")
	v.SetDefault("backend.sim_delay", "500ms")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.timeout", "5s")

	v.SetDefault("planner.rules_file", "")
	v.SetDefault("planner.watch_rules", true)
}

// getUserConfigDir returns the XDG config directory for voxide.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "voxide")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "voxide")
	}
	return filepath.Join(home, ".config", "voxide")
}

// findProjectConfig searches for .voxide.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".voxide.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Dir:          ".voxide",
			HistoryLimit: 100,
			DebugLog:     true,
		},
		Backend: BackendConfig{
			Kind:     "sim",
			SimDelay: 500 * time.Millisecond,
		},
		Speech: SpeechConfig{
			Enabled: false,
			Timeout: 5 * time.Second,
		},
		Planner: PlannerConfig{
			WatchRules: true,
		},
	}
}
