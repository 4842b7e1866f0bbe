package main

import (
	"fmt"

	"github.com/voxidehq/voxide/internal/backend"
	"github.com/voxidehq/voxide/internal/config"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/internal/store"
)

// loadConfig loads the effective configuration with flag overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagBackend != "" {
		cfg.Backend.Kind = flagBackend
	}
	if flagWorkspace != "" {
		cfg.Workspace.Dir = flagWorkspace
	}
	return cfg, nil
}

// newBackend builds the execution backend selected by the configuration.
func newBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.Backend.Kind {
	case "", "sim":
		return backend.NewSim(backend.WithDelay(cfg.Backend.SimDelay)), nil
	case "anthropic":
		apiKey := ""
		if !cfg.Anthropic.UseAWSBedrock {
			key, err := config.GetAPIKey(cfg)
			if err != nil {
				return nil, fmt.Errorf("anthropic backend: %w", err)
			}
			if err := config.ValidateAPIKey(key); err != nil {
				return nil, fmt.Errorf("anthropic backend: %v (key is %s)", err, config.MaskAPIKey(key))
			}
			apiKey = key
		}
		return backend.NewAnthropic(backend.AnthropicConfig{
			Model:         cfg.Anthropic.Model,
			APIKey:        apiKey,
			UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (want sim or anthropic)", cfg.Backend.Kind)
	}
}

// newPlanner builds the planner, loading a custom rule table when one is
// configured.
func newPlanner(cfg *config.Config) (*planner.Planner, error) {
	if cfg.Planner.RulesFile == "" {
		return planner.New(nil), nil
	}
	rules, err := planner.LoadRules(cfg.Planner.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules from %s: %w", cfg.Planner.RulesFile, err)
	}
	return planner.New(rules), nil
}

// newStore builds the JSON store for the configured workspace.
func newStore(cfg *config.Config) *store.Store {
	return store.New(cfg.Workspace.Dir, store.WithHistoryLimit(cfg.Workspace.HistoryLimit))
}
