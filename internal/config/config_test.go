package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workspace.Dir != ".voxide" {
		t.Errorf("expected default workspace dir '.voxide', got %q", cfg.Workspace.Dir)
	}

	if cfg.Workspace.HistoryLimit != 100 {
		t.Errorf("expected default history limit 100, got %d", cfg.Workspace.HistoryLimit)
	}

	if cfg.Backend.Kind != "sim" {
		t.Errorf("expected default backend 'sim', got %q", cfg.Backend.Kind)
	}

	if cfg.Backend.SimDelay != 500*time.Millisecond {
		t.Errorf("expected sim delay 500ms, got %v", cfg.Backend.SimDelay)
	}

	if cfg.Speech.Enabled {
		t.Error("expected speech disabled by default")
	}

	if cfg.Speech.Timeout != 5*time.Second {
		t.Errorf("expected speech timeout 5s, got %v", cfg.Speech.Timeout)
	}

	if !cfg.Planner.WatchRules {
		t.Error("expected planner.watch_rules to be true")
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
workspace:
  dir: /tmp/voxide-state
  history_limit: 25
  debug_log: false
backend:
  kind: anthropic
  sim_delay: 10ms
anthropic:
  api_key: test-key
  model: test-model
  use_aws_bedrock: true
  aws_region: us-west-2
speech:
  enabled: true
  timeout: 3s
planner:
  rules_file: rules.yaml
  watch_rules: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Workspace.Dir != "/tmp/voxide-state" {
		t.Errorf("workspace.dir = %q", cfg.Workspace.Dir)
	}
	if cfg.Workspace.HistoryLimit != 25 {
		t.Errorf("workspace.history_limit = %d", cfg.Workspace.HistoryLimit)
	}
	if cfg.Workspace.DebugLog {
		t.Error("expected debug_log false")
	}
	if cfg.Backend.Kind != "anthropic" {
		t.Errorf("backend.kind = %q", cfg.Backend.Kind)
	}
	if cfg.Backend.SimDelay != 10*time.Millisecond {
		t.Errorf("backend.sim_delay = %v", cfg.Backend.SimDelay)
	}
	if cfg.Anthropic.APIKey != "test-key" || cfg.Anthropic.Model != "test-model" {
		t.Errorf("anthropic settings = %+v", cfg.Anthropic)
	}
	if !cfg.Anthropic.UseAWSBedrock || cfg.Anthropic.AWSRegion != "us-west-2" {
		t.Errorf("bedrock settings = %+v", cfg.Anthropic)
	}
	if !cfg.Speech.Enabled || cfg.Speech.Timeout != 3*time.Second {
		t.Errorf("speech settings = %+v", cfg.Speech)
	}
	if cfg.Planner.RulesFile != "rules.yaml" || cfg.Planner.WatchRules {
		t.Errorf("planner settings = %+v", cfg.Planner)
	}
}

func TestLoadFromPathPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("backend:\n  kind: anthropic\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Backend.Kind != "anthropic" {
		t.Errorf("backend.kind = %q", cfg.Backend.Kind)
	}
	if cfg.Workspace.Dir != ".voxide" || cfg.Workspace.HistoryLimit != 100 {
		t.Errorf("defaults not preserved: %+v", cfg.Workspace)
	}
}

func TestLoadFromPathExpandsAPIKeyEnv(t *testing.T) {
	t.Setenv("VOXIDE_TEST_KEY", "sk-ant-from-env")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: ${VOXIDE_TEST_KEY}\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env" {
		t.Errorf("api_key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
