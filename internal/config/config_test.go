package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.OpenRouter.Model != DefaultModel {
		t.Errorf("Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.OpenRouter.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.CloseDelay() != DefaultCloseDelay {
		t.Errorf("CloseDelay = %v", cfg.CloseDelay())
	}
	if cfg.HistoryWindow() != DefaultHistoryTurns {
		t.Errorf("HistoryWindow = %d", cfg.HistoryWindow())
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_RCLI_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "robotcli.yaml")
	content := `
scope:
  root: /home/tester/files
openrouter:
  api_key: ${TEST_RCLI_KEY}
  model: some/other-model
session:
  close_delay_sec: 7
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenRouter.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.OpenRouter.APIKey)
	}
	if cfg.OpenRouter.Model != "some/other-model" {
		t.Errorf("Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Scope.Root != "/home/tester/files" {
		t.Errorf("Scope.Root = %q", cfg.Scope.Root)
	}
	if cfg.CloseDelay() != 7*time.Second {
		t.Errorf("CloseDelay = %v", cfg.CloseDelay())
	}
	// Unset fields keep their defaults.
	if cfg.OpenRouter.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.OpenRouter.BaseURL)
	}
}

func TestLoadAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-ambient")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenRouter.APIKey != "sk-ambient" {
		t.Errorf("APIKey = %q, want value from OPENROUTER_API_KEY", cfg.OpenRouter.APIKey)
	}
}

func TestConfigFileWinsOverEnvironment(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-ambient")

	path := filepath.Join(t.TempDir(), "robotcli.yaml")
	if err := os.WriteFile(path, []byte("openrouter:\n  api_key: sk-explicit\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenRouter.APIKey != "sk-explicit" {
		t.Errorf("APIKey = %q, want config file value", cfg.OpenRouter.APIKey)
	}
}

func TestFindConfigExplicitMustExist(t *testing.T) {
	if _, err := FindConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit missing config should error")
	}
}

func TestCloseDelayIgnoresNonPositive(t *testing.T) {
	cfg := Default()
	cfg.Session.CloseDelaySec = -1
	if cfg.CloseDelay() != DefaultCloseDelay {
		t.Errorf("CloseDelay = %v, want default for non-positive value", cfg.CloseDelay())
	}
}
