package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	cfg, err := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.EnvGenerativeApiKey != "secret" {
		t.Errorf("Expected API key from environment, got %q", cfg.EnvGenerativeApiKey)
	}
	if cfg.EnvGenerativeName != "gemini" || cfg.EnvHTTPAddress != ":8080" || cfg.EnvImagePolicy != "first" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !cfg.EnvEnableTools || cfg.EnvTriggerCaseSensitive {
		t.Error("Expected tools enabled and case-insensitive triggers by default")
	}
	if cfg.EnvRequestTimeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.EnvRequestTimeout)
	}
	if cfg.EnvLogFormat != "text" || cfg.EnvLogMaxSizeMB != 50 || cfg.EnvLogMaxBackups != 3 || cfg.EnvLogMaxAgeDays != 30 {
		t.Errorf("Unexpected log defaults: %+v", cfg)
	}
}

func TestNewConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gramgpt.env")
	content := "GENERATIVE_NAME=deepseek\nTRIGGER_WORDS=আঁকো,sketch\nREQUEST_TIMEOUT=5s\nTEMPERATURE=0.2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv не перезаписывает уже заданные переменные
	for _, key := range []string{"GENERATIVE_NAME", "TRIGGER_WORDS", "REQUEST_TIMEOUT", "TEMPERATURE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.EnvGenerativeName != "deepseek" {
		t.Errorf("Expected provider from env file, got %q", cfg.EnvGenerativeName)
	}
	if len(cfg.EnvTriggerWords) != 2 || cfg.EnvTriggerWords[1] != "sketch" {
		t.Errorf("Unexpected trigger words %v", cfg.EnvTriggerWords)
	}
	if cfg.EnvRequestTimeout != 5*time.Second || cfg.EnvTemperature != 0.2 {
		t.Errorf("Unexpected timeout %v or temperature %v", cfg.EnvRequestTimeout, cfg.EnvTemperature)
	}
}

func TestNewConfig_InvalidValue(t *testing.T) {
	t.Setenv("MAX_TOKENS", "many")

	if _, err := NewConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for non-numeric MAX_TOKENS")
	}
}

func TestBindFlags(t *testing.T) {
	cfg := &Config{EnvLogsLevel: "info", EnvHTTPAddress: ":8080"}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)

	if err := fs.Parse([]string{"-l", "debug", "-a", ":9090"}); err != nil {
		t.Fatal(err)
	}
	if cfg.EnvLogsLevel != "debug" || cfg.EnvHTTPAddress != ":9090" {
		t.Errorf("Flags were not applied: %+v", cfg)
	}
}
