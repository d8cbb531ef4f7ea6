package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(values map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(nil, envMap(map[string]string{
		"DATABASE_URI":   "postgres://localhost/subbot",
		"TELEGRAM_TOKEN": "token",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RunAddress != ":8080" {
		t.Errorf("RunAddress = %q", cfg.RunAddress)
	}
	if cfg.TelegramAPIBase != "https://api.telegram.org" {
		t.Errorf("TelegramAPIBase = %q", cfg.TelegramAPIBase)
	}
	if cfg.SweepInterval != 24*time.Hour {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.ContentCacheTTL != 5*time.Minute {
		t.Errorf("ContentCacheTTL = %v", cfg.ContentCacheTTL)
	}
	if cfg.EventTimeout != 30*time.Second {
		t.Errorf("EventTimeout = %v", cfg.EventTimeout)
	}
	if cfg.SendRate != 25 || cfg.SendBurst != 5 {
		t.Errorf("send limits = %v/%d", cfg.SendRate, cfg.SendBurst)
	}
}

func TestLoadRequiresDatabaseURI(t *testing.T) {
	if _, err := load(nil, envMap(map[string]string{"TELEGRAM_TOKEN": "token"})); err == nil {
		t.Fatal("expected error without database uri")
	}
}

func TestLoadRequiresTelegramToken(t *testing.T) {
	if _, err := load(nil, envMap(map[string]string{"DATABASE_URI": "postgres://x"})); err == nil {
		t.Fatal("expected error without telegram token")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := load(
		[]string{"-a", ":9090", "-sweep-interval", "1h", "-send-rate", "10"},
		envMap(map[string]string{
			"DATABASE_URI":   "postgres://localhost/subbot",
			"TELEGRAM_TOKEN": "token",
			"RUN_ADDRESS":    ":8081",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RunAddress != ":9090" {
		t.Errorf("RunAddress = %q", cfg.RunAddress)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.SendRate != 10 {
		t.Errorf("SendRate = %v", cfg.SendRate)
	}
}

func TestTokenFileOverridesToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte("file-token"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	cfg, err := load(nil, envMap(map[string]string{
		"DATABASE_URI":        "postgres://localhost/subbot",
		"TELEGRAM_TOKEN":      "env-token",
		"TELEGRAM_TOKEN_FILE": path,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TelegramToken != "file-token" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
}

func TestInvalidDurationFails(t *testing.T) {
	if _, err := load([]string{"-sweep-interval", "nonsense"}, envMap(map[string]string{
		"DATABASE_URI":   "postgres://x",
		"TELEGRAM_TOKEN": "token",
	})); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
