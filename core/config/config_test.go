package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "123:abc", RunMode: " Polling "},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback", "", "MESSAGE"}},
		Metrics:   MetricsConfig{Listen: ":9090"},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if got := cfg.RateLimit.ExcludeUpdates; len(got) != 2 || got[0] != UpdateCallback || got[1] != UpdateMessage {
		t.Fatalf("exclude updates = %v", got)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("metrics path = %q, want /metrics", cfg.Metrics.Path)
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing token", cfg: Config{}},
		{name: "unknown run mode", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}}},
		{name: "webhook without url", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}}},
		{name: "webhook without port", cfg: Config{
			Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook},
			Webhook:  WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0"},
		}},
		{name: "negative timeout", cfg: Config{Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}}},
		{name: "bad exclude", cfg: Config{
			Telegram:  TelegramConfig{Token: "t"},
			RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline_query"}},
		}},
		{name: "negative admin", cfg: Config{Telegram: TelegramConfig{Token: "t", AdminID: -5}}},
		{name: "relative metrics path", cfg: Config{
			Telegram: TelegramConfig{Token: "t"},
			Metrics:  MetricsConfig{Listen: ":9090", Path: "metrics"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := Normalize(&cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlData := []byte("telegram:\n  token: from-file\n  admin_id: 10\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, yamlData, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TELEGRAM_ADMIN_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-file" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Fatalf("admin id = %d, want env override 42", cfg.Telegram.AdminID)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}
