package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "x", RunMode: "Polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.Storage.Driver != StorageFile || cfg.Storage.Path != defaultQuestionsFile {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Support.ListLimit != 10 || cfg.Support.PreviewRunes != 50 {
		t.Fatalf("unexpected support defaults: %+v", cfg.Support)
	}
	if cfg.Support.VenueName == "" || cfg.Support.WebsiteURL == "" {
		t.Fatalf("expected venue defaults, got %+v", cfg.Support)
	}
}

func TestNormalizeWebhookValidation(t *testing.T) {
	cases := []struct {
		name    string
		webhook WebhookConfig
		wantErr string
	}{
		{name: "missing url", webhook: WebhookConfig{Port: 8000}, wantErr: "webhook.url"},
		{name: "missing port", webhook: WebhookConfig{URL: "https://example.org/hook"}, wantErr: "webhook.port"},
		{name: "ok", webhook: WebhookConfig{URL: "https://example.org/hook", Port: 8000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Telegram: TelegramConfig{Token: "x", RunMode: "webhook"},
				Webhook:  tc.webhook,
			}
			err := Normalize(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.Webhook.Listen != "0.0.0.0" {
					t.Fatalf("listen default = %q", cfg.Webhook.Listen)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeStorageDrivers(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "x"},
		Storage:  StorageConfig{Driver: "pg"},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for postgres without host")
	}

	cfg.Database = DatabaseConfig{Host: "db", Name: "hall"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" || cfg.Database.MigrationsDir != "migrations" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}

	cfg.Storage.Driver = "redis"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "telegram:\n  token: from-file\n  admin_id: 1\nstorage:\n  path: /tmp/q.json\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ADMIN_ID", "2107059658")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-file" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 2107059658 {
		t.Fatalf("admin id = %d, want env override", cfg.Telegram.AdminID)
	}
	if cfg.Storage.Path != "/tmp/q.json" {
		t.Fatalf("storage path = %q", cfg.Storage.Path)
	}
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}
