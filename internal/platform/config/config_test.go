package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"callback/internal/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Callback.URL(); got != "http://localhost:47731/backup" {
		t.Errorf("URL() = %s", got)
	}
	if cfg.Callback.Timeout != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %v", cfg.Callback.Timeout)
	}
	if cfg.Callback.SignatureHeader != "X-Signature" {
		t.Errorf("unexpected signature header %s", cfg.Callback.SignatureHeader)
	}
	if cfg.Secret.File != "backup.conf" || cfg.Secret.Key != "callback_secret" {
		t.Errorf("unexpected secret config %+v", cfg.Secret)
	}
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callback.yaml")
	content := `
callback:
  host: backup.internal
  port: 8080
  path: /hooks/backup
  timeout: 30s
  signature_prefix: "sha256="
secret:
  file: /etc/backup/backup.conf
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CALLBACK_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("path", "", "")
	flags.Duration("timeout", 0, "")
	if err := flags.Parse([]string{"--timeout", "1m"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Callback.URL(); got != "http://backup.internal:9090/hooks/backup" {
		t.Errorf("URL() = %s", got)
	}
	if cfg.Callback.Timeout != time.Minute {
		t.Errorf("expected flag timeout 1m, got %v", cfg.Callback.Timeout)
	}
	if cfg.Callback.SignaturePrefix != "sha256=" {
		t.Errorf("unexpected prefix %q", cfg.Callback.SignaturePrefix)
	}
	if cfg.Secret.File != "/etc/backup/backup.conf" {
		t.Errorf("unexpected secret file %s", cfg.Secret.File)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level %s", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Callback: CallbackConfig{Scheme: "http", Host: "localhost", Port: 47731, Path: "/backup", SignatureHeader: "X-Signature"},
			Secret:   SecretConfig{File: "backup.conf"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "HTTPS", mutate: func(c *Config) { c.Callback.Scheme = "https" }},
		{name: "Bad Scheme", mutate: func(c *Config) { c.Callback.Scheme = "ftp" }, wantErr: true},
		{name: "Empty Host", mutate: func(c *Config) { c.Callback.Host = " " }, wantErr: true},
		{name: "Port Zero", mutate: func(c *Config) { c.Callback.Port = 0 }, wantErr: true},
		{name: "Port Too Large", mutate: func(c *Config) { c.Callback.Port = 70000 }, wantErr: true},
		{name: "Relative Path", mutate: func(c *Config) { c.Callback.Path = "backup" }, wantErr: true},
		{name: "Negative Timeout", mutate: func(c *Config) { c.Callback.Timeout = -time.Second }, wantErr: true},
		{name: "No Signature Header", mutate: func(c *Config) { c.Callback.SignatureHeader = "" }, wantErr: true},
		{name: "No Secret File", mutate: func(c *Config) { c.Secret.File = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCallbackConfig_URL_IPv6(t *testing.T) {
	c := CallbackConfig{Scheme: "http", Host: "::1", Port: 47731, Path: "/backup"}
	if got := c.URL(); got != "http://[::1]:47731/backup" {
		t.Errorf("URL() = %s", got)
	}
}

func TestLoad_IgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "django-insecure-xyz")
	t.Setenv("SECRET_FILE", "/tmp/other.conf")
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("CALLBACK_SECRET_FILE", "/etc/backup/backup.conf")
	t.Setenv("CALLBACK_LOGGING_LEVEL", "error")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Secret.Key != "callback_secret" {
		t.Errorf("secret.key = %q, want callback_secret", cfg.Secret.Key)
	}
	if cfg.Secret.File != "/etc/backup/backup.conf" {
		t.Errorf("secret.file = %q", cfg.Secret.File)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"callback.host":             "CALLBACK_HOST",
		"callback.signature_prefix": "CALLBACK_SIGNATURE_PREFIX",
		"secret.key":                "CALLBACK_SECRET_KEY",
		"logging.file_path":         "CALLBACK_LOGGING_FILE_PATH",
	}
	for key, want := range tests {
		if got := EnvName(key); got != want {
			t.Errorf("EnvName(%q) = %s, want %s", key, got, want)
		}
	}
}
