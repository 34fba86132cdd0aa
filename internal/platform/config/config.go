package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"callback/internal/pkg/errors"
)

type Config struct {
	Callback CallbackConfig `mapstructure:"callback"`
	Secret   SecretConfig   `mapstructure:"secret"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type CallbackConfig struct {
	Scheme          string        `mapstructure:"scheme"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Path            string        `mapstructure:"path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SignatureHeader string        `mapstructure:"signature_header"`
	SignaturePrefix string        `mapstructure:"signature_prefix"`
}

// URL renders the endpoint as scheme://host:port/path.
func (c CallbackConfig) URL() string {
	return fmt.Sprintf("%s://%s%s", c.Scheme, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Path)
}

type SecretConfig struct {
	File string `mapstructure:"file"`
	Key  string `mapstructure:"key"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// FlagKeys maps command-line flag names to the config keys they override.
var FlagKeys = map[string]string{
	"host":        "callback.host",
	"port":        "callback.port",
	"path":        "callback.path",
	"timeout":     "callback.timeout",
	"secret-file": "secret.file",
	"log-level":   "logging.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("callback.scheme", "http")
	v.SetDefault("callback.host", "localhost")
	v.SetDefault("callback.port", 47731)
	v.SetDefault("callback.path", "/backup")
	v.SetDefault("callback.timeout", 10*time.Minute)
	v.SetDefault("callback.signature_header", "X-Signature")
	v.SetDefault("callback.signature_prefix", "")

	v.SetDefault("secret.file", "backup.conf")
	v.SetDefault("secret.key", "callback_secret")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.file_path", "")
}

// EnvName returns the environment variable that overrides key. Every
// variable lives under CALLBACK_: callback.host is CALLBACK_HOST and
// secret.file is CALLBACK_SECRET_FILE.
func EnvName(key string) string {
	name := strings.TrimPrefix(key, "callback.")
	return "CALLBACK_" + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
}

// Load builds the configuration from defaults, the optional file at path,
// the CALLBACK_ environment (see EnvName) and any changed flags in flags, in
// increasing order of precedence. Either path or flags may be empty.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, &errors.ConfigurationError{Err: fmt.Errorf("bind env %q: %w", key, err)}
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, &errors.ConfigurationError{Err: fmt.Errorf("bind flag %q: %w", name, err)}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigurationError{Path: path, Err: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &errors.ConfigurationError{Path: path, Err: err}
	}

	if err := config.Validate(); err != nil {
		return nil, &errors.ConfigurationError{Path: path, Err: err}
	}

	return &config, nil
}

func (c *Config) Validate() error {
	cb := c.Callback
	switch cb.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("callback.scheme must be http or https, got %q", cb.Scheme)
	}
	if strings.TrimSpace(cb.Host) == "" {
		return fmt.Errorf("callback.host is required")
	}
	if cb.Port < 1 || cb.Port > 65535 {
		return fmt.Errorf("callback.port %d out of range", cb.Port)
	}
	if !strings.HasPrefix(cb.Path, "/") {
		return fmt.Errorf("callback.path must start with /, got %q", cb.Path)
	}
	if cb.Timeout < 0 {
		return fmt.Errorf("callback.timeout must not be negative")
	}
	if strings.TrimSpace(cb.SignatureHeader) == "" {
		return fmt.Errorf("callback.signature_header is required")
	}
	if strings.TrimSpace(c.Secret.File) == "" {
		return fmt.Errorf("secret.file is required")
	}
	return nil
}
