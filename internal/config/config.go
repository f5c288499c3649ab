package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"aichat/internal/credentials"
)

const (
	EnvPrefix = "AICHAT"

	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	settingsName = "settings"
)

var (
	ErrUnknownBackend   = errors.New("store.backend must be one of file, sqlite, postgres, redis")
	ErrMissingDSN       = errors.New("store.dsn is required for the postgres backend")
	ErrInvalidLogFormat = errors.New("log.format must be 'console' or 'json'")
	ErrNegativeTimeout  = errors.New("http.timeout must not be negative")
)

// ConfigError reports a settings file that exists but cannot be used.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`

	Crypto CryptoConfig `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	DSN     string      `mapstructure:"dsn"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type EndpointsConfig struct {
	OpenAI    string `mapstructure:"openai"`
	Anthropic string `mapstructure:"anthropic"`
}

type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// CryptoConfig is empty when no master key is configured; API keys are then
// stored as entered.
type CryptoConfig struct {
	CurrentKeyID string
	Keys         map[string][]byte
}

func (c CryptoConfig) Enabled() bool {
	return len(c.Keys) > 0
}

// NewViper returns a viper instance with defaults and AICHAT_ env overrides.
// Callers bind command-line flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", LogFormatConsole)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", credentials.DefaultPath())
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redis.addr", "127.0.0.1:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", credentials.DefaultRedisPrefix)

	v.SetDefault("http.timeout", time.Duration(0))

	v.SetDefault("endpoints.openai", "")
	v.SetDefault("endpoints.anthropic", "")

	v.SetDefault("metrics.file", "")
}

// Load reads the optional settings file, applies env and flag overrides and
// validates the result. An explicitly named settings file must exist.
func Load(v *viper.Viper) (*Config, error) {
	if path := strings.TrimSpace(v.GetString("settings")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Op: "read", Err: fmt.Errorf("read %s: %w", path, err)}
		}
	} else {
		v.SetConfigName(settingsName)
		v.AddConfigPath(credentials.DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, &ConfigError{Op: "read", Err: err}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Op: "unmarshal", Err: err}
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	if cfg.Store.Backend == BackendSQLite && strings.TrimSpace(cfg.Store.DSN) == "" {
		cfg.Store.DSN = filepath.Join(credentials.DefaultDir(), "credentials.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc, err := loadCryptoConfig(os.Environ())
	if err != nil {
		return nil, err
	}
	cfg.Crypto = cc

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	case BackendPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return ErrMissingDSN
		}
	default:
		return ErrUnknownBackend
	}
	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		return ErrInvalidLogFormat
	}
	if c.HTTP.Timeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

func loadCryptoConfig(environ []string) (CryptoConfig, error) {
	env := make(map[string]string, len(environ))
	for _, e := range environ {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		env[k] = strings.TrimSpace(v)
	}

	const prefix = EnvPrefix + "_MASTER_KEY_"
	keysB64 := map[string]string{}

	if raw := env[EnvPrefix+"_MASTER_KEYS_JSON"]; raw != "" {
		var parsed map[string]string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return CryptoConfig{}, fmt.Errorf("parse %s_MASTER_KEYS_JSON: %w", EnvPrefix, err)
		}
		for id, val := range parsed {
			if strings.TrimSpace(id) == "" || strings.TrimSpace(val) == "" {
				continue
			}
			keysB64[id] = val
		}
	}

	for k, v := range env {
		if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "_B64") {
			continue
		}
		if k == prefix+"B64" {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(k, prefix), "_B64")
		if id == "" || v == "" {
			continue
		}
		keysB64[id] = v
	}

	current := env[prefix+"CURRENT_ID"]
	if singleton := env[prefix+"B64"]; singleton != "" {
		if current == "" {
			current = "default"
		}
		keysB64[current] = singleton
	}

	if len(keysB64) == 0 {
		if current != "" {
			return CryptoConfig{}, fmt.Errorf("%sCURRENT_ID=%q set but no master keys provided", prefix, current)
		}
		return CryptoConfig{}, nil
	}

	keys := make(map[string][]byte, len(keysB64))
	for id, b64 := range keysB64 {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return CryptoConfig{}, fmt.Errorf("decode master key %q: %w", id, err)
		}
		if len(raw) != 32 {
			return CryptoConfig{}, fmt.Errorf("master key %q must be 32 bytes after base64 decode", id)
		}
		keys[id] = raw
	}

	if current == "" {
		if len(keys) > 1 {
			return CryptoConfig{}, fmt.Errorf("%sCURRENT_ID is required when several master keys are set", prefix)
		}
		for id := range keys {
			current = id
		}
	}
	if _, ok := keys[current]; !ok {
		return CryptoConfig{}, fmt.Errorf("%sCURRENT_ID=%q does not exist in provided keys", prefix, current)
	}

	return CryptoConfig{
		CurrentKeyID: current,
		Keys:         keys,
	}, nil
}
