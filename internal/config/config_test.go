package config

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func key(b byte) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat(string([]byte{b}), 32)))
}

func TestLoadDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, LogFormatConsole, cfg.Log.Format)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, ".config", "ai-chat", "config.json"), cfg.Store.Path)
	assert.Equal(t, "aichat", cfg.Store.Redis.KeyPrefix)
	assert.Equal(t, time.Duration(0), cfg.HTTP.Timeout)
	assert.False(t, cfg.Crypto.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("AICHAT_LOG_LEVEL", "DEBUG")
	t.Setenv("AICHAT_STORE_BACKEND", "redis")
	t.Setenv("AICHAT_STORE_REDIS_ADDR", "redis:6379")
	t.Setenv("AICHAT_STORE_REDIS_DB", "3")
	t.Setenv("AICHAT_HTTP_TIMEOUT", "45s")
	t.Setenv("AICHAT_ENDPOINTS_OPENAI", "http://localhost:8080")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "http://localhost:8080", cfg.Endpoints.OpenAI)
}

func TestLoadSettingsFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: sqlite\nlog:\n  format: json\n"), 0o600))

	v := NewViper()
	v.Set("settings", path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
	assert.True(t, strings.HasSuffix(cfg.Store.DSN, filepath.Join("ai-chat", "credentials.db")))
}

func TestLoadMissingExplicitSettings(t *testing.T) {
	isolateHome(t)
	v := NewViper()
	v.Set("settings", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load(v)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Log:   LogConfig{Level: "warn", Format: LogFormatConsole},
			Store: StoreConfig{Backend: BackendFile},
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Store.Backend = "mysql"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)

	cfg = base()
	cfg.Store.Backend = BackendPostgres
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDSN)

	cfg = base()
	cfg.Log.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLogFormat)

	cfg = base()
	cfg.HTTP.Timeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrNegativeTimeout)
}

func TestLoadCryptoConfig(t *testing.T) {
	cc, err := loadCryptoConfig(nil)
	require.NoError(t, err)
	assert.False(t, cc.Enabled())

	cc, err = loadCryptoConfig([]string{"AICHAT_MASTER_KEY_B64=" + key(1)})
	require.NoError(t, err)
	assert.Equal(t, "default", cc.CurrentKeyID)
	assert.Len(t, cc.Keys["default"], 32)

	cc, err = loadCryptoConfig([]string{
		"AICHAT_MASTER_KEY_V1_B64=" + key(1),
		"AICHAT_MASTER_KEYS_JSON={\"v2\":\"" + key(2) + "\"}",
		"AICHAT_MASTER_KEY_CURRENT_ID=v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", cc.CurrentKeyID)
	assert.Len(t, cc.Keys, 2)

	_, err = loadCryptoConfig([]string{
		"AICHAT_MASTER_KEY_V1_B64=" + key(1),
		"AICHAT_MASTER_KEY_V2_B64=" + key(2),
	})
	assert.Error(t, err)

	_, err = loadCryptoConfig([]string{"AICHAT_MASTER_KEY_B64=" + base64.StdEncoding.EncodeToString([]byte("short"))})
	assert.Error(t, err)

	_, err = loadCryptoConfig([]string{"AICHAT_MASTER_KEY_CURRENT_ID=v9", "AICHAT_MASTER_KEY_V1_B64=" + key(1)})
	assert.Error(t, err)
}
