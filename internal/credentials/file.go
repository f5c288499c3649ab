package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	AppDirName      = "ai-chat"
	DefaultFileName = "config.json"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// DefaultDir is <user config dir>/ai-chat, or ./ai-chat when the user config
// dir cannot be determined.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, AppDirName)
}

func DefaultPath() string {
	return filepath.Join(DefaultDir(), DefaultFileName)
}

type FileStore struct {
	path   string
	format Format
}

func NewFileStore(path string) *FileStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path, format: FormatFromPath(path)}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (*Config, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewConfig(), nil
		}
		return nil, &ConfigError{Op: "read", Err: err}
	}

	var stored storedConfig
	if err := decode(s.format, raw, &stored); err != nil {
		return nil, &ConfigError{Op: "decode", Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	cfg, err := stored.config()
	if err != nil {
		return nil, &ConfigError{Op: "decode", Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return cfg, nil
}

func (s *FileStore) Save(_ context.Context, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	raw, err := encode(s.format, withModelLists(cfg))
	if err != nil {
		return &ConfigError{Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("create config dir: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return &ConfigError{Op: "write", Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return &ConfigError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	return nil
}

func decode(format Format, raw []byte, cfg any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(raw, cfg)
	case FormatTOML:
		_, err := toml.Decode(string(raw), cfg)
		return err
	default:
		return json.Unmarshal(raw, cfg)
	}
}

func encode(format Format, cfg *Config) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}
