package credentials

import (
	"errors"
	"fmt"
)

// storedConfig mirrors Config with pointer fields so a missing or null
// member is told apart from an empty one when reading persisted data.
type storedConfig struct {
	Providers map[string]*storedProvider `json:"providers" yaml:"providers" toml:"providers"`
}

type storedProvider struct {
	APIKey       *string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	DefaultModel *string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	Models       *[]string `json:"models" yaml:"models" toml:"models"`
}

func (s storedConfig) config() (*Config, error) {
	if s.Providers == nil {
		return nil, errors.New("missing providers")
	}
	cfg := NewConfig()
	for name, sp := range s.Providers {
		p, err := sp.provider()
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		cfg.Providers[name] = p
	}
	return cfg, nil
}

func (sp *storedProvider) provider() (Provider, error) {
	switch {
	case sp == nil:
		return Provider{}, errors.New("entry is null")
	case sp.APIKey == nil:
		return Provider{}, errors.New("missing api_key")
	case sp.DefaultModel == nil:
		return Provider{}, errors.New("missing default_model")
	case sp.Models == nil:
		return Provider{}, errors.New("missing models")
	}
	return Provider{
		APIKey:       *sp.APIKey,
		DefaultModel: *sp.DefaultModel,
		Models:       *sp.Models,
	}, nil
}

// withModelLists returns cfg with nil model lists written as empty lists, so
// what Save writes Load accepts.
func withModelLists(cfg *Config) *Config {
	out := cfg.clone()
	for name, p := range out.Providers {
		if p.Models == nil {
			p.Models = []string{}
			out.Providers[name] = p
		}
	}
	return out
}
