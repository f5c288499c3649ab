// Package credentials holds the persisted mapping from provider identifier to
// API key and model choices, and the backends that load and save it.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrNoProvidersConfigured = errors.New("no providers configured, run 'ai-chat config' first")

type ProviderNotConfiguredError struct {
	Name string
}

func (e *ProviderNotConfiguredError) Error() string {
	return fmt.Sprintf("provider %q not configured", e.Name)
}

// ConfigError reports persisted credential data that could not be read or
// written.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type Provider struct {
	APIKey       string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	DefaultModel string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	Models       []string `json:"models" yaml:"models" toml:"models"`
}

type Config struct {
	Providers map[string]Provider `json:"providers" yaml:"providers" toml:"providers"`
}

// Store is the persistence boundary. Load on an empty backend yields an empty
// Config; Save persists the full mapping.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

func NewConfig() *Config {
	return &Config{Providers: map[string]Provider{}}
}

// Names returns the configured provider identifiers in sorted order.
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Lookup(name string) (Provider, error) {
	if c != nil {
		if p, ok := c.Providers[name]; ok {
			return p, nil
		}
	}
	return Provider{}, &ProviderNotConfiguredError{Name: name}
}

func (c *Config) Set(name string, p Provider) {
	if c.Providers == nil {
		c.Providers = map[string]Provider{}
	}
	c.Providers[name] = p
}

func (c *Config) Empty() bool {
	return c == nil || len(c.Providers) == 0
}

// DefaultModelIndex is the position of the default model in Models, or 0.
func (p Provider) DefaultModelIndex() int {
	if i := slices.Index(p.Models, p.DefaultModel); i >= 0 {
		return i
	}
	return 0
}

func (c *Config) clone() *Config {
	out := NewConfig()
	if c == nil {
		return out
	}
	for name, p := range c.Providers {
		p.Models = slices.Clone(p.Models)
		out.Providers[name] = p
	}
	return out
}
