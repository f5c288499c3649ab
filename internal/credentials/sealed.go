package credentials

import (
	"context"
	"fmt"
)

// Sealer protects API keys at rest. *crypto.Manager implements it.
type Sealer interface {
	// Reseal seals raw under the current key. raw may be plain text or a
	// value sealed under any known key.
	Reseal(raw string) (string, error)
	Open(raw string) (string, error)
}

type sealedStore struct {
	inner  Store
	sealer Sealer
}

// Sealed wraps inner so API keys are sealed on Save and opened on Load.
// A nil sealer returns inner unchanged.
func Sealed(inner Store, sealer Sealer) Store {
	if sealer == nil {
		return inner
	}
	return &sealedStore{inner: inner, sealer: sealer}
}

func (s *sealedStore) Load(ctx context.Context) (*Config, error) {
	cfg, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := cfg.clone()
	for name, p := range out.Providers {
		key, err := s.sealer.Open(p.APIKey)
		if err != nil {
			return nil, &ConfigError{Op: "open", Err: fmt.Errorf("provider %q api key: %w", name, err)}
		}
		p.APIKey = key
		out.Providers[name] = p
	}
	return out, nil
}

func (s *sealedStore) Save(ctx context.Context, cfg *Config) error {
	out := cfg.clone()
	for name, p := range out.Providers {
		if p.APIKey == "" {
			continue
		}
		key, err := s.sealer.Reseal(p.APIKey)
		if err != nil {
			return &ConfigError{Op: "seal", Err: fmt.Errorf("provider %q api key: %w", name, err)}
		}
		p.APIKey = key
		out.Providers[name] = p
	}
	return s.inner.Save(ctx, out)
}
