package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"aichat/internal/credentials"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "credentials.db")
	s, err := Open(context.Background(), "sqlite3", dsn, true)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteEmptyLoad(t *testing.T) {
	s := openSQLite(t)
	cfg, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Empty() {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSQLiteSaveReplacesMapping(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	cfg := credentials.NewConfig()
	cfg.Set("openai", credentials.Provider{APIKey: "sk-1", DefaultModel: "gpt-4", Models: []string{"gpt-4", "gpt-3.5-turbo"}})
	cfg.Set("anthropic", credentials.Provider{APIKey: "sk-ant", DefaultModel: "claude-3-haiku-20240307", Models: []string{"claude-3-haiku-20240307"}})
	if err := s.Save(ctx, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(got.Providers))
	}
	p, err := got.Lookup("openai")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.APIKey != "sk-1" || p.DefaultModel != "gpt-4" || len(p.Models) != 2 || p.Models[1] != "gpt-3.5-turbo" {
		t.Fatalf("unexpected provider %+v", p)
	}

	next := credentials.NewConfig()
	next.Set("anthropic", credentials.Provider{APIKey: "sk-ant-2", DefaultModel: "m"})
	if err := s.Save(ctx, next); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if names := got.Names(); len(names) != 1 || names[0] != "anthropic" {
		t.Fatalf("expected only anthropic, got %v", names)
	}
	if got.Providers["anthropic"].Models == nil || len(got.Providers["anthropic"].Models) != 0 {
		t.Fatalf("expected empty model list, got %#v", got.Providers["anthropic"].Models)
	}
}

func TestSQLiteMalformedModels(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	if _, err := s.DB().ExecContext(ctx, `INSERT INTO provider_credentials (name, api_key, models_json) VALUES ('openai', 'k', '{bad')`); err != nil {
		t.Fatalf("seed row: %v", err)
	}

	_, err := s.Load(ctx)
	var cfgErr *credentials.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "dsn", false); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := Open(context.Background(), "sqlite", "", false); err == nil {
		t.Fatalf("expected empty dsn error")
	}
}
