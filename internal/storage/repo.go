package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"aichat/internal/credentials"
)

var _ credentials.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context) (*credentials.Config, error) {
	q := s.sql.Select("name", "api_key", "default_model", "models_json").
		From("provider_credentials").
		OrderBy("name ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load credentials query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, &credentials.ConfigError{Op: "read", Err: fmt.Errorf("load credentials: %w", err)}
	}
	defer rows.Close()

	cfg := credentials.NewConfig()
	for rows.Next() {
		var (
			name       string
			p          credentials.Provider
			modelsJSON string
		)
		if err := rows.Scan(&name, &p.APIKey, &p.DefaultModel, &modelsJSON); err != nil {
			return nil, &credentials.ConfigError{Op: "read", Err: fmt.Errorf("scan credential row: %w", err)}
		}
		if err := json.Unmarshal([]byte(modelsJSON), &p.Models); err != nil {
			return nil, &credentials.ConfigError{Op: "decode", Err: fmt.Errorf("provider %q models: %w", name, err)}
		}
		cfg.Providers[name] = p
	}
	if err := rows.Err(); err != nil {
		return nil, &credentials.ConfigError{Op: "read", Err: fmt.Errorf("iterate credential rows: %w", err)}
	}
	return cfg, nil
}

// Save replaces the stored mapping with cfg in a single transaction.
func (s *Store) Save(ctx context.Context, cfg *credentials.Config) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &credentials.ConfigError{Op: "write", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.replaceAll(ctx, tx, cfg); err != nil {
		return &credentials.ConfigError{Op: "write", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &credentials.ConfigError{Op: "write", Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func (s *Store) replaceAll(ctx context.Context, tx *sql.Tx, cfg *credentials.Config) error {
	del, args, err := s.sql.Delete("provider_credentials").ToSql()
	if err != nil {
		return fmt.Errorf("build delete credentials query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	if cfg.Empty() {
		return nil
	}

	q := s.sql.Insert("provider_credentials").
		Columns("name", "api_key", "default_model", "models_json", "updated_at")
	for _, name := range cfg.Names() {
		p := cfg.Providers[name]
		models := p.Models
		if models == nil {
			models = []string{}
		}
		modelsJSON, err := json.Marshal(models)
		if err != nil {
			return fmt.Errorf("marshal provider %q models: %w", name, err)
		}
		q = q.Values(name, p.APIKey, p.DefaultModel, string(modelsJSON), nowExpr(s.driver))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert credentials query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert credentials: %w", err)
	}
	return nil
}

func nowExpr(driver string) any {
	if driver == "postgres" {
		return sq.Expr("NOW()")
	}
	return sq.Expr("CURRENT_TIMESTAMP")
}
