// Package sqlite provides a SQLite-based ruleconfig.Store implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"logroute/internal/ruleconfig"
)

const timeFormat = time.RFC3339Nano

// Store is a SQLite-based ruleconfig.Store.
type Store struct {
	db *sql.DB
}

var _ ruleconfig.Store = (*Store)(nil)

// Open opens a SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create rule config directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set foreign_keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*ruleconfig.RuleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, source_id, name, query, sinks, catch_all, catch_rest, disabled, updated_at FROM rules WHERE id = ?", id.String())
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ruleconfig.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %q: %w", id, err)
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, sourceID string) ([]ruleconfig.RuleRecord, error) {
	const base = "SELECT id, source_id, name, query, sinks, catch_all, catch_rest, disabled, updated_at FROM rules"
	var (
		rows *sql.Rows
		err  error
	)
	if sourceID == "" {
		rows, err = s.db.QueryContext(ctx, base)
	} else {
		rows, err = s.db.QueryContext(ctx, base+" WHERE source_id = ?", sourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var result []ruleconfig.RuleRecord
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) Put(ctx context.Context, rule ruleconfig.RuleRecord) error {
	sinks, err := json.Marshal(rule.Sinks)
	if err != nil {
		return fmt.Errorf("marshal sinks for rule %q: %w", rule.ID, err)
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (id, source_id, name, query, sinks, catch_all, catch_rest, disabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			name = excluded.name,
			query = excluded.query,
			sinks = excluded.sinks,
			catch_all = excluded.catch_all,
			catch_rest = excluded.catch_rest,
			disabled = excluded.disabled,
			updated_at = excluded.updated_at
	`, rule.ID.String(), rule.SourceID, rule.Name, rule.Query, string(sinks),
		boolToInt(rule.CatchAll), boolToInt(rule.CatchRest), boolToInt(rule.Disabled), rule.UpdatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("put rule %q: %w", rule.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete rule %q: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (ruleconfig.RuleRecord, error) {
	var (
		idStr, updatedStr, sinksJSON string
		catchAllInt, catchRestInt    int
		disabledInt                  int
		r                            ruleconfig.RuleRecord
	)
	if err := row.Scan(&idStr, &r.SourceID, &r.Name, &r.Query, &sinksJSON, &catchAllInt, &catchRestInt, &disabledInt, &updatedStr); err != nil {
		return ruleconfig.RuleRecord{}, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return ruleconfig.RuleRecord{}, fmt.Errorf("parse rule id %q: %w", idStr, err)
	}
	r.ID = id
	r.CatchAll = catchAllInt != 0
	r.CatchRest = catchRestInt != 0
	r.Disabled = disabledInt != 0
	if err := json.Unmarshal([]byte(sinksJSON), &r.Sinks); err != nil {
		return ruleconfig.RuleRecord{}, fmt.Errorf("parse sinks for rule %q: %w", idStr, err)
	}
	updated, err := time.Parse(timeFormat, updatedStr)
	if err != nil {
		return ruleconfig.RuleRecord{}, fmt.Errorf("parse updated_at for rule %q: %w", idStr, err)
	}
	r.UpdatedAt = updated
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
