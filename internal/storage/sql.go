package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name   string
	schema string
	get    string
	put    string
	del    string
	keys   string
}

var postgresDialect = dialect{
	name: "postgres",
	schema: `CREATE TABLE IF NOT EXISTS mailflow_kv (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	get: `SELECT value FROM mailflow_kv WHERE key = $1`,
	put: `INSERT INTO mailflow_kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	del:  `DELETE FROM mailflow_kv WHERE key = $1`,
	keys: `SELECT key, length(value::text), updated_at FROM mailflow_kv ORDER BY key`,
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	get: `SELECT value FROM kv WHERE key = ?`,
	put: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	del:  `DELETE FROM kv WHERE key = ?`,
	keys: `SELECT key, length(value), updated_at FROM kv ORDER BY key`,
}

// SQL is a KV backed by a single table in PostgreSQL or SQLite.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenPostgres connects with lib/pq and creates the mailflow_kv table.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQL, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres storage")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	s := NewPostgres(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an open PostgreSQL handle without touching the schema.
func NewPostgres(db *sql.DB) *SQL {
	return &SQL{db: db, dialect: postgresDialect}
}

// OpenSQLite opens (or creates) a single-file database with WAL enabled.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQL{db: db, dialect: sqliteDialect}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the key-value table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("creating %s kv table: %w", s.dialect.name, err)
	}
	return nil
}

// KeyInfo describes one stored document.
type KeyInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Keys lists every stored key with its document size.
func (s *SQL) Keys(ctx context.Context) ([]KeyInfo, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.keys)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var out []KeyInfo
	for rows.Next() {
		var k KeyInfo
		if err := rows.Scan(&k.Key, &k.Size, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// DB exposes the handle for advisory locking.
func (s *SQL) DB() *sql.DB { return s.db }

// Dialect reports "postgres" or "sqlite".
func (s *SQL) Dialect() string { return s.dialect.name }

func (s *SQL) Get(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", key, err)
	}
	return true, decode(key, raw, dst)
}

func (s *SQL) Put(ctx context.Context, key string, v any) error {
	raw, err := encode(key, v)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.put, key, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("upserting %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.del, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }
