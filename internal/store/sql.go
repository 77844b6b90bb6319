package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// SQLStore keeps entries in a single kv_entries table. The same queries run
// on SQLite and Postgres; only placeholders differ.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (and creates if needed) the SQLite database at path.
func OpenSQLite(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create store directory")
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite store")
	}
	s, err := NewSQLStore(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects to the Postgres database described by dsn.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres store")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres store")
	}
	s, err := NewSQLStore(db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and runs migrations.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if err := RunMigrations(db); err != nil {
		return nil, errors.Wrap(err, "run store migrations")
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// RunMigrations creates the kv_entries table
func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		entry_key TEXT PRIMARY KEY,
		entry_value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT entry_value FROM kv_entries WHERE entry_key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(query), key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %q", key)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			  VALUES (?, ?, CURRENT_TIMESTAMP)
			  ON CONFLICT (entry_key) DO UPDATE
			  SET entry_value = excluded.entry_value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, s.rebind(query), key, string(value)); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (s *SQLStore) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if old == nil {
		query := `INSERT INTO kv_entries (entry_key, entry_value, updated_at)
				  VALUES (?, ?, CURRENT_TIMESTAMP)
				  ON CONFLICT (entry_key) DO NOTHING`
		result, err = s.db.ExecContext(ctx, s.rebind(query), key, string(next))
	} else {
		query := `UPDATE kv_entries SET entry_value = ?, updated_at = CURRENT_TIMESTAMP
				  WHERE entry_key = ? AND entry_value = ?`
		result, err = s.db.ExecContext(ctx, s.rebind(query), string(next), key, string(old))
	}
	if err != nil {
		return false, errors.Wrapf(err, "compare-and-swap %q", key)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "compare-and-swap %q", key)
	}
	return n == 1, nil
}

// rebind rewrites ? placeholders to $n for Postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
