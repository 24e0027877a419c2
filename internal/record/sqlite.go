package record

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// SQLite keeps the record in a single kv table. Writes are buffered until
// Save, which applies them in one transaction.
type SQLite struct {
	db      *sql.DB
	values  map[string]string
	pending map[string]string
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init kv schema: %w", err)
	}

	s := &SQLite{db: db, pending: make(map[string]string)}
	if err := s.Reload(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLite) Contains(key string) bool {
	_, ok := s.values[key]
	return ok
}

func (s *SQLite) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *SQLite) Set(key, value string) {
	s.values[key] = value
	s.pending[key] = value
}

func (s *SQLite) Save() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin kv save: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO kv(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare kv save: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := stmt.Exec(k, s.pending[k]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save kv %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit kv save: %w", err)
	}
	s.pending = make(map[string]string)
	return nil
}

// Reload drops unsaved writes and re-reads every row.
func (s *SQLite) Reload() error {
	rows, err := s.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return fmt.Errorf("load kv: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("scan kv: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load kv: %w", err)
	}
	s.values = values
	s.pending = make(map[string]string)
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
