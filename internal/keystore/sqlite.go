package keystore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const createTable = `CREATE TABLE IF NOT EXISTS user_keys (
	idx   INTEGER PRIMARY KEY CHECK (idx >= 0 AND idx < 8),
	value INTEGER NOT NULL CHECK (value >= 0 AND value <= 65535)
)`

// SQLite persists user keys in a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ Reader = (*SQLite)(nil)
	_ Writer = (*SQLite)(nil)
)

// OpenSQLite opens (creating if needed) the key database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("keystore: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("keystore: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keystore: ping: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keystore: create table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ReadUserKey returns the stored value, or 0 when absent or unreadable.
func (s *SQLite) ReadUserKey(index int) uint16 {
	if checkIndex(index) != nil {
		return 0
	}
	var v int64
	err := s.db.QueryRow(`SELECT value FROM user_keys WHERE idx = ?`, index).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		slog.Warn("[KEYSTORE] read failed, using 0", "index", index, "error", err)
		return 0
	}
	return uint16(v)
}

func (s *SQLite) WriteUserKey(index int, value uint16) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO user_keys (idx, value) VALUES (?, ?)
		 ON CONFLICT(idx) DO UPDATE SET value = excluded.value`,
		index, int64(value),
	)
	if err != nil {
		return fmt.Errorf("keystore: write key %d: %w", index, err)
	}
	return nil
}

// All returns every slot in index order; absent slots are 0.
func (s *SQLite) All() ([MaxUserKeys]uint16, error) {
	var out [MaxUserKeys]uint16
	rows, err := s.db.Query(`SELECT idx, value FROM user_keys ORDER BY idx`)
	if err != nil {
		return out, fmt.Errorf("keystore: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx, v int64
		if err := rows.Scan(&idx, &v); err != nil {
			return out, fmt.Errorf("keystore: scan: %w", err)
		}
		out[idx] = uint16(v)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
