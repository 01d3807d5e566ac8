package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each collection as one row of a SQLite table.
type SQLiteStore struct {
	*snapshotStore
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// collections table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating collections table: %w", err)
	}

	return &SQLiteStore{
		snapshotStore: &snapshotStore{b: sqliteBackend{db: db}},
	}, nil
}

type sqliteBackend struct {
	db *sql.DB
}

func (b sqliteBackend) read(name string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow("SELECT data FROM collections WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b sqliteBackend) write(name string, data []byte) error {
	_, err := b.db.Exec(`INSERT INTO collections (name, data) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data`, name, data)
	return err
}

func (b sqliteBackend) clear() error {
	_, err := b.db.Exec("DELETE FROM collections")
	return err
}

func (b sqliteBackend) close() error {
	return b.db.Close()
}
