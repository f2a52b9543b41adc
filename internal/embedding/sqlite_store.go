package embedding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps embeddings in a local SQLite file as float32 BLOBs.
type SQLiteStore struct{ db *sql.DB }

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		d.SetMaxOpenConns(1)
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := d.Exec(`
	CREATE TABLE IF NOT EXISTS embeddings (
	  key TEXT PRIMARY KEY,
	  vector BLOB NOT NULL,
	  created_at INTEGER NOT NULL
	);`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: d}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return decodeF32(b), true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, vec []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings(key, vector, created_at) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET vector=excluded.vector, created_at=excluded.created_at`,
		key, encodeF32(vec), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", key, err)
	}
	return nil
}
