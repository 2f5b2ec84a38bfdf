package bridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS bridge_state (
		state_key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	sqliteUpsert = `INSERT INTO bridge_state(state_key, payload) VALUES(?, ?)
		ON CONFLICT(state_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`

	mysqlSchema = `CREATE TABLE IF NOT EXISTS bridge_state (
		state_key VARCHAR(191) NOT NULL PRIMARY KEY,
		payload LONGBLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	mysqlUpsert = `INSERT INTO bridge_state (state_key, payload) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)`

	selectPayload = "SELECT payload FROM bridge_state WHERE state_key = ?"
	deletePayload = "DELETE FROM bridge_state WHERE state_key = ?"
)

// SQLStore is a Backend keeping one row per key in the bridge_state table.
// The same code serves SQLite and MySQL; only the schema and the upsert
// statement differ.
type SQLStore struct {
	db     *sql.DB
	upsert string
	owned  bool // close db on Close
}

func newSQLStore(ctx context.Context, db *sql.DB, schema, upsert string, owned bool) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create bridge_state table: %w", err)
	}
	return &SQLStore{db: db, upsert: upsert, owned: owned}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectPayload, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, s.upsert, key, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deletePayload, key)
	return err
}

func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
