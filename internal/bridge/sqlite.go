package bridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// NewSQLite opens (creating if needed) a SQLite database file and returns
// a Backend over it.  This is the default durable store: one file per
// process, the local equivalent of browser storage.
func NewSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = "data/listing.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers; sqlite locks the file anyway
	db.SetMaxOpenConns(1)
	s, err := newSQLStore(ctx, db, sqliteSchema, sqliteUpsert, true)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
