package bridge

import (
	"context"
	"database/sql"
)

// NewMySQL returns a Backend over an already opened MySQL pool (see
// internal/database).  The pool stays owned by the caller.
func NewMySQL(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, mysqlSchema, mysqlUpsert, false)
}
