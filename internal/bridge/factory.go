package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

// Options selects and parameterizes a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	DB          *sql.DB       // required for DriverMySQL
	Redis       *redis.Client // required for DriverRedis
	RedisPrefix string
}

// Open constructs the backend named by opts.Driver.  An empty driver
// selects SQLite.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case DriverMemory:
		return NewMemory(), nil
	case DriverMySQL:
		if opts.DB == nil {
			return nil, fmt.Errorf("bridge driver %q requires a database connection", DriverMySQL)
		}
		return NewMySQL(ctx, opts.DB)
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("bridge driver %q requires a redis client", DriverRedis)
		}
		return NewRedis(opts.Redis, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown bridge driver %q", opts.Driver)
	}
}
