// Package bridge persists plain-data snapshots of the application state
// under fixed string keys.
//
// The Bridge is a shadow copy, never the source of truth while the process
// runs: it seeds the in-memory slices at startup and receives a write on
// every accepted mutation.  All operations fail soft.  A missing key or an
// undecodable payload loads as an empty value, and storage errors are
// logged and swallowed so a persistence failure never reaches the caller.
package bridge

import (
	"context"
	"encoding/json"
	"log"
)

// Keys under which the application state is persisted.  Each key is
// written independently; there is no transaction spanning several keys.
const (
	KeyRentApartments = "rentApartments"
	KeySaleApartments = "saleApartments"
	KeyTheme          = "theme"
	KeyCustomThemes   = "customThemes"
	KeyAdminAccounts  = "adminAccounts"
	KeyAdminToken     = "adminToken"
	KeyMasterToken    = "masterToken"
)

// Backend is a durable key-value store holding serialized payloads.
type Backend interface {
	// Get returns the payload stored under key.  found is false when the
	// key has never been written or was deleted.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	Set(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FailureHook is notified about every swallowed failure.  op is one of
// "load", "decode", "encode", "save" or "remove".
type FailureHook func(op, key string)

// Bridge wraps a Backend with JSON encoding and the fail-soft policy.
type Bridge struct {
	backend   Backend
	logger    *log.Logger
	onFailure FailureHook
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithFailureHook registers a hook invoked on each swallowed failure.
func WithFailureHook(h FailureHook) Option {
	return func(b *Bridge) { b.onFailure = h }
}

// New wraps backend.
func New(backend Backend, opts ...Option) *Bridge {
	b := &Bridge{backend: backend, logger: log.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Save serializes value and stores it under key.  Failures are logged and
// swallowed: there is no rollback and no retry.
func (b *Bridge) Save(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		b.fail("encode", key, err)
		return
	}
	if err := b.backend.Set(ctx, key, payload); err != nil {
		b.fail("save", key, err)
	}
}

// Remove deletes key.  Removing an absent key is not an error.
func (b *Bridge) Remove(ctx context.Context, key string) {
	if err := b.backend.Delete(ctx, key); err != nil {
		b.fail("remove", key, err)
	}
}

// Backend returns the wrapped backend.
func (b *Bridge) Backend() Backend { return b.backend }

// Close releases the backend.
func (b *Bridge) Close() error { return b.backend.Close() }

// read fetches the raw payload; ok is false when there is nothing usable.
func (b *Bridge) read(ctx context.Context, key string) ([]byte, bool) {
	payload, found, err := b.backend.Get(ctx, key)
	if err != nil {
		b.fail("load", key, err)
		return nil, false
	}
	if !found || len(payload) == 0 {
		return nil, false
	}
	return payload, true
}

func (b *Bridge) fail(op, key string, err error) {
	b.logger.Printf("bridge: %s %q failed: %v", op, key, err)
	if b.onFailure != nil {
		b.onFailure(op, key)
	}
}

// Load decodes the collection stored under key.  It always returns a
// non-nil slice; any failure yields an empty one.
func Load[T any](ctx context.Context, b *Bridge, key string) []T {
	payload, ok := b.read(ctx, key)
	if !ok {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		b.fail("decode", key, err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// LoadValue decodes a scalar stored under key, falling back to def when the
// key is absent or undecodable.
func LoadValue[T any](ctx context.Context, b *Bridge, key string, def T) T {
	payload, ok := b.read(ctx, key)
	if !ok {
		return def
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		b.fail("decode", key, err)
		return def
	}
	return out
}
