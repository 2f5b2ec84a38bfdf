package middleware

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "log"
    "net/http"
    "strconv"
    "strings"
    "sync/atomic"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/property-listing/internal/config"
    "github.com/iliyamo/property-listing/internal/store"
)

// captureWriter tees the response body into buf, up to limit bytes, while
// forwarding everything to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
            cw.truncated = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is the value stored per cache key.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// Versioner reports the listing commit generation.  *store.Store
// satisfies it.
type Versioner interface {
    Version() uint64
}

// cacheKeyFrom builds a stable cache key honoring prefix and strategy.
// The generation is part of the key, so a commit retires every earlier
// entry at once.  The variable part is hashed so keys stay short and safe.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, gen uint64) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "method_route":
        parts = []string{"method", r.Method, "route", c.Path()}
    case "url":
        parts = []string{"url", r.URL.Path, "q", r.URL.RawQuery}
    default: // "route_query"
        parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
    }
    // parameters are part of the identity even for the route strategies
    for _, name := range c.ParamNames() {
        parts = append(parts, name, c.Param(name))
    }
    sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
    return cfg.Prefix + ":" + strconv.FormatUint(gen, 10) + ":" + hex.EncodeToString(sum[:16])
}

// NewRedisCache serves cached 200 responses for the configured methods and
// records misses.  The generation is read before the handler runs; a
// response is stored only when no listing commit happened while it was
// rendered, and only under that generation's key.  Without a Versioner
// nothing is cached.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, versions Versioner) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil || versions == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            gen := versions.Version()
            key := cacheKeyFrom(cfg, c, gen)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    return replay(c, hit)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated || versions.Version() != gen {
                return nil
            }
            entry := cachedResponse{Status: cw.status, Header: c.Response().Header().Clone(), Body: cw.buf.Bytes()}
            entry.Header.Del("X-Cache")
            if payload, err := json.Marshal(entry); err == nil {
                _ = rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

func replay(c echo.Context, hit cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range hit.Header {
        if strings.EqualFold(k, "Content-Length") {
            continue
        }
        for _, v := range vals {
            h.Add(k, v)
        }
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(hit.Status)
    _, err := c.Response().Write(hit.Body)
    return err
}

// InvalidateCache returns a store middleware reclaiming cached responses
// after a listing commit.  Freshness comes from the generation in the
// key; the purge only frees memory, so it runs in the background and at
// most one runs at a time.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) store.Middleware {
    if !cfg.Enabled || rdb == nil {
        return func(context.Context, store.Commit) {}
    }
    var running atomic.Bool
    return func(ctx context.Context, c store.Commit) {
        if c.Outcome != store.Updated || c.Action.Affects() == store.CollNone {
            return
        }
        if !running.CompareAndSwap(false, true) {
            return
        }
        kind := c.Action.Kind()
        go func() {
            defer running.Store(false)
            if err := purge(context.WithoutCancel(ctx), rdb, cfg.Prefix); err != nil {
                log.Printf("cache: purge after %s failed: %v", kind, err)
            }
        }()
    }
}

func purge(ctx context.Context, rdb *redis.Client, prefix string) error {
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    iter := rdb.Scan(ctx, 0, prefix+":*", 200).Iterator()
    var batch []string
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) == 200 {
            if err := rdb.Del(ctx, batch...).Err(); err != nil {
                return err
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(batch) > 0 {
        return rdb.Del(ctx, batch...).Err()
    }
    return nil
}
