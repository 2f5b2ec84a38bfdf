package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/property-listing/internal/config"
)

// Rate limit scopes.  Listing intents and account changes draw from their
// own bucket, sized by RateLimitConfig.WriteCapacity.
const (
    scopeRead  = "read"
    scopeWrite = "write"
)

// bucketScript refills continuously and takes one token.  Tokens are kept
// as a string so fractions survive between calls.  It replies
// {allowed, whole tokens left, wait in ms}.
var bucketScript = redis.NewScript(`
local cap = tonumber(ARGV[2])
local per_ms = tonumber(ARGV[3])
local now = tonumber(ARGV[1])
local cur = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens = tonumber(cur[1]) or cap
local at = tonumber(cur[2]) or now
if now > at then
  tokens = math.min(cap, tokens + (now - at) * per_ms)
end
local allowed, wait = 0, 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
elseif per_ms > 0 then
  wait = math.ceil((1 - tokens) / per_ms)
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'at', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, math.floor(tokens), wait}
`)

// scopeOf puts safe methods in the read bucket and everything else in
// the write bucket.
func scopeOf(c echo.Context) string {
    switch c.Request().Method {
    case http.MethodGet, http.MethodHead, http.MethodOptions:
        return scopeRead
    }
    return scopeWrite
}

func capacityOf(cfg config.RateLimitConfig, scope string) int {
    if scope == scopeWrite && cfg.WriteCapacity > 0 {
        return cfg.WriteCapacity
    }
    return cfg.Capacity
}

// NewTokenBucket limits requests with per-scope token buckets kept in
// Redis.  Without Redis, or when disabled, it passes every request
// through.  Redis errors fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    perMs := 0.0
    if ms := cfg.RefillInterval.Milliseconds(); ms > 0 {
        perMs = float64(cfg.RefillTokens) / float64(ms)
    }
    ttlMs := cfg.TTL.Milliseconds()

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            scope := scopeOf(c)
            limit := capacityOf(cfg, scope)
            key := buildRateKey(cfg, c)

            vals, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(), limit, perMs, ttlMs).Result()
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit: %s: %v", key, err)
                }
                return next(c)
            }
            allowed, remaining, waitMs, ok := parseBucketResult(vals)
            if !ok {
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Scope", scope)
            h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if allowed {
                return next(c)
            }
            secs := int(math.Ceil(float64(waitMs) / 1000))
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       fmt.Sprintf("too many %s requests", scope),
                "retry_after": secs,
            })
        }
    }
}

// parseBucketResult unpacks the script reply {allowed, tokens, wait_ms}.
func parseBucketResult(vals interface{}) (allowed bool, remaining, waitMs int64, ok bool) {
    arr, isArr := vals.([]interface{})
    if !isArr || len(arr) != 3 {
        return false, 0, 0, false
    }
    return asInt64(arr[0]) == 1, asInt64(arr[1]), asInt64(arr[2]), true
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

// buildRateKey is prefix:scope followed by the parts the strategy names.
// Admin writes keyed by user follow the admin across addresses.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix, scopeOf(c)}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
