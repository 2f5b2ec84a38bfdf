package utils // package utils provides helper functions for token creation, hashing and parsing

import (
    "errors"  // sentinel errors for malformed tokens
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned when a token cannot be parsed, carries the
// wrong signing method, or lacks the claims a session needs.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Session slices persist the Token string through the bridge
// so a session can be restored after a restart.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the decoded subset of an access token used by the sessions.
type Claims struct {
    Subject string    // principal id (sub)
    Name    string    // principal display name (name)
    Role    string    // ADMIN or MASTER (role)
    Exp     time.Time // expiration (exp)
}

// NewAccessToken builds and signs an HS256 JWT for a principal.  It takes
// the signing secret, the principal's id, display name and role, and a
// TTL in minutes.  The JWT includes the standard claims sub, exp and iat
// plus name and role.
func NewAccessToken(secret, subject, name, role string, ttlMin int) (AccessToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  subject,
        "name": name,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    // Create a new token object specifying the signing method (HS256).
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw using secret
// and returns its claims.  Only HMAC signing methods are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    return claimsFrom(tok)
}

// DecodeUnverified reads the claims of raw without checking its signature
// or expiry.  It backs best-effort session restoration where the token is
// only a local hint of who was logged in.
func DecodeUnverified(raw string) (Claims, error) {
    tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
    if err != nil {
        return Claims{}, ErrInvalidToken
    }
    return claimsFrom(tok)
}

func claimsFrom(tok *jwt.Token) (Claims, error) {
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sub, _ := mc["sub"].(string)
    if sub == "" {
        return Claims{}, ErrInvalidToken
    }
    c := Claims{Subject: sub}
    c.Name, _ = mc["name"].(string)
    c.Role, _ = mc["role"].(string)
    if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
        c.Exp = exp.Time.UTC()
    }
    return c, nil
}
