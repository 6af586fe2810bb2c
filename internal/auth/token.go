package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. All of them must be answered with 401; the
// distinction only matters for logging.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenInvalid   = errors.New("invalid token")
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the compact expiring tokens carried in the auth
// cookies. Verification is pure computation: no store access, no side effects.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec. A missing signing secret is a configuration
// error and refuses to construct.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue creates a signed token carrying the subject id, valid for ttl.
func (c *Codec) Issue(subjectID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token string and returns the subject id.
// It fails with ErrTokenExpired past the expiry, ErrTokenMalformed on a
// structurally broken token or signature mismatch, and ErrTokenInvalid for
// everything else.
func (c *Codec) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenMalformed
		default:
			return "", ErrTokenInvalid
		}
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// ExtractFromCookie returns the value for key from a raw Cookie header, a
// semicolon-delimited k=v list, or "" when absent. Pure parse, no failure
// mode other than "not found".
func ExtractFromCookie(cookieHeader, key string) string {
	if cookieHeader == "" {
		return ""
	}
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, key+"="); ok {
			return v
		}
	}
	return ""
}
