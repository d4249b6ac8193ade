package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAdminToken is returned for a structurally invalid or expired
// admin bearer token.
var ErrInvalidAdminToken = errors.New("invalid admin token")

// principalClaims is the JWT payload identifying an admin caller, grounded
// on the teacher's x402 batch-token Claims shape, repurposed here to carry
// the admin principal instead of a request-credit allowance. The principal
// travels in the standard Subject claim; no extra field is added.
type principalClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies admin bearer tokens with an HMAC secret,
// the same mechanism the teacher's TokenManager uses for batch RPC credits.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret []byte, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, expiry: expiry}
}

// IssueToken signs an admin bearer token identifying principal.
func (t *TokenIssuer) IssueToken(principal string) (string, error) {
	now := time.Now()
	claims := &principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing admin token: %w", err)
	}
	return signed, nil
}

// Principal validates tokenString and returns the admin principal it names.
func (t *TokenIssuer) Principal(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &principalClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", ErrInvalidAdminToken
	}
	claims, ok := token.Claims.(*principalClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidAdminToken
	}
	return claims.Subject, nil
}
