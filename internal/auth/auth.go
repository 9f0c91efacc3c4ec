// Package auth holds the JWT machinery shared by the middleware and the
// handlers that issue tokens.
package auth

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ctxKey is a custom type so context values set by this package can never
// collide with keys set elsewhere.
type ctxKey int

// ClaimsKey is the request-context key under which the authentication
// middleware stores the verified claims.
const ClaimsKey ctxKey = 1

// Roles recognised by the Authorize middleware.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Claims is the payload carried inside every token issued by this service.
// Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Keys wraps the RSA key pair used to sign and verify tokens.
type Keys struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) (*Keys, error) {
	if privateKey == nil || publicKey == nil {
		return nil, fmt.Errorf("private/public key can't be nil")
	}
	return &Keys{privateKey: privateKey, publicKey: publicKey}, nil
}

// ParseKeys builds Keys from PEM encoded key material.
func ParseKeys(privatePEM, publicPEM []byte) (*Keys, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return NewKeys(privateKey, publicKey)
}

// GenerateToken signs a token for the given user id. Tokens expire after
// one hour, matching the session length of the web client.
func (k *Keys) GenerateToken(userID string, roles []string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "treasure-trove",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenStr, err := token.SignedString(k.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenStr, nil
}

// ValidateToken parses and verifies a signed token and returns its claims.
func (k *Keys) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return k.publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}
	return claims, nil
}
