// Package token mints and verifies the signed, time-bounded tokens that
// carry a session's identity claim. Tokens are self-contained; revoking a
// session happens by invalidating the stored refresh-token hash, not here.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers signature mismatches and malformed payloads.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for structurally valid but expired tokens.
	ErrExpiredToken = errors.New("expired token")
)

// Config holds the signing material and issuer name. It is passed in at
// construction — there is no package-level secret.
type Config struct {
	Secret []byte
	Issuer string
}

// Claims is the identity envelope embedded in every token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Identity is the verified subject extracted from a token.
type Identity struct {
	UserID   int64
	Username string
}

type Issuer struct {
	secret []byte
	issuer string
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{secret: cfg.Secret, issuer: cfg.Issuer}
}

// Issue signs an HS256 token for the given subject with the given lifetime.
// The jti claim makes every token unique, even two minted in the same second.
func (i *Issuer) Issue(userID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and time bounds and returns the subject
// identity, or ErrExpiredToken / ErrInvalidToken.
func (i *Issuer) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Username: claims.Username}, nil
}
