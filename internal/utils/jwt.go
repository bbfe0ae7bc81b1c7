// Package utils provides helper functions for token creation and
// password hashing. All token operations are pure: callers own cookie
// emission and session-cache access.
package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/online-course-platform/internal/model"
)

var (
	// ErrTokenInvalid is returned when a token fails signature or
	// structural validation.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned when a well-formed token is past
	// its expiry.
	ErrTokenExpired = errors.New("token is expired")
	// ErrCodeMismatch is returned when the supplied activation code
	// differs from the one embedded in the activation token.
	ErrCodeMismatch = errors.New("invalid activation code")
)

// ActivationToken bundles the signed token handed to the client with
// the one-time code delivered out of band (by email).
type ActivationToken struct {
	Token string
	Code  string
}

// activationClaims binds the pending registration data to the
// activation code inside the signed token.
type activationClaims struct {
	User model.PendingUser `json:"user"`
	Code string            `json:"code"`
	jwt.RegisteredClaims
}

// sessionClaims carries only the user id, mirroring what access and
// refresh tokens need.
type sessionClaims struct {
	ID uint64 `json:"id"`
	jwt.RegisteredClaims
}

// NewActivationToken signs {pendingUser, code} with the activation
// secret. The code is a 6-digit number drawn uniformly from
// [100000, 999999] using crypto/rand.
func NewActivationToken(secret string, user model.PendingUser, ttl time.Duration) (ActivationToken, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return ActivationToken{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	now := time.Now().UTC()
	claims := activationClaims{
		User: user,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ActivationToken{}, err
	}
	return ActivationToken{Token: signed, Code: code}, nil
}

// VerifyActivationToken checks signature and expiry, then compares
// the supplied code against the embedded one. The pending user is
// only returned when both checks pass.
func VerifyActivationToken(secret, token, code string) (model.PendingUser, error) {
	var claims activationClaims
	if err := parseInto(secret, token, &claims); err != nil {
		return model.PendingUser{}, err
	}
	if claims.Code != code {
		return model.PendingUser{}, ErrCodeMismatch
	}
	return claims.User, nil
}

// NewSessionToken signs {id: userID} with the given secret and TTL.
// Used for both access and refresh tokens, which differ only in
// secret and lifetime.
func NewSessionToken(secret string, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifySessionToken validates an access or refresh token and returns
// the user id it was issued for.
func VerifySessionToken(secret, token string) (uint64, error) {
	var claims sessionClaims
	if err := parseInto(secret, token, &claims); err != nil {
		return 0, err
	}
	return claims.ID, nil
}

// parseInto parses a token into claims, enforcing HMAC signing and
// translating jwt errors into the package sentinels.
func parseInto(secret, token string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tok.Valid {
		return ErrTokenInvalid
	}
	return nil
}
