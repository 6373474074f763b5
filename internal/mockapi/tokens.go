package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenIssuer signs the TTBSID session tokens handed out by the development API.
type TokenIssuer struct {
	key    []byte
	issuer string
	expiry time.Duration
}

func NewTokenIssuer(key []byte, issuer string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, issuer: issuer, expiry: expiry}
}

// Issue returns a signed token for user and its unique id.
func (t *TokenIssuer) Issue(user *User) (token string, id string, err error) {
	now := NowTimeFunc()
	id = uuid.New().String()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   user.Username,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, id, nil
}

// Verify checks the signature and expiry of token.
func (t *TokenIssuer) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return claims, nil
}
