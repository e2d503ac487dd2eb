package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the validity window of every session token.
const TokenTTL = 24 * time.Hour

// ErrMissingSecret is returned when a token is requested but no signing secret is configured.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// JWTManager signs and verifies HS256 session tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		TTL:    TokenTTL,
		now:    time.Now,
	}
}

// Configured reports whether tokens can be issued.
func (m *JWTManager) Configured() bool {
	return m != nil && len(m.Secret) > 0
}

// Claims carried by a session token. Name is only set on tokens minted at registration.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issue mints a token for the subject. name may be empty.
func (m *JWTManager) Issue(userID, email, name string) (string, time.Time, error) {
	if !m.Configured() {
		return "", time.Time{}, ErrMissingSecret
	}
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates signature and expiry and returns the claims.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	if !m.Configured() {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
