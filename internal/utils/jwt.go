package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dayflow-backend/internal/clock"
)

var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessMinutes int
	RefreshHours  int
}

// TokenIssuer signs and verifies access and refresh tokens. Both are HS256 but
// use different secrets so one can never stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         clock.Clock
}

func NewTokenIssuer(cfg TokenConfig, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshHours) * time.Hour,
		clock:         clk,
	}
}

func (t *TokenIssuer) GenerateAccessToken(userID string, role string, employeeID string) (string, error) {
	now := t.clock.Now()
	claims := AccessClaims{
		Role:       role,
		EmployeeID: employeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.accessSecret)
}

// GenerateRefreshToken carries a random jti so two tokens issued in the same
// second still differ.
func (t *TokenIssuer) GenerateRefreshToken(userID string) (string, error) {
	now := t.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.refreshSecret)
}

func (t *TokenIssuer) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(raw, claims, t.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) ParseRefreshToken(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if err := t.parse(raw, claims, t.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) parse(raw string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	subject, _ := claims.GetSubject()
	if subject == "" {
		return ErrInvalidToken
	}
	return nil
}
