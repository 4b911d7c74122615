package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Token issuer config with sensible defaults
type TokenIssuerConfig struct {
	// Secrets to sign access and refresh token payloads
	// Both required, must be distinct key material
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenIssuer creates and validates signed access and refresh tokens
// Each token type has its own secret and expiration
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		alg:           jwt.GetSigningMethod(cfg.Alg),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *TokenIssuer) issue(user models.User, secret []byte, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		i.alg,
		TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Role: user.Role,
		},
	)

	signed, err := token.SignedString(secret)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (i *TokenIssuer) IssueAccess(user models.User) (models.IssuedToken, error) {
	return i.issue(user, i.accessSecret, i.accessTTL)
}

func (i *TokenIssuer) IssueRefresh(user models.User) (models.IssuedToken, error) {
	return i.issue(user, i.refreshSecret, i.refreshTTL)
}

// GeneratePair issues fresh access and refresh tokens for the user
func (i *TokenIssuer) GeneratePair(user models.User) (models.TokenPair, error) {
	access, err := i.IssueAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := i.IssueRefresh(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *TokenIssuer) parse(tokenString string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{i.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenNotFound, err)
	}

	return claims, nil
}

// Parse and validate access token: signature and expiry
func (i *TokenIssuer) ParseAccess(tokenString string) (*TokenClaims, error) {
	return i.parse(tokenString, i.accessSecret)
}

// Parse and validate refresh token: signature and expiry
// The stored hash comparison is the caller's job
func (i *TokenIssuer) ParseRefresh(tokenString string) (*TokenClaims, error) {
	return i.parse(tokenString, i.refreshSecret)
}
