// Package security issues and parses JWTs and hashes passwords.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// tokenClaims is the signed payload of every token.
type tokenClaims struct {
	Type    access.TokenType `json:"typ"`
	IsAdmin bool             `json:"adm"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) toAccess() *access.Claims {
	out := &access.Claims{
		ID:        c.ID,
		ProfileID: c.Subject,
		Type:      c.Type,
		IsAdmin:   c.IsAdmin,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

// TokenConfig holds signing settings.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultTokenConfig returns 15 minute access and 7 day refresh lifetimes.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Issuer:     "devask-hub",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	config TokenConfig
	now    func() time.Time
	newID  func() string
}

// NewTokenIssuer creates a TokenIssuer. The secret must not be empty.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	defaults := DefaultTokenConfig()
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaults.AccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaults.RefreshTTL
	}
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		config: cfg,
		now:    time.Now,
		newID:  shared.NewID,
	}, nil
}

// Issue signs a new token of the given type for a profile.
func (i *TokenIssuer) Issue(typ access.TokenType, profileID string, isAdmin bool) (string, *access.Claims, error) {
	ttl := i.config.AccessTTL
	if typ == access.TokenRefresh {
		ttl = i.config.RefreshTTL
	}

	now := i.now().UTC()
	claims := &tokenClaims{
		Type:    typ,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        i.newID(),
			Subject:   profileID,
			Issuer:    i.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims.toAccess(), nil
}

// Parse verifies the signature, issuer, expiry and type of a token.
func (i *TokenIssuer) Parse(raw string, want access.TokenType) (*access.Claims, error) {
	claims, err := i.parse(raw, want)
	if err != nil {
		return nil, err
	}
	return claims.toAccess(), nil
}

func (i *TokenIssuer) parse(raw string, want access.TokenType) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, shared.WrapError("auth", "Parse", shared.ErrUnauthorized, shared.ErrTokenInvalid.Message, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, shared.ErrTokenInvalid
	}
	if claims.Type != want {
		return nil, shared.ErrTokenWrongType
	}
	return claims, nil
}

// ParseExpired is Parse for tokens whose expiry no longer matters. It still
// checks the signature and type.
func (i *TokenIssuer) ParseExpired(raw string, want access.TokenType) (*access.Claims, bool, error) {
	claims, err := i.parse(raw, want)
	if err == nil {
		return claims.toAccess(), false, nil
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return nil, false, err
	}

	claims = &tokenClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.Type != want || claims.Issuer != i.config.Issuer {
		return nil, false, shared.ErrTokenInvalid
	}
	return claims.toAccess(), true, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.config.AccessTTL
}
