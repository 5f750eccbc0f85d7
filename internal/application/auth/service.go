// Package auth implements login, token refresh and verification, logout
// through a token blacklist, and request authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/access"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// Tokens signs and parses JWTs.
type Tokens interface {
	Issue(typ access.TokenType, profileID string, isAdmin bool) (string, *access.Claims, error)
	Parse(raw string, want access.TokenType) (*access.Claims, error)
	ParseExpired(raw string, want access.TokenType) (*access.Claims, bool, error)
}

// Passwords hashes and checks passwords.
type Passwords interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenPair is returned by Login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Service is the authentication use case.
type Service struct {
	profiles  profile.Repository
	tokens    Tokens
	passwords Passwords
	blacklist cache.Store
	logger    *logger.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a Service. The blacklist store must be shared by every
// API instance, otherwise logout only holds on the instance that served it.
func NewService(profiles profile.Repository, tokens Tokens, passwords Passwords, blacklist cache.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		profiles:  profiles,
		tokens:    tokens,
		passwords: passwords,
		blacklist: blacklist,
		logger:    log.With(logger.Component("auth")),
		now:       time.Now,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN / REFRESH / VERIFY
// ══════════════════════════════════════════════════════════════════════════════

// Login checks the password and issues an access and a refresh token.
// Unknown usernames and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	p, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// Spend the same bcrypt time as for a real account.
		_, _ = s.passwords.Compare(s.dummy(), password)
		return nil, shared.ErrInvalidCredentials
	}

	ok, err := s.passwords.Compare(p.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, shared.ErrInvalidCredentials
	}

	accessToken, _, err := s.tokens.Issue(access.TokenAccess, p.ID, p.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, _, err := s.tokens.Issue(access.TokenRefresh, p.ID, p.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info("profile logged in", logger.ProfileID(p.ID))
	return &TokenPair{Access: accessToken, Refresh: refresh}, nil
}

// Refresh issues a new access token for a valid, not blacklisted refresh
// token. The admin flag is read from the profile, not from the old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, access.TokenRefresh)
	if err != nil {
		return "", err
	}
	if err := s.checkBlacklist(ctx, claims); err != nil {
		return "", err
	}

	p, err := s.profiles.GetByID(ctx, claims.ProfileID)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.ErrTokenInvalid
		}
		return "", fmt.Errorf("refresh: %w", err)
	}

	token, _, err := s.tokens.Issue(access.TokenAccess, p.ID, p.IsAdmin)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	return token, nil
}

// Verify accepts a valid token of either type.
func (s *Service) Verify(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, access.TokenAccess)
	if errors.Is(err, shared.ErrTokenWrongType) {
		claims, err = s.tokens.Parse(token, access.TokenRefresh)
	}
	if err != nil {
		return err
	}
	return s.checkBlacklist(ctx, claims)
}

// Authenticate resolves the caller of a request from its access token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (access.Caller, error) {
	claims, err := s.tokens.Parse(accessToken, access.TokenAccess)
	if err != nil {
		return access.Anonymous, err
	}
	if err := s.checkBlacklist(ctx, claims); err != nil {
		return access.Anonymous, err
	}
	return claims.Caller(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGOUT
// ══════════════════════════════════════════════════════════════════════════════

// Logout blacklists the refresh token and, when given, the access token
// until they expire. Tokens that already expired need no entry.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if err := s.revoke(ctx, refreshToken, access.TokenRefresh); err != nil {
		return err
	}
	if accessToken == "" {
		return nil
	}
	return s.revoke(ctx, accessToken, access.TokenAccess)
}

func (s *Service) revoke(ctx context.Context, raw string, typ access.TokenType) error {
	claims, expired, err := s.tokens.ParseExpired(raw, typ)
	if err != nil {
		return err
	}
	if expired {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Set(ctx, cache.BlacklistKey(claims.ID), claims.ProfileID, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	s.logger.Info("token blacklisted",
		logger.ProfileID(claims.ProfileID),
		logger.String("token_type", string(typ)),
		logger.Duration("ttl", ttl),
	)
	return nil
}

// checkBlacklist fails closed: an unreachable blacklist rejects the token.
func (s *Service) checkBlacklist(ctx context.Context, claims *access.Claims) error {
	found, err := s.blacklist.Exists(ctx, cache.BlacklistKey(claims.ID))
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if found {
		return shared.ErrTokenBlacklisted
	}
	return nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.passwords.Hash(shared.NewID())
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", logger.Err(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
