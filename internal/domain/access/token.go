package access

import "time"

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	ID        string
	ProfileID string
	Type      TokenType
	IsAdmin   bool
	IssuedAt  time.Time
	// ExpiresAt is zero when the token carries no expiry.
	ExpiresAt time.Time
}

// Caller returns the identity the token was issued to.
func (c *Claims) Caller() Caller {
	return Caller{ProfileID: c.ProfileID, IsAdmin: c.IsAdmin}
}
