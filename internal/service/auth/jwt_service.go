package auth

import (
	"context"
	"time"
)

// Roles carried in the role claim.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Identity describes who a token is issued for.
type Identity struct {
	// Subject is the stable identifier of the caller.
	Subject string
	// Name is the display name recorded as the audit actor.
	Name string
	// Role is RoleMember or RoleAdmin.
	Role string
}

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the identity.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, id Identity) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of an access token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Actor returns the name recorded in audit entries for this caller:
// the name claim, or the subject when the token carries no name.
func (c *Claims) Actor() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
