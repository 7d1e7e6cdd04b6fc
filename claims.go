package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed, self-contained token payload: identity plus role.
// Validity is purely a function of signature and expiry; the server keeps
// no record of issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email    string   `json:"email,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// SubjectID parses the subject claim as the user's UUID.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return id, nil
}

// Role returns the role claim.
func (c *Claims) Role() UserRole {
	return c.UserRole
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Caller builds the explicit caller identity used by the authorization
// policy. Resolved once at the boundary from a validated token.
func (c *Claims) Caller() (Caller, error) {
	id, err := c.SubjectID()
	if err != nil {
		return Caller{}, err
	}

	return Caller{
		ID:    id,
		Email: c.Email,
		Role:  c.UserRole,
	}, nil
}
