package identity

import "github.com/google/uuid"

// Caller is the authenticated principal behind a request, resolved once at
// the boundary from a validated token and passed explicitly to every
// authorization-sensitive operation. No ambient security context exists.
type Caller struct {
	ID    uuid.UUID
	Email string
	Role  UserRole
}

// IsZero reports whether no caller identity was resolved at all.
func (c Caller) IsZero() bool {
	return c.ID == uuid.Nil && c.Email == "" && c.Role == ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role.IsAdmin()
}

// IsSelf reports whether the caller is the target user.
func (c Caller) IsSelf(targetID uuid.UUID) bool {
	return c.ID != uuid.Nil && c.ID == targetID
}

// CanAccess reports whether the caller may operate on the target user:
// admins may act on anyone, members only on themselves.
func (c Caller) CanAccess(targetID uuid.UUID) bool {
	return c.IsAdmin() || c.IsSelf(targetID)
}

// Authorize gates an operation on a specific user, returning ErrAccessDenied
// on any violation.
func Authorize(caller Caller, targetID uuid.UUID) error {
	if caller.IsZero() || !caller.CanAccess(targetID) {
		return ErrAccessDenied
	}
	return nil
}

// AuthorizeAdmin gates collection-wide operations.
func AuthorizeAdmin(caller Caller) error {
	if caller.IsZero() || !caller.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}
