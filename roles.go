package identity

import "strings"

// UserRole is the closed set of roles a user can hold.
type UserRole string

const (
	// RoleMember is the default role: access to the member's own record only.
	RoleMember UserRole = "MEMBER"
	// RoleAdmin can access any user record and the collection listing.
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role grants collection-wide access.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole maps a string onto the closed role set, case-insensitively.
// An empty value resolves to RoleMember.
func ParseRole(value string) (UserRole, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "":
		return RoleMember, nil
	case string(RoleMember):
		return RoleMember, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}
