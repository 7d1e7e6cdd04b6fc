package identity

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUserNotFound   = "identity_user_not_found"
	TextCodeEmailExists    = "identity_email_exists"
	TextCodeInvalidCreds   = "identity_invalid_credentials"
	TextCodeAccessDenied   = "identity_access_denied"
	TextCodePasswordPolicy = "identity_password_policy"
	TextCodeInvalidRole    = "identity_invalid_role"
	TextCodeTokenExpired   = "identity_token_expired"
	TextCodeTokenMalformed = "identity_token_malformed"
	TextCodeEmptyPassword  = "identity_empty_password"
)

// uniformCredentialMessage is shared by ErrUserNotFound and
// ErrInvalidCredentials so a boundary that surfaces messages verbatim does
// not tell an attacker which of the two failed. The errors themselves stay
// distinct; unifying them is a hardening candidate.
const uniformCredentialMessage = "email or password is incorrect"

// ErrUserNotFound is returned when no active user matches the lookup.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrSigninUserNotFound is the signin-specific not-found, carrying the
// uniform credential message.
var ErrSigninUserNotFound = errors.New(uniformCredentialMessage, errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrEmailAlreadyExists is returned when a signup or update collides with an
// active user's email. Soft-deleted rows do not collide.
var ErrEmailAlreadyExists = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials is returned when password verification fails.
var ErrInvalidCredentials = errors.New(uniformCredentialMessage, errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccessDenied is returned when the caller may not act on the target user.
var ErrAccessDenied = errors.New("access denied", errors.CategoryAuth).
	WithTextCode(TextCodeAccessDenied).
	WithCode(errors.CodeForbidden)

// ErrPasswordPolicy is returned when a password fails the policy check.
var ErrPasswordPolicy = errors.New("password does not satisfy the password policy", errors.CategoryValidation).
	WithTextCode(TextCodePasswordPolicy).
	WithCode(errors.CodeBadRequest)

// ErrInvalidRole is returned when a role value is outside the closed set.
var ErrInvalidRole = errors.New("invalid user role", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for any token that fails signature or
// structural validation. Callers never see a partial claims result.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// isUniqueViolation reports whether err is a unique-constraint failure from
// one of the supported drivers (SQLite, Postgres, MySQL). Drivers don't share
// a sentinel for this, so the message text is the contract.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "Error 1062")
}
