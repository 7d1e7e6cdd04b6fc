package identity

import (
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Field patterns carried over from the boundary contract: names allow
// Hangul, latin letters and spaces; passwords require one of each
// character class within 8 to 16 characters.
var (
	nameRx  = regexp.MustCompile(`^[가-힣a-zA-Z\s]{2,100}$`)
	emailRx = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// SignupInput is the payload for creating a new user.
type SignupInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// Validate checks every field and returns a structured list of field-level
// violations. Invoked once at the boundary before reaching the core.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required,
			validation.Match(nameRx).Error("name must be 2-100 characters of hangul, latin letters, or spaces"),
		),
		validation.Field(&in.Email,
			validation.Required,
			validation.Match(emailRx).Error("must be a valid email address"),
		),
		validation.Field(&in.Password,
			validation.Required,
			validation.By(checkPasswordPolicy),
		),
		validation.Field(&in.Role,
			validation.By(checkRole),
		),
	)
}

// SigninInput is the payload for authenticating a user.
type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects structurally invalid credentials before any store access.
func (in SigninInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email,
			validation.Required,
			validation.Match(emailRx).Error("must be a valid email address"),
		),
		validation.Field(&in.Password, validation.Required),
	)
}

// UserUpdate carries the optional fields of a partial update. Nil fields are
// left unchanged; password and role are immutable after creation.
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Validate checks only the fields that are present.
func (in UserUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Match(nameRx).Error("name must be 2-100 characters of hangul, latin letters, or spaces"),
		),
		validation.Field(&in.Email,
			validation.Match(emailRx).Error("must be a valid email address"),
		),
	)
}

// checkPasswordPolicy enforces 8-16 characters with at least one lowercase,
// uppercase, digit, and special character each.
func checkPasswordPolicy(value any) error {
	password, _ := value.(string)
	if len(password) < 8 || len(password) > 16 {
		return ErrPasswordPolicy
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !lower || !upper || !digit || !special {
		return ErrPasswordPolicy
	}

	return nil
}

func checkRole(value any) error {
	role, _ := value.(UserRole)
	if role == "" {
		return nil
	}

	if !role.IsValid() {
		return ErrInvalidRole
	}

	return nil
}
