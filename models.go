package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the canonical user record. Rows are never physically removed:
// deleting a user sets DeletedAt, and bun's soft-delete support keeps
// deleted rows out of every read path automatically. Email uniqueness is
// enforced by a partial unique index over active rows only, so a deleted
// user's email may be reused by a new signup.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Salt          string     `bun:"salt,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// DTO returns the public view of the user: no password hash, no salt.
func (u *User) DTO() *UserDTO {
	dto := &UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}

	if u.CreatedAt != nil {
		dto.CreatedAt = *u.CreatedAt
	}

	if u.UpdatedAt != nil {
		dto.UpdatedAt = *u.UpdatedAt
	}

	return dto
}

// UserDTO is the public user view used by read responses and the cache.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is the envelope returned by paginated listings.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage derives the envelope bookkeeping from the raw listing result.
func NewPage[T any](content []T, page, size int, total int64) *Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return &Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
