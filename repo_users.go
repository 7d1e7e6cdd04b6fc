package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultPageSize is the listing page size when none is requested.
	DefaultPageSize = 10
	// DefaultSortField orders listings by creation time when no sort is
	// requested.
	DefaultSortField = "created_at"
)

// sortableColumns whitelists the columns a listing may be ordered by.
var sortableColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"email":      "email",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// ListQuery describes a paginated, sorted listing over active users.
type ListQuery struct {
	Page      int
	Size      int
	Sort      string
	Direction string
}

func (q ListQuery) normalize() (page, size int, orderBy string) {
	page = q.Page
	if page < 0 {
		page = 0
	}

	size = q.Size
	if size <= 0 {
		size = DefaultPageSize
	}

	column, ok := sortableColumns[q.Sort]
	if !ok {
		column = DefaultSortField
	}

	// Direction is case-insensitive and defaults to descending.
	direction := "DESC"
	if strings.EqualFold(q.Direction, "asc") {
		direction = "ASC"
	}

	return page, size, fmt.Sprintf("%s %s", column, direction)
}

// Users is the store contract for the canonical user record. All reads
// exclude soft-deleted rows; bun's soft-delete support handles the filter on
// selects and turns deletes into timestamp updates.
type Users interface {
	repository.Repository[*User]

	GetActiveByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetActiveByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	GetActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	ExistsActiveByEmail(ctx context.Context, email string) (bool, error)
	ExistsActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)
	ExistsAnyByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsAnyByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	UpdateFields(ctx context.Context, user *User) error
	UpdateFieldsTx(ctx context.Context, tx bun.IDB, user *User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	ListActive(ctx context.Context, q ListQuery) ([]*User, int64, error)
	ListActiveTx(ctx context.Context, tx bun.IDB, q ListQuery) ([]*User, int64, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository builds the Users store over a bun DB handle.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetActiveByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetActiveByIDTx(ctx, a.db, id)
}

func (a *users) GetActiveByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return record, nil
}

func (a *users) GetActiveByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetActiveByEmailTx(ctx, a.db, email)
}

func (a *users) GetActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user by email")
	}

	return record, nil
}

func (a *users) ExistsActiveByEmail(ctx context.Context, email string) (bool, error) {
	return a.ExistsActiveByEmailTx(ctx, a.db, email)
}

func (a *users) ExistsActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)

	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email existence")
	}

	return exists, nil
}

func (a *users) ExistsAnyByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.ExistsAnyByIDTx(ctx, a.db, id)
}

// ExistsAnyByIDTx includes soft-deleted rows: a tombstone still occupies its
// primary key.
func (a *users) ExistsAnyByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		WhereAllWithDeleted().
		Exists(ctx)

	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check id existence")
	}

	return exists, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) UpdateFields(ctx context.Context, user *User) error {
	return a.UpdateFieldsTx(ctx, a.db, user)
}

// UpdateFieldsTx persists the mutable fields (name, email) and refreshes
// updated_at. Soft-deleted rows are untouchable; a vanished row reports
// ErrUserNotFound.
func (a *users) UpdateFieldsTx(ctx context.Context, tx bun.IDB, user *User) error {
	now := time.Now()
	user.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(user).
		Column("name", "email", "updated_at").
		WherePK().
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return a.SoftDeleteTx(ctx, a.db, id)
}

// SoftDeleteTx marks the row deleted. bun rewrites the delete into an
// UPDATE that sets deleted_at, so the record stays around for audit.
func (a *users) SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) ListActive(ctx context.Context, q ListQuery) ([]*User, int64, error) {
	return a.ListActiveTx(ctx, a.db, q)
}

func (a *users) ListActiveTx(ctx context.Context, tx bun.IDB, q ListQuery) ([]*User, int64, error) {
	page, size, orderBy := q.normalize()

	var items []*User
	total, err := tx.NewSelect().
		Model(&items).
		Order(orderBy).
		Limit(size).
		Offset(page * size).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return items, int64(total), nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleMember
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
