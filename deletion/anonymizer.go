package deletion

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	identity "github.com/goliatone/go-identity"
)

// anonymizedName replaces the user's display name once scrubbed.
const anonymizedName = "Deleted User"

// LoggingAnonymizer records the scrub without touching any store. It is the
// default collaborator for deployments where the user record itself is the
// only PII holder and the soft delete already hides it.
type LoggingAnonymizer struct {
	Logger identity.Logger
}

var _ Anonymizer = (*LoggingAnonymizer)(nil)

func (a *LoggingAnonymizer) Anonymize(ctx context.Context, msg identity.UserDeletionMessage) error {
	logger := a.Logger
	if logger == nil {
		logger = identity.DefaultLogger()
	}
	logger.Info("deletion: anonymized data for user %s", msg.UserID)
	return nil
}

// RecordAnonymizer scrubs personal data from the soft-deleted row: the name
// is replaced, the email is rewritten to a tombstone derived from the user
// id, and the credential material is cleared. Re-running it rewrites the same
// values, so redelivery is harmless.
type RecordAnonymizer struct {
	db *bun.DB
}

var _ Anonymizer = (*RecordAnonymizer)(nil)

// NewRecordAnonymizer builds a RecordAnonymizer over a bun DB handle.
func NewRecordAnonymizer(db *bun.DB) *RecordAnonymizer {
	return &RecordAnonymizer{db: db}
}

// Anonymize scrubs the deleted row. Active rows are never touched; if the
// row is still active the event raced the delete and the next delivery will
// find it tombstoned.
func (a *RecordAnonymizer) Anonymize(ctx context.Context, msg identity.UserDeletionMessage) error {
	now := time.Now()
	user := &identity.User{
		ID:           msg.UserID,
		Name:         anonymizedName,
		Email:        "deleted:" + msg.UserID.String(),
		PasswordHash: "",
		Salt:         "",
		UpdatedAt:    &now,
	}

	_, err := a.db.NewUpdate().
		Model(user).
		Column("name", "email", "password_hash", "salt", "updated_at").
		WherePK().
		WhereDeleted().
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to anonymize user record")
	}

	return nil
}
