package identity_test

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	identity "github.com/goliatone/go-identity"
)

var testSigningKey = []byte("test-signing-key-of-decent-length")

func newTestTokenService(expiration time.Duration) *identity.TokenService {
	return identity.NewTokenService(testSigningKey, expiration, "identity.test", nil)
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	ts := newTestTokenService(time.Hour)

	userID := uuid.New()
	token, err := ts.Issue(userID, "user@example.com", identity.RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	assert.NoError(t, err)

	sub, err := claims.SubjectID()
	assert.NoError(t, err)
	assert.Equal(t, userID, sub)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, identity.RoleAdmin, claims.Role())
	assert.Equal(t, "identity.test", claims.Issuer)

	issued := claims.IssuedAt()
	expires := claims.Expires()
	assert.WithinDuration(t, time.Now(), issued, 5*time.Second)
	assert.WithinDuration(t, issued.Add(time.Hour), expires, 5*time.Second)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	// A negative TTL would be normalized away by the constructor, so issue
	// through a service whose clock has effectively passed.
	ts := newTestTokenService(time.Nanosecond)

	token, err := ts.Issue(uuid.New(), "user@example.com", identity.RoleMember)
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = ts.Validate(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrTokenExpired)
}

func TestTokenServiceRejectsTamperedToken(t *testing.T) {
	ts := newTestTokenService(time.Hour)

	token, err := ts.Issue(uuid.New(), "user@example.com", identity.RoleMember)
	assert.NoError(t, err)

	t.Run("wrong signing key", func(t *testing.T) {
		other := identity.NewTokenService([]byte("a-completely-different-key"), time.Hour, "identity.test", nil)
		_, err := other.Validate(token)
		assert.Error(t, err)

		var richErr *goerrors.Error
		assert.ErrorAs(t, err, &richErr)
		assert.Equal(t, identity.TextCodeTokenMalformed, richErr.TextCode)
	})

	t.Run("mangled payload", func(t *testing.T) {
		_, err := ts.Validate(token + "x")
		assert.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ts.Validate("not.a.token")
		assert.Error(t, err)
	})
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	minted := identity.NewTokenService(testSigningKey, time.Hour, "other.issuer", nil)

	token, err := minted.Issue(uuid.New(), "user@example.com", identity.RoleMember)
	assert.NoError(t, err)

	ts := newTestTokenService(time.Hour)
	_, err = ts.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceExpiresIn(t *testing.T) {
	tests := []struct {
		name       string
		expiration time.Duration
		want       int64
	}{
		{
			name:       "default",
			expiration: 0,
			want:       86400,
		},
		{
			name:       "custom",
			expiration: 15 * time.Minute,
			want:       900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestTokenService(tt.expiration)
			assert.Equal(t, tt.want, ts.ExpiresIn())
		})
	}
}

func TestClaimsCaller(t *testing.T) {
	ts := newTestTokenService(time.Hour)

	userID := uuid.New()
	token, err := ts.Issue(userID, "user@example.com", identity.RoleMember)
	assert.NoError(t, err)

	claims, err := ts.Validate(token)
	assert.NoError(t, err)

	caller, err := claims.Caller()
	assert.NoError(t, err)
	assert.Equal(t, userID, caller.ID)
	assert.Equal(t, "user@example.com", caller.Email)
	assert.Equal(t, identity.RoleMember, caller.Role)
}
