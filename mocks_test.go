package identity_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	identity "github.com/goliatone/go-identity"
)

// MockUsers implements the store methods the service exercises; the embedded
// interface satisfies the rest and panics if anything unexpected is called.
type MockUsers struct {
	identity.Users
	mock.Mock
}

func (m *MockUsers) GetActiveByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) GetActiveByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) GetActiveByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) ExistsActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) ExistsAnyByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *identity.User) (*identity.User, error) {
	args := m.Called(ctx, tx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUsers) UpdateFieldsTx(ctx context.Context, tx bun.IDB, user *identity.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) ListActive(ctx context.Context, q identity.ListQuery) ([]*identity.User, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

// MockRepoManager runs transaction bodies inline against a zero tx handle;
// the mocked store ignores the handle entirely.
type MockRepoManager struct {
	users *MockUsers
}

func newMockRepoManager() *MockRepoManager {
	return &MockRepoManager{users: &MockUsers{}}
}

func (m *MockRepoManager) Validate() error { return nil }
func (m *MockRepoManager) MustValidate()   {}

func (m *MockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepoManager) Users() identity.Users { return m.users }

// recordingCache captures cache traffic in call order.
type recordingCache struct {
	entries map[uuid.UUID]*identity.UserDTO
	ops     []string

	getErr error
	setErr error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[uuid.UUID]*identity.UserDTO{}}
}

func (c *recordingCache) Get(ctx context.Context, id uuid.UUID) (*identity.UserDTO, error) {
	c.ops = append(c.ops, "get")
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[id], nil
}

func (c *recordingCache) Set(ctx context.Context, user *identity.UserDTO) error {
	c.ops = append(c.ops, "set")
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[user.ID] = user
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, id uuid.UUID) error {
	c.ops = append(c.ops, "delete")
	delete(c.entries, id)
	return nil
}

func (c *recordingCache) DeleteListings(ctx context.Context) error {
	c.ops = append(c.ops, "delete_listings")
	return nil
}

// recordingDispatcher captures deletion events.
type recordingDispatcher struct {
	messages []identity.UserDeletionMessage
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg identity.UserDeletionMessage) {
	d.messages = append(d.messages, msg)
}

// captureLogger renders every call the way defLogger would and keeps the
// result, so tests can assert on the final line.
type captureLogger struct {
	lines []string
}

func (l *captureLogger) logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Debug(format string, args ...any) { l.logf(format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.logf(format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.logf(format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.logf(format, args...) }

// testConfig is a minimal static identity.Config.
type testConfig struct {
	signingKey string
	expiration time.Duration
	issuer     string
	useHashID  bool
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key-of-decent-length",
		expiration: 24 * time.Hour,
		issuer:     "identity.test",
	}
}

func (c testConfig) GetSigningKey() string             { return c.signingKey }
func (c testConfig) GetTokenExpiration() time.Duration { return c.expiration }
func (c testConfig) GetIssuer() string                 { return c.issuer }
func (c testConfig) GetUseHashID() bool                { return c.useHashID }
