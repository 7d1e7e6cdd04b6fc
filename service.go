package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// IdentityService orchestrates signup, signin, reads, updates, and deletion
// against the canonical store. The cache is an optimization with no
// source-of-truth status; the deletion pipeline runs out of the request path.
type IdentityService struct {
	repo      RepositoryManager
	tokens    *TokenService
	cache     UserCache
	deletions DeletionDispatcher
	logger    Logger
	useHashID bool
}

// NewIdentityService returns a new IdentityService
func NewIdentityService(repo RepositoryManager, opts Config) *IdentityService {
	tokens := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &IdentityService{
		repo:      repo,
		tokens:    tokens,
		cache:     noopUserCache{},
		deletions: noopDispatcher{},
		logger:    defLogger{},
		useHashID: opts.GetUseHashID(),
	}
}

func (s *IdentityService) WithLogger(logger Logger) *IdentityService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithCache installs the cache-aside read path.
func (s *IdentityService) WithCache(cache UserCache) *IdentityService {
	if cache != nil {
		s.cache = cache
	}
	return s
}

// WithDeletionDispatcher installs the post-delete cleanup handoff.
func (s *IdentityService) WithDeletionDispatcher(d DeletionDispatcher) *IdentityService {
	if d != nil {
		s.deletions = d
	}
	return s
}

// TokenService returns the TokenService instance used by this service, so
// the boundary can resolve callers from bearer tokens.
func (s *IdentityService) TokenService() *TokenService {
	return s.tokens
}

// Signup creates a new user. The email must not belong to an active user;
// a soft-deleted user's email is free for reuse. No token is issued here,
// signup and signin are separate steps.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*UserDTO, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload")
	}

	user := &User{}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := s.repo.Users().ExistsActiveByEmailTx(ctx, tx, in.Email)
		if err != nil {
			return err
		}

		if exists {
			return ErrEmailAlreadyExists
		}

		hash, salt, err := NewPasswordHash(in.Password)
		if err != nil {
			return err
		}

		user.Name = in.Name
		user.Email = in.Email
		user.PasswordHash = hash
		user.Salt = salt
		user.Role = in.Role

		if s.useHashID {
			if err := s.assignDeterministicID(ctx, tx, user, in.Email); err != nil {
				return err
			}
		}

		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			if isUniqueViolation(err) {
				// The partial unique index over active emails is the
				// store-level serialization point for racing signups.
				return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
					WithTextCode(TextCodeEmailExists)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		return nil, richError(err, "signup transaction failed")
	}

	s.logger.Info("user signed up: user_id=%s", user.ID.String())

	return user.DTO(), nil
}

// assignDeterministicID derives the user id from the email. A soft-deleted
// tombstone keeps its primary key, so a taken id falls back to the random
// default the store assigns; the freed email must stay usable for signup.
func (s *IdentityService) assignDeterministicID(ctx context.Context, tx bun.IDB, user *User, email string) error {
	id, err := hashid.NewUUID(email)
	if err != nil {
		return nil
	}

	taken, err := s.repo.Users().ExistsAnyByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if !taken {
		user.ID = id
	}

	return nil
}

// Signin verifies credentials and issues a bearer token. Unknown email and
// wrong password remain distinct errors at this layer; both carry the same
// public message so the boundary response stays uniform.
func (s *IdentityService) Signin(ctx context.Context, in SigninInput) (*TokenResult, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signin payload")
	}

	user, err := s.repo.Users().GetActiveByEmail(ctx, in.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrSigninUserNotFound
		}
		return nil, richError(err, "signin lookup failed")
	}

	if !VerifyPassword(in.Password, user.Salt, user.PasswordHash) {
		s.logger.Warn("signin verification failed: user_id=%s", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, richError(err, "failed to issue token")
	}

	return &TokenResult{
		AccessToken: token,
		ExpiresIn:   s.tokens.ExpiresIn(),
	}, nil
}

// GetUser returns the public view of an active user, cache first. On a miss
// the store result repopulates the cache before returning.
func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	if dto, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("user cache read failed: user_id=%s error=%v", id.String(), err)
	} else if dto != nil {
		return dto, nil
	}

	user, err := s.repo.Users().GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := user.DTO()

	if err := s.cache.Set(ctx, dto); err != nil {
		s.logger.Warn("user cache write failed: user_id=%s error=%v", id.String(), err)
	}

	return dto, nil
}

// UpdateUser applies the provided fields to an active user; absent fields
// are left unchanged. Changing the email to one held by another active user
// fails with ErrEmailAlreadyExists.
func (s *IdentityService) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (*UserDTO, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid update payload")
	}

	user := &User{}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if user, err = s.repo.Users().GetActiveByIDTx(ctx, tx, id); err != nil {
			return err
		}

		if in.Email != nil && *in.Email != "" && *in.Email != user.Email {
			exists, err := s.repo.Users().ExistsActiveByEmailTx(ctx, tx, *in.Email)
			if err != nil {
				return err
			}
			if exists {
				return ErrEmailAlreadyExists
			}
			user.Email = *in.Email
		}

		if in.Name != nil && *in.Name != "" {
			user.Name = *in.Name
		}

		return s.repo.Users().UpdateFieldsTx(ctx, tx, user)
	})

	if err != nil {
		return nil, richError(err, "update transaction failed")
	}

	// Persist first, invalidate second. The reverse order would let a racing
	// reader repopulate the cache with the pre-update row.
	s.invalidate(ctx, id)

	return user.DTO(), nil
}

// DeleteUser soft-deletes an active user, invalidates the caches, and hands
// a deletion event to the cleanup pipeline. The handoff is fire-and-forget:
// deletion is complete once the soft delete and invalidation succeed,
// independent of the pipeline outcome.
func (s *IdentityService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user := &User{}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if user, err = s.repo.Users().GetActiveByIDTx(ctx, tx, id); err != nil {
			return err
		}

		return s.repo.Users().SoftDeleteTx(ctx, tx, id)
	})

	if err != nil {
		return richError(err, "delete transaction failed")
	}

	s.invalidate(ctx, id)

	s.deletions.Dispatch(ctx, NewUserDeletionMessage(user))

	s.logger.Info("user deleted: user_id=%s", id.String())

	return nil
}

// ListUsers returns a page of active users. The boundary gate already
// requires an admin; the check repeats here as defense in depth.
func (s *IdentityService) ListUsers(ctx context.Context, caller Caller, q ListQuery) (*Page[*UserDTO], error) {
	if err := AuthorizeAdmin(caller); err != nil {
		return nil, err
	}

	items, total, err := s.repo.Users().ListActive(ctx, q)
	if err != nil {
		return nil, err
	}

	content := make([]*UserDTO, 0, len(items))
	for _, user := range items {
		content = append(content, user.DTO())
	}

	page, size, _ := q.normalize()

	return NewPage(content, page, size, total), nil
}

// invalidate drops the single-entry key and flushes the whole listing
// family. Cache failures are logged, never surfaced: staleness is bounded
// by the entry TTL.
func (s *IdentityService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("user cache invalidation failed: user_id=%s error=%v", id.String(), err)
	}

	if err := s.cache.DeleteListings(ctx); err != nil {
		s.logger.Warn("listing cache invalidation failed: error=%v", err)
	}
}

// richError passes structured errors through untouched and wraps everything
// else as internal.
func richError(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}

type noopUserCache struct{}

func (noopUserCache) Get(context.Context, uuid.UUID) (*UserDTO, error) { return nil, nil }
func (noopUserCache) Set(context.Context, *UserDTO) error              { return nil }
func (noopUserCache) Delete(context.Context, uuid.UUID) error          { return nil }
func (noopUserCache) DeleteListings(context.Context) error             { return nil }

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, UserDeletionMessage) {}
