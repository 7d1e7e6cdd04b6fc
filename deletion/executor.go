package deletion

import (
	"context"

	identity "github.com/goliatone/go-identity"
)

// Anonymizer scrubs personal data from a deleted user's record. It must be
// idempotent: events are delivered at least once.
type Anonymizer interface {
	Anonymize(ctx context.Context, msg identity.UserDeletionMessage) error
}

// Executor runs the cleanup tasks carried by a deletion event, in the order
// the event declares them. A failing task is logged and skipped so the
// remaining tasks still run; redelivery retries the whole set, which is safe
// because every task is idempotent.
type Executor struct {
	cache      identity.UserCache
	anonymizer Anonymizer
	logger     identity.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the executor logger.
func WithExecutorLogger(logger identity.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor builds an Executor over the cache and anonymizer.
func NewExecutor(cache identity.UserCache, anonymizer Anonymizer, opts ...ExecutorOption) *Executor {
	e := &Executor{
		cache:      cache,
		anonymizer: anonymizer,
		logger:     identity.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes the event's tasks in declared order. Task failures are
// swallowed after logging; only the broker-level handler decides whether an
// event is redelivered.
func (e *Executor) Run(ctx context.Context, msg identity.UserDeletionMessage) {
	for _, task := range msg.Tasks {
		if err := e.runTask(ctx, task, msg); err != nil {
			e.logger.Error("deletion: task %s failed for user %s: %v", task, msg.UserID, err)
			continue
		}
		e.logger.Info("deletion: task %s completed for user %s", task, msg.UserID)
	}
}

func (e *Executor) runTask(ctx context.Context, task identity.DeletionTask, msg identity.UserDeletionMessage) error {
	switch task {
	case identity.TaskCacheCleanup:
		return e.cleanCache(ctx, msg)
	case identity.TaskDataAnonymization:
		return e.anonymizer.Anonymize(ctx, msg)
	default:
		e.logger.Warn("deletion: skipping unknown task %s for user %s", task, msg.UserID)
		return nil
	}
}

// cleanCache drops the user's cache entry and flushes listings. Both
// operations are no-ops when the keys are already gone.
func (e *Executor) cleanCache(ctx context.Context, msg identity.UserDeletionMessage) error {
	if err := e.cache.Delete(ctx, msg.UserID); err != nil {
		return err
	}
	return e.cache.DeleteListings(ctx)
}
