package deletion

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	identity "github.com/goliatone/go-identity"
)

// enqueuer is the slice of asynq.Client the publisher uses; tests fake it.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher dispatches deletion events to the queue. When the broker is
// down the cleanup runs inline on the caller's goroutine instead, so the
// soft delete that triggered it is never left half finished. Inline
// execution forfeits redelivery, which the idempotent tasks tolerate.
type Publisher struct {
	client   enqueuer
	fallback *Executor
	logger   identity.Logger

	maxRetry   int
	messageTTL time.Duration
	retention  time.Duration
}

var _ identity.DeletionDispatcher = (*Publisher)(nil)

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the publisher logger.
func WithPublisherLogger(logger identity.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxRetry overrides the redelivery budget.
func WithMaxRetry(n int) PublisherOption {
	return func(p *Publisher) {
		if n >= 0 {
			p.maxRetry = n
		}
	}
}

// WithMessageTTL overrides the queue-residency bound.
func WithMessageTTL(ttl time.Duration) PublisherOption {
	return func(p *Publisher) {
		if ttl > 0 {
			p.messageTTL = ttl
		}
	}
}

// NewPublisher builds a Publisher over an asynq client. The fallback
// executor is required: it is what keeps deletes consistent when the broker
// is unreachable.
func NewPublisher(client *asynq.Client, fallback *Executor, opts ...PublisherOption) *Publisher {
	return newPublisher(client, fallback, opts...)
}

func newPublisher(client enqueuer, fallback *Executor, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:     client,
		fallback:   fallback,
		logger:     identity.DefaultLogger(),
		maxRetry:   DefaultMaxRetry,
		messageTTL: MessageTTL,
		retention:  DefaultRetention,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Dispatch enqueues the deletion event. Enqueue failures do not propagate:
// the cleanup runs synchronously instead and the outcome is logged.
func (p *Publisher) Dispatch(ctx context.Context, msg identity.UserDeletionMessage) {
	task, err := NewTask(msg)
	if err != nil {
		p.logger.Error("deletion: failed to encode event for user %s, running inline: %v", msg.UserID, err)
		p.fallback.Run(ctx, msg)
		return
	}

	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueName),
		asynq.MaxRetry(p.maxRetry),
		asynq.Deadline(time.Now().Add(p.messageTTL)),
		asynq.Retention(p.retention),
	)
	if err != nil {
		p.logger.Warn("deletion: enqueue failed for user %s, running inline: %v", msg.UserID, err)
		p.fallback.Run(ctx, msg)
		return
	}

	p.logger.Debug("deletion: event enqueued for user %s", msg.UserID)
}
