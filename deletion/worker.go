package deletion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	identity "github.com/goliatone/go-identity"
)

// WorkerConfig carries the broker connection and pool sizing for a Worker.
type WorkerConfig struct {
	Addr        string
	Password    string
	DB          int
	Concurrency int
}

// Worker consumes deletion events. Processing failures propagate to asynq,
// which redelivers until the retry budget runs out and then archives the
// event; the archive doubles as the dead-letter store for operators.
type Worker struct {
	server   *asynq.Server
	executor *Executor
	logger   identity.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the worker logger.
func WithWorkerLogger(logger identity.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorker builds a Worker over the broker connection. Concurrency
// defaults to DefaultConcurrency and is capped at MaxConcurrency.
func NewWorker(cfg WorkerConfig, executor *Executor, opts ...WorkerOption) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueName: 1,
			},
		},
	)

	w := &Worker{
		server:   server,
		executor: executor,
		logger:   identity.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start begins consuming in the background.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeUserDeletion, w.HandleUserDeletion)

	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start deletion worker: %w", err)
	}

	return nil
}

// Shutdown waits for in-flight events to finish.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// HandleUserDeletion decodes and runs one deletion event. A decode failure
// fails the handler, so asynq redelivers the event until the retry budget is
// exhausted and then archives it. Task-level failures inside the executor are
// already contained there and do not trigger redelivery.
func (w *Worker) HandleUserDeletion(ctx context.Context, task *asynq.Task) error {
	var msg identity.UserDeletionMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		w.logger.Error("deletion: undecodable event: %v", err)
		return fmt.Errorf("failed to decode deletion event: %w", err)
	}

	w.logger.Info("deletion: processing event for user %s (%d tasks)", msg.UserID, len(msg.Tasks))
	w.executor.Run(ctx, msg)

	return nil
}
