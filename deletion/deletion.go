// Package deletion implements the asynchronous cleanup pipeline that runs
// after a user is soft deleted. Events are published to an asynq queue and
// processed at-least-once by a worker pool; when the broker is unreachable
// the publisher degrades to running the cleanup inline so a delete never
// leaves stale state behind.
package deletion

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	identity "github.com/goliatone/go-identity"
)

const (
	// TaskTypeUserDeletion is the asynq task type for user cleanup events.
	TaskTypeUserDeletion = "user:deletion"
	// QueueName is the asynq queue the pipeline runs on.
	QueueName = "user_deletion"

	// MessageTTL bounds how long an event may sit in the queue before it is
	// considered expired and sent to the archive.
	MessageTTL = 5 * time.Minute

	// DefaultMaxRetry is how many redeliveries a failing event gets before
	// asynq archives it. The archive is the pipeline's dead-letter store.
	DefaultMaxRetry = 3

	// DefaultRetention keeps completed events inspectable for a day.
	DefaultRetention = 24 * time.Hour

	// DefaultConcurrency matches the steady-state worker count.
	DefaultConcurrency = 3
	// MaxConcurrency caps worker bursts under backlog.
	MaxConcurrency = 10
)

// NewTask encodes a deletion event as an asynq task.
func NewTask(msg identity.UserDeletionMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeUserDeletion, payload), nil
}
