package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds identity options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetUseHashID() bool
}

// UserCache is the cache-aside store for public user views. Implementations
// must treat every failure as soft: a cache error degrades to a store read,
// it never fails the request.
type UserCache interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Set(ctx context.Context, user *UserDTO) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteListings(ctx context.Context) error
}

// DeletionDispatcher hands a deletion event off for asynchronous cleanup.
// Dispatch is fire-and-forget from the caller's perspective; implementations
// own the delivery guarantee (including any synchronous fallback).
type DeletionDispatcher interface {
	Dispatch(ctx context.Context, msg UserDeletionMessage)
}

// DeletionTask identifies one independent cleanup task inside a deletion
// event. Tasks execute in declaration order and each must be idempotent,
// since delivery is at-least-once.
type DeletionTask string

const (
	TaskCacheCleanup      DeletionTask = "CACHE_CLEANUP"
	TaskDataAnonymization DeletionTask = "DATA_ANONYMIZATION"
)

// UserDeletionMessage is the event published after a user is soft-deleted.
type UserDeletionMessage struct {
	UserID       uuid.UUID      `json:"user_id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	DeletionTime time.Time      `json:"deletion_time"`
	Tasks        []DeletionTask `json:"tasks"`
}

// NewUserDeletionMessage builds a deletion event with the default task set.
func NewUserDeletionMessage(user *User) UserDeletionMessage {
	return UserDeletionMessage{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		DeletionTime: time.Now(),
		Tasks:        []DeletionTask{TaskCacheCleanup, TaskDataAnonymization},
	}
}

// TokenResult is the signin response payload.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// DefaultLogger returns the stdout fallback logger used when no logger is
// provided.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
