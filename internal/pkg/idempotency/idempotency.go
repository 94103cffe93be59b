// Package idempotency guards operations against duplicate execution using a
// redis SetNX state machine keyed by caller-supplied idempotency keys.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrAlreadyInProgress means another worker holds the key.
	ErrAlreadyInProgress = errors.New("operation already in progress")
	// ErrAlreadyCompleted means the operation finished earlier.
	ErrAlreadyCompleted = errors.New("operation already completed")
	// ErrAlreadyFailed means a previous attempt failed and the failure state
	// has not expired yet.
	ErrAlreadyFailed = errors.New("operation already failed")
	// ErrInvalidState means the stored state is unrecognized.
	ErrInvalidState = errors.New("invalid state")
)

// State is the lifecycle of an idempotency key.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateError      State = "error"
)

func (s State) String() string { return string(s) }

// Idempotency coordinates exactly-once-ish execution across workers.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lock time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// Option tunes Exec behavior.
type Option func(*execOptions)

// WithLockDuration sets how long the in-progress lock lives.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long terminal states (completed/failed) live.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// StateTracker is the redis-backed implementation.
type StateTracker struct {
	client *redis.Client
	prefix string
}

// New returns a StateTracker on the given client.
func New(client *redis.Client) *StateTracker {
	return &StateTracker{client: client, prefix: "idempotency:"}
}

// Acquire attempts to claim key. StateNone means the caller may proceed.
func (s *StateTracker) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	fk := s.prefix + key

	acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lock).Result()
	if err != nil {
		return StateError, err
	}
	if acquired {
		return StateNone, nil
	}

	current, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// Key expired between SetNX and Get; try once more.
		acquired, err = s.client.SetNX(ctx, fk, StateInProgress.String(), lock).Result()
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}
		return StateError, ErrInvalidState
	}
	if err != nil {
		return StateError, err
	}

	switch State(current) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(current), nil
	default:
		return StateError, ErrInvalidState
	}
}

// MarkCompleted records a successful run.
func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateCompleted.String(), ttl).Err()
}

// MarkFailed records a failed run.
func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateFailed.String(), ttl).Err()
}

// Exec runs fn at most once per key: it acquires the key, runs fn, then
// stores the terminal state. Duplicate calls get the ErrAlready* sentinels.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	eo := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(eo)
	}
	if eo.lockDuration <= 0 {
		eo.lockDuration = defaultLockDuration
	}
	if eo.stateTTL <= 0 {
		eo.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, eo.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		if markErr := s.MarkFailed(ctx, key, eo.stateTTL); markErr != nil {
			return markErr
		}
		return err
	}
	return s.MarkCompleted(ctx, key, eo.stateTTL)
}
