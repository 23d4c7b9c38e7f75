package comm

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypeCancelled is the error type returned when a long running build is
// stopped through its Communicator.
const ErrTypeCancelled = "cancelled"

// Communicator is polled by long running builds.
type Communicator interface {
	// Reports whether the build should stop.
	IsCancelled() bool

	// Reports how many items have been processed so far.
	PostProgress(current int)
}

// Cancelled returns the error long running builds return when they stop
// because their Communicator was cancelled.
func Cancelled(operation string) error {
	return errors.New("operation cancelled").
		WithType(ErrTypeCancelled).
		WithTag("operation", operation)
}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	return errors.IsType(err, ErrTypeCancelled)
}

// Check returns a cancellation error when c is cancelled. A nil
// Communicator is never cancelled.
func Check(c Communicator, operation string) error {
	if c != nil && c.IsCancelled() {
		return Cancelled(operation)
	}
	return nil
}

// Post forwards progress to c when it is not nil.
func Post(c Communicator, current int) {
	if c != nil {
		c.PostProgress(current)
	}
}

// ContextCommunicator is a Communicator cancelled together with a context.
// Progress is forwarded to OnProgress at most once per Interval.
type ContextCommunicator struct {
	OnProgress func(current int)
	Interval   time.Duration

	ctx          context.Context
	mutex        sync.Mutex
	lastProgress time.Time
}

func New(ctx context.Context, onProgress func(current int)) *ContextCommunicator {
	return &ContextCommunicator{
		OnProgress: onProgress,
		Interval:   time.Millisecond * 500,
		ctx:        ctx,
	}
}

func (c *ContextCommunicator) IsCancelled() bool {
	return c.ctx.Err() != nil
}

func (c *ContextCommunicator) PostProgress(current int) {
	if c.OnProgress == nil {
		return
	}

	c.mutex.Lock()
	now := time.Now()
	if now.Sub(c.lastProgress) < c.Interval {
		c.mutex.Unlock()
		return
	}
	c.lastProgress = now
	c.mutex.Unlock()

	c.OnProgress(current)
}
