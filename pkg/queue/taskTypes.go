package queue

import (
	"context"
)

// Queue is the transport-agnostic task queue contract.
// Subscribe blocks until ctx is cancelled or the queue is closed.
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler func(*Task) error) error
	HealthCheck(ctx context.Context) error
	Close() error
}
