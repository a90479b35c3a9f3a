package messaging

import (
	"context"
)

// Publisher - one fixed destination topic, single attempt per call.
// Publish returns the broker-assigned message id on success. There is no
// internal retry; the caller decides what to do with a failure.
type Publisher interface {
	Publish(ctx context.Context, msg Message) (string, error)
	Close() error
}
