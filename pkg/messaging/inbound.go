package messaging

import (
	"context"
)

// InboundMessage - read-only view of a single broker delivery.
// Lifecycle is owned by the broker: the message leaves this process's view
// once it is acked, or comes back on redelivery after a nack or timeout.
type InboundMessage struct {
	// ID - broker-assigned message id
	ID string
	// Data - message payload, already decoded from its wire encoding
	Data []byte
	// Attributes - message attributes
	Attributes map[string]string
	// DeliveryAttempt - delivery count reported by the broker, 0 when unknown
	DeliveryAttempt int
}

// Outcome - result of handling a delivered message.
type Outcome struct {
	Ack    bool
	Reason string
}

// AckOutcome - message processed, remove it from the subscription's pending set.
func AckOutcome() Outcome {
	return Outcome{Ack: true}
}

// NackOutcome - message not processed, let the broker redeliver per its policy.
func NackOutcome(reason string) Outcome {
	return Outcome{Ack: false, Reason: reason}
}

// Handler - invoked once per delivered message; the returned Outcome
// resolves the broker's ack/nack.
type Handler func(ctx context.Context, msg InboundMessage) Outcome
