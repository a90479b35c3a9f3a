package pubsub

import (
	"context"
	"sync/atomic"

	"cloud.google.com/go/pubsub"
	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
)

// TopicPublisher - messaging.Publisher implementation bound to one fixed topic.
// Each Publish is a single synchronous attempt; there is no internal retry.
type TopicPublisher struct {
	topic  *pubsub.Topic
	closed atomic.Bool
}

// NewTopicPublisher - TopicPublisher constructor. The topicID must be a short ID.
func NewTopicPublisher(client *pubsub.Client, topicID string) *TopicPublisher {
	return &TopicPublisher{topic: client.Topic(topicID)}
}

// Publish - send the message payload and attributes to the bound topic and
// wait for the broker-assigned message id.
func (p *TopicPublisher) Publish(ctx context.Context, msg messaging.Message) (string, error) {
	if p.closed.Load() {
		return "", messaging.NewMessagingErrorCode(messaging.ErrorPublisherClosed, nil)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       msg.GetPayload(),
		Attributes: msg.GetAttributes(),
	})

	messageId, err := result.Get(ctx)
	if err != nil {
		return "", errorx.NewPublishErrorWrapper(err, "publishing to topic %s", p.topic.String())
	}

	return messageId, nil
}

// Close - stop the topic's publish goroutines and flush pending messages.
// The shared client is closed by the process owner, not here.
func (p *TopicPublisher) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		p.topic.Stop()
	}

	return nil
}
