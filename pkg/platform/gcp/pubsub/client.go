package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
	"google.golang.org/api/option"
)

// NewClient - create the Pub/Sub client shared by publisher and listener.
// The underlying SDK client is safe for concurrent use; the relay adds no locking.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, messaging.NewMessagingErrorCode(messaging.ErrorInitializingPubsubClient, err)
	}

	return client, nil
}
