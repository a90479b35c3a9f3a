package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EnsureSubscription binds subID to topicID, creating the subscription only when
// it is actually absent. An error from the existence check is surfaced as a
// SubscriptionSetupError rather than being taken as "not found": a permission or
// network failure during lookup must not trigger a blind create.
func EnsureSubscription(ctx context.Context, client *pubsub.Client, topicID, subID string) (*pubsub.Subscription, error) {
	sub := client.Subscription(subID)

	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, errorx.NewSubscriptionSetupErrorWrapper(err, "checking subscription %s", subID)
	}

	if exists {
		logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Subscription %s already exists", subID))
		return sub, nil
	}

	_, err = client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{Topic: client.Topic(topicID)})
	if err != nil {
		// Lost a create race against another instance; the binding is in place.
		if status.Code(err) == codes.AlreadyExists {
			return sub, nil
		}

		return nil, errorx.NewSubscriptionSetupErrorWrapper(err, "creating subscription %s for topic %s", subID, topicID)
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Subscription %s created for topic %s", subID, topicID))

	return sub, nil
}
