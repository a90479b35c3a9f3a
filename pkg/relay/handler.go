package relay

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
)

// HandleMessage processes one delivered message: it validates the payload as
// UTF-8 text, logs content and attributes, and resolves the ack/nack outcome.
// The broker redelivers on nack, so the side effect here must stay idempotent.
func HandleMessage(ctx context.Context, msg messaging.InboundMessage) messaging.Outcome {
	if !utf8.Valid(msg.Data) {
		return messaging.NackOutcome(fmt.Sprintf("message %s payload is not valid UTF-8", msg.ID))
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Received message %s: %s", msg.ID, string(msg.Data)))

	if len(msg.Attributes) > 0 {
		attrs, err := json.Marshal(msg.Attributes)
		if err == nil {
			logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Attributes: %s", attrs))
		}
	}

	return messaging.AckOutcome()
}
