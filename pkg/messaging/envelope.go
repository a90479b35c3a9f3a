package messaging

// PushEnvelope - wrapped payload of a Pub/Sub push delivery.
//
// Source: https://cloud.google.com/pubsub/docs/payload-unwrapping#wrapped-message
type PushEnvelope struct {
	Message      *PushMessage `json:"message" validate:"required"`
	Subscription string       `json:"subscription"`
}

// PushMessage - the message body in the PushEnvelope. Data is base64-encoded.
type PushMessage struct {
	Data       string            `json:"data"`
	Attributes map[string]string `json:"attributes"`
	MessageId  string            `json:"messageId"`
}
