package messaging

// Message - outbound message payload interface.
type Message interface {
	GetMsgRefId() string
	GetPayload() []byte
	GetAttributes() map[string]string
}

// MsgPayload - MsgPayload model implementing Message interface.
type MsgPayload struct {
	// MessageId - broker message id, empty until assigned on publish
	MessageId string
	// Data - message payload
	Data []byte
	// Attributes - flat string-to-string attribute map
	Attributes map[string]string
}

// GetMsgRefId - Get message id
func (msg *MsgPayload) GetMsgRefId() string {
	return msg.MessageId
}

// GetPayload - Get message payload
func (msg *MsgPayload) GetPayload() []byte {
	return msg.Data
}

// GetAttributes - Get message attributes
func (msg *MsgPayload) GetAttributes() map[string]string {
	return msg.Attributes
}
