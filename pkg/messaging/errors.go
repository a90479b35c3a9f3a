//nolint:all
package messaging

import "fmt"

// ErrorCode - error code enum.
type ErrorCode int

const (
	ErrorPublisherClosed ErrorCode = iota
	ErrorInitializingPubsubClient
	ErrorSerializingJsonMessage
	ErrorClosingPubsubClient
	ErrorSubscriptionSetup
)

var errorMessages = map[ErrorCode]string{
	ErrorPublisherClosed:          "error Publisher is already closed",
	ErrorInitializingPubsubClient: "error initializing Broker Client",
	ErrorSerializingJsonMessage:   "error serializing json message",
	ErrorClosingPubsubClient:      "error closing pubsub client",
	ErrorSubscriptionSetup:        "error setting up subscription",
}

// Error - General PubSub Error.
type Error struct {
	message string
	err     error
}

// NewMessagingErrorCode - MessagingError constructor given a predefined Error Code.
func NewMessagingErrorCode(code ErrorCode, err error) *Error {
	return &Error{message: errorMessages[code], err: err}
}

// NewMessagingError - NewMessagingError constructor.
func NewMessagingError(err error, msg string, args ...any) *Error {
	return &Error{message: fmt.Sprintf(msg, args...), err: err}
}

func (ge *Error) Error() string {
	if ge.err != nil {
		return fmt.Sprintf("%s: %v", ge.message, ge.err)
	}

	return ge.message
}
