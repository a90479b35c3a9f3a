package relay

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
	"github.com/qsightlab/pubsub-relay/pkg/platform/gcp/blobstore"
)

// Reserved attribute keys the relay may override on outbound messages.
const (
	AttrContentType = "content_type"
	AttrMessageType = "message_type"

	messageTypeFileReference = "file_reference"

	helloMessage = "Hello, World!"
)

// BlobStore - the slice of the blob store gateway the relay depends on.
type BlobStore interface {
	Store(ctx context.Context, content []byte, filename, contentType string) (blobstore.ObjectRef, error)
}

// FileReference - outbound payload for a file-attached publish. The file
// itself lives in the blob store; only this reference travels on the topic.
type FileReference struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"storage_path"`
	SignedURL   string    `json:"signed_url"`
	URLExpiry   time.Time `json:"url_expiry"`
}

// Service - the relay's outbound operations. Clients are injected once at
// startup and shared; the Service itself holds no mutable state.
type Service struct {
	publisher messaging.Publisher
	store     BlobStore
	origin    string
}

// NewService - Service constructor.
func NewService(publisher messaging.Publisher, store BlobStore, origin string) *Service {
	return &Service{publisher: publisher, store: store, origin: origin}
}

// PublishText - publish the UTF-8 encoding of text with the given attributes.
func (s *Service) PublishText(ctx context.Context, text string, attributes map[string]string) (string, error) {
	if text == "" {
		return "", errorx.NewValidationError("message must not be empty")
	}

	return s.publisher.Publish(ctx, &messaging.MsgPayload{
		Data:       []byte(text),
		Attributes: attributes,
	})
}

// PublishFile - upload the file content to the blob store and publish a
// FileReference payload pointing at it. The reserved content_type and
// message_type attributes are injected, overriding caller-provided values.
func (s *Service) PublishFile(ctx context.Context, content []byte, filename, contentType string, attributes map[string]string) (string, error) {
	ref, err := s.store.Store(ctx, content, filename, contentType)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(FileReference{
		Filename:    ref.Filename,
		ContentType: ref.ContentType,
		StoragePath: ref.StoragePath,
		SignedURL:   ref.SignedURL,
		URLExpiry:   ref.Expiry,
	})
	if err != nil {
		return "", messaging.NewMessagingErrorCode(messaging.ErrorSerializingJsonMessage, err)
	}

	merged := make(map[string]string, len(attributes)+2)
	for key, value := range attributes {
		merged[key] = value
	}
	merged[AttrContentType] = "application/json"
	merged[AttrMessageType] = messageTypeFileReference

	return s.publisher.Publish(ctx, &messaging.MsgPayload{
		Data:       payload,
		Attributes: merged,
	})
}

// PublishHello - publish the fixed greeting message.
func (s *Service) PublishHello(ctx context.Context) (string, error) {
	return s.publisher.Publish(ctx, &messaging.MsgPayload{
		Data: []byte(helloMessage),
		Attributes: map[string]string{
			"origin": s.origin,
			"type":   "greeting",
		},
	})
}
