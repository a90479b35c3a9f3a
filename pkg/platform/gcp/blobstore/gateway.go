package blobstore

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/qsightlab/pubsub-relay/pkg/errorx"
)

// ObjectRef - locator and time-bounded access URL for one stored object.
type ObjectRef struct {
	Filename    string
	ContentType string
	// StoragePath - "gs://<bucket>/<key>"
	StoragePath string
	SignedURL   string
	Expiry      time.Time
}

// Gateway - uploads byte payloads under generated unique keys and returns
// signed, time-bounded read URLs. Single attempt per call; errors surface
// to the caller as StorageError.
type Gateway struct {
	client    *storage.Client
	bucket    string
	signedTTL time.Duration
}

// NewGateway - Gateway constructor.
func NewGateway(client *storage.Client, bucket string, signedTTL time.Duration) *Gateway {
	return &Gateway{client: client, bucket: bucket, signedTTL: signedTTL}
}

// Store - upload content synchronously and return the storage locator plus a
// signed read URL valid for the configured window.
func (g *Gateway) Store(ctx context.Context, content []byte, filename, contentType string) (ObjectRef, error) {
	key := objectKey(filename)

	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		return ObjectRef{}, errorx.NewStorageErrorWrapper(err, "uploading object %s to bucket %s", key, g.bucket)
	}

	if err := writer.Close(); err != nil {
		return ObjectRef{}, errorx.NewStorageErrorWrapper(err, "uploading object %s to bucket %s", key, g.bucket)
	}

	expiry := time.Now().Add(g.signedTTL)

	signedURL, err := g.client.Bucket(g.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expiry,
	})
	if err != nil {
		return ObjectRef{}, errorx.NewStorageErrorWrapper(err, "signing URL for object %s", key)
	}

	return ObjectRef{
		Filename:    filename,
		ContentType: contentType,
		StoragePath: fmt.Sprintf("gs://%s/%s", g.bucket, key),
		SignedURL:   signedURL,
		Expiry:      expiry,
	}, nil
}

// objectKey generates a collision-free key, keeping the original file
// extension when one is present.
func objectKey(filename string) string {
	return uuid.NewString() + path.Ext(filename)
}
