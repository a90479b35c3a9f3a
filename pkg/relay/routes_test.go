package relay_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
	"github.com/qsightlab/pubsub-relay/pkg/platform/gcp/blobstore"
	"github.com/qsightlab/pubsub-relay/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	Data       []byte
	Attributes map[string]string
}

type fakePublisher struct {
	mu        sync.Mutex
	calls     int
	published []capturedMessage
	err       error
	seq       int
}

func (f *fakePublisher) Publish(ctx context.Context, msg messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}

	f.published = append(f.published, capturedMessage{Data: msg.GetPayload(), Attributes: msg.GetAttributes()})
	f.seq++

	return fmt.Sprintf("msg-%d", f.seq), nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakePublisher) lastPublished(t *testing.T) capturedMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.published)

	return f.published[len(f.published)-1]
}

type fakeBlobStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeBlobStore) Store(ctx context.Context, content []byte, filename, contentType string) (blobstore.ObjectRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return blobstore.ObjectRef{}, f.err
	}

	key := uuid.NewString() + path.Ext(filename)

	return blobstore.ObjectRef{
		Filename:    filename,
		ContentType: contentType,
		StoragePath: "gs://test-bucket/" + key,
		SignedURL:   "https://storage.example.com/" + key + "?signature=abc",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func newTestApp(publisher messaging.Publisher, store relay.BlobStore) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
		JSONEncoder:   json.Marshal,
		JSONDecoder:   json.Unmarshal,
	})

	relay.RegisterRoutes(app, relay.NewService(publisher, store, "relay-app"), "Pub/Sub Service")

	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	return body
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&fakePublisher{}, &fakeBlobStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Pub/Sub Service", body["service"])
}

func TestPublishTextJSON(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	payload := `{"message": "hello relay", "attributes": {"source": "test"}}`
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["message_id"])

	published := publisher.lastPublished(t)
	assert.Equal(t, []byte("hello relay"), published.Data)
	assert.Equal(t, "test", published.Attributes["source"])
}

func TestPublishRejectsEmptyRequest(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No backend call may be attempted for an empty request.
	assert.Equal(t, 0, publisher.callCount())
}

func TestPublishRejectsEmptyMultipart(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("attributes", `{"source": "test"}`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/publish", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, publisher.callCount())
}

func TestPublishBackendFailure(t *testing.T) {
	publisher := &fakePublisher{err: fmt.Errorf("topic unavailable")}
	app := newTestApp(publisher, &fakeBlobStore{})

	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(`{"message": "hi"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["detail"], "Failed to publish message:")
	assert.Contains(t, body["detail"], "topic unavailable")
}

func TestPublishMultipartFile(t *testing.T) {
	publisher := &fakePublisher{}
	store := &fakeBlobStore{}
	app := newTestApp(publisher, store)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("attributes", `{"content_type": "text/plain", "source": "test"}`))

	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/publish", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["message_id"])

	published := publisher.lastPublished(t)

	var ref relay.FileReference
	require.NoError(t, json.Unmarshal(published.Data, &ref))
	assert.Equal(t, "report.pdf", ref.Filename)
	assert.True(t, strings.HasPrefix(ref.StoragePath, "gs://test-bucket/"))
	assert.NotEmpty(t, ref.SignedURL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), ref.URLExpiry, time.Minute)

	// Reserved keys override caller-provided values; others pass through.
	assert.Equal(t, "application/json", published.Attributes[relay.AttrContentType])
	assert.Equal(t, "file_reference", published.Attributes[relay.AttrMessageType])
	assert.Equal(t, "test", published.Attributes["source"])
}

func TestPublishDropsNestedAttributes(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	payload := `{"message": "hi", "attributes": {"flat": "ok", "nested": {"a": "b"}, "count": 3}}`
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	published := publisher.lastPublished(t)
	assert.Equal(t, map[string]string{"flat": "ok"}, published.Attributes)
}

func TestPublishRejectsMalformedAttributes(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("message", "hi"))
	require.NoError(t, writer.WriteField("attributes", `not-json`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/publish", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, publisher.callCount())
}

func TestHelloEndpoint(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/hello", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Hello, World!", body["message"])
	assert.NotEmpty(t, body["message_id"])

	published := publisher.lastPublished(t)
	assert.Equal(t, []byte("Hello, World!"), published.Data)
	assert.Equal(t, "relay-app", published.Attributes["origin"])
	assert.Equal(t, "greeting", published.Attributes["type"])
}

func TestHelloBackendFailure(t *testing.T) {
	publisher := &fakePublisher{err: fmt.Errorf("topic unavailable")}
	app := newTestApp(publisher, &fakeBlobStore{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/hello", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhookEchoesMessageId(t *testing.T) {
	app := newTestApp(&fakePublisher{}, &fakeBlobStore{})

	data := base64.StdEncoding.EncodeToString([]byte("pushed payload"))
	payload := fmt.Sprintf(`{"message": {"data": %q, "attributes": {"k": "v"}, "messageId": "push-123"}}`, data)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "push-123", body["messageId"])
}

func TestWebhookMissingMessage(t *testing.T) {
	app := newTestApp(&fakePublisher{}, &fakeBlobStore{})

	for _, payload := range []string{`{}`, `{"message": {}}`} {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload: %s", payload)
	}
}

func TestWebhookInvalidBase64(t *testing.T) {
	app := newTestApp(&fakePublisher{}, &fakeBlobStore{})

	payload := `{"message": {"data": "%%%not-base64%%%", "messageId": "push-456"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["detail"], "Error processing message:")
}

func TestConcurrentPublishesGetDistinctIds(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(publisher, &fakeBlobStore{})

	const requests = 100

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, requests)
	)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			payload := fmt.Sprintf(`{"message": "message %d"}`, n)
			req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(payload))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req, 10000)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			body := decodeBody(t, resp)

			mu.Lock()
			ids[body["message_id"].(string)] = struct{}{}
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	assert.Len(t, ids, requests)
	assert.Equal(t, requests, publisher.callCount())
}
