package relay

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
	"github.com/qsightlab/pubsub-relay/pkg/validator"
)

// Router - HTTP ingress over the relay Service.
type Router struct {
	service     *Service
	validator   *validator.Validator
	serviceName string
}

// RegisterRoutes - mount the relay's HTTP surface on the given fiber app.
func RegisterRoutes(app *fiber.App, service *Service, serviceName string) {
	router := &Router{
		service:     service,
		validator:   validator.NewValidator(),
		serviceName: serviceName,
	}

	app.Get("/", router.health)
	app.Post("/publish", router.publish)
	app.Post("/hello", router.hello)
	app.Post("/webhook", router.webhook)
}

type publishRequest struct {
	Message    string                 `json:"message"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (r *Router) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "service": r.serviceName})
}

func (r *Router) publish(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		text       string
		attributes map[string]string
		fileHeader *multipart.FileHeader
	)

	if form, err := c.MultipartForm(); err == nil && form != nil {
		text = c.FormValue("message")

		attributes, err = ParseAttributes(ctx, c.FormValue("attributes"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
		}

		if files := form.File["file"]; len(files) > 0 {
			fileHeader = files[0]
		}
	} else {
		var request publishRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&request); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid request body"})
			}
		}

		text = request.Message
		attributes = FlattenAttributes(ctx, request.Attributes)
	}

	if text == "" && fileHeader == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Either message or file must be provided"})
	}

	var (
		messageId string
		err       error
	)

	if fileHeader != nil {
		content, readErr := readUpload(fileHeader)
		if readErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": fmt.Sprintf("Unable to read uploaded file: %v", readErr)})
		}

		messageId, err = r.service.PublishFile(ctx, content, fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), attributes)
	} else {
		messageId, err = r.service.PublishText(ctx, text, attributes)
	}

	if err != nil {
		logx.GetLogger().LogError(ctx, "Publish request failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": fmt.Sprintf("Failed to publish message: %v", err)})
	}

	return c.JSON(fiber.Map{"success": true, "message_id": messageId})
}

func (r *Router) hello(c *fiber.Ctx) error {
	ctx := c.UserContext()

	messageId, err := r.service.PublishHello(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Hello publish failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": fmt.Sprintf("Failed to publish hello message: %v", err)})
	}

	return c.JSON(fiber.Map{"success": true, "message": helloMessage, "message_id": messageId})
}

// webhook - push-delivery endpoint: the broker calls this directly instead of
// going through the subscribe loop, so decode-and-log happens inline.
func (r *Router) webhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var envelope messaging.PushEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid Pub/Sub message format"})
	}

	if errs := r.validator.ValidateStruct(envelope); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid Pub/Sub message format"})
	}

	pushed := envelope.Message
	if pushed.Data == "" && pushed.MessageId == "" && len(pushed.Attributes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid Pub/Sub message format"})
	}

	data, err := base64.StdEncoding.DecodeString(pushed.Data)
	if err != nil {
		decodeErr := errorx.NewDecodeErrorWrapper(err, "decoding push message data")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": fmt.Sprintf("Error processing message: %v", decodeErr)})
	}

	if !utf8.Valid(data) {
		decodeErr := errorx.NewDecodeError("push message payload is not valid UTF-8")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": fmt.Sprintf("Error processing message: %v", decodeErr)})
	}

	outcome := HandleMessage(ctx, messaging.InboundMessage{
		ID:         pushed.MessageId,
		Data:       data,
		Attributes: pushed.Attributes,
	})
	if !outcome.Ack {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": fmt.Sprintf("Error processing message: %s", outcome.Reason)})
	}

	return c.JSON(fiber.Map{"success": true, "messageId": pushed.MessageId})
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
