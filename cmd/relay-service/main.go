package main

import (
	"context"
	"log"
	"time"

	cloudpubsub "cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/qsightlab/pubsub-relay/pkg/configx"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"github.com/qsightlab/pubsub-relay/pkg/platform/gcp/blobstore"
	gcppubsub "github.com/qsightlab/pubsub-relay/pkg/platform/gcp/pubsub"
	"github.com/qsightlab/pubsub-relay/pkg/relay"
	"github.com/qsightlab/pubsub-relay/pkg/serverx/fibersrv"
	"github.com/qsightlab/pubsub-relay/pkg/shutdown"
)

// ShutdownTimeoutMilli - timeout for cleaning up resources before shutting down the server.
const ShutdownTimeoutMilli = 5000

type ServiceConfig struct {
	configx.BaseConfig `mapstructure:",squash"`
}

func main() {
	rootCtx := context.Background()

	config := loadConfiguration()

	logx.SetupLogger(config)

	pubsubClient, err := gcppubsub.NewClient(rootCtx, config.GetGcpConfig().ProjectId)
	if err != nil {
		logx.GetLogger().LogFatal(rootCtx, "Error creating Pub/Sub client", err)
	}

	storageClient, err := storage.NewClient(rootCtx)
	if err != nil {
		logx.GetLogger().LogFatal(rootCtx, "Error creating storage client", err)
	}

	publisher := gcppubsub.NewTopicPublisher(pubsubClient, configx.ShortTopicID(config.GetPubSubConfig().PublishingTopic))

	gateway := blobstore.NewGateway(
		storageClient,
		config.GetStorageConfig().Bucket,
		time.Duration(config.GetStorageConfig().SignedUrlTTLMinutes)*time.Minute,
	)

	service := relay.NewService(publisher, gateway, config.GetServiceName())

	listenerCtx, cancelListener := context.WithCancel(rootCtx)
	defer cancelListener()

	listener := startListener(listenerCtx, config, pubsubClient)

	serverManager := fibersrv.NewFiberServer(config)

	// Setup Routes
	serverManager.Setup(rootCtx, func(appServer *fiber.App) {
		relay.RegisterRoutes(appServer, service, config.GetServiceName())
	})

	// Start server
	serverManager.RunAsync()

	shutdown.WaitForShutdown(rootCtx, ShutdownTimeoutMilli, func(timeoutCtx context.Context) {
		// Stop accepting new deliveries before closing the broker clients,
		// so in-flight acknowledgments are not silently dropped.
		cancelListener()

		if listener != nil {
			select {
			case <-listener.Done():
			case <-timeoutCtx.Done():
			}
		}

		_ = publisher.Close()

		if err := pubsubClient.Close(); err != nil {
			logx.GetLogger().LogError(timeoutCtx, "Error closing Pub/Sub client", err)
		}

		if err := storageClient.Close(); err != nil {
			logx.GetLogger().LogError(timeoutCtx, "Error closing storage client", err)
		}

		serverManager.Shutdown(timeoutCtx)
	})
}

// startListener provisions the subscription binding and starts the supervised
// receive loop. A setup failure leaves the process running in degraded mode
// without live delivery rather than refusing to start.
func startListener(ctx context.Context, config configx.Config, client *cloudpubsub.Client) *gcppubsub.Listener {
	sub, err := gcppubsub.EnsureSubscription(
		ctx,
		client,
		configx.ShortTopicID(config.GetPubSubConfig().SubscriptionTopic),
		config.GetPubSubConfig().SubscriptionId,
	)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Error setting up subscription. The application will continue but may not receive messages properly.", err)
		return nil
	}

	listener := gcppubsub.NewListener(sub, relay.HandleMessage, gcppubsub.ListenerConfig{})
	listener.Start(ctx)

	return listener
}

func loadConfiguration() *ServiceConfig {
	var cfg ServiceConfig

	err := configx.LoadConfigFromPathForEnv("./config", &cfg)
	if err != nil {
		log.Panicf("error loading property files: %+v", err)
	}

	return &cfg
}
