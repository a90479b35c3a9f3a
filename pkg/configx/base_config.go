package configx

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetServerConfig() *ServerConfig
	GetGcpConfig() *GcpConfig
	GetLoggingConfig() *LoggingConfig
	GetPubSubConfig() *PubSubConfig
	GetStorageConfig() *StorageConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration for the relay and is expected to be in the following YAML format:
/*
name: "Pub/Sub Service"
environment: "local"
version: "1.0"
logging:
  level: "info"
gcp:
  project: demo-project
  location: europe-west1
server:
  port: "8080"
  concurrency: 10
  disableStartupMsg: false
pubsub:
  subscriptionTopic: dummy-topic
  publishingTopic: dummy-topic-output
  subscriptionId: relay-subscription
storage:
  bucket: relay-uploads
  signedUrlTTLMinutes: 60
*/
type BaseConfig struct {
	Name        string         `mapstructure:"name"`
	Environment string         `mapstructure:"environment"`
	Version     string         `mapstructure:"version"`
	Logging     *LoggingConfig `mapstructure:"logging"`
	Server      *ServerConfig  `mapstructure:"server"`
	Gcp         *GcpConfig     `mapstructure:"gcp"`
	PubSub      *PubSubConfig  `mapstructure:"pubsub"`
	Storage     *StorageConfig `mapstructure:"storage"`
}

type ServerConfig struct {
	Port                  string `mapstructure:"port"`
	Concurrency           int    `mapstructure:"concurrency"`
	DisableStartupMessage bool   `mapstructure:"disableStartupMsg"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type GcpConfig struct {
	ProjectId string `mapstructure:"project"`
	Location  string `mapstructure:"location"`
}

// PubSubConfig - topic and subscription binding for the relay.
// Topic names may be short IDs or fully-qualified "projects/<p>/topics/<t>" names;
// consumers normalize them with ShortTopicID before handing them to the SDK.
type PubSubConfig struct {
	SubscriptionTopic string `mapstructure:"subscriptionTopic"`
	PublishingTopic   string `mapstructure:"publishingTopic"`
	SubscriptionId    string `mapstructure:"subscriptionId"`
}

// StorageConfig - blob store bucket and signed URL validity window.
type StorageConfig struct {
	Bucket              string `mapstructure:"bucket"`
	SignedUrlTTLMinutes int    `mapstructure:"signedUrlTTLMinutes"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return checkIfLocalEnv(cfg.Environment)
}

func (cfg BaseConfig) GetServerConfig() *ServerConfig {
	return cfg.Server
}

func (cfg BaseConfig) GetGcpConfig() *GcpConfig {
	return cfg.Gcp
}

func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	return cfg.Logging
}

func (cfg BaseConfig) GetPubSubConfig() *PubSubConfig {
	return cfg.PubSub
}

func (cfg BaseConfig) GetStorageConfig() *StorageConfig {
	return cfg.Storage
}
