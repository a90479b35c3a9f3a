package configx

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultConfigBaseName = "property"

// Flat environment variable aliases honoured for Cloud Run style deployments,
// in addition to the dotted SERVER_PORT/GCP_PROJECT forms produced by the key replacer.
var envAliases = map[string]string{
	"gcp.project":                 "PROJECT_ID",
	"pubsub.subscriptionTopic":    "SUBSCRIPTION_TOPIC",
	"pubsub.publishingTopic":      "PUBLISHING_TOPIC",
	"pubsub.subscriptionId":       "SUBSCRIPTION_ID",
	"server.port":                 "PORT",
	"storage.bucket":              "STORAGE_BUCKET",
	"storage.signedUrlTTLMinutes": "SIGNED_URL_TTL_MINUTES",
}

func LoadConfigForEnv(config Config) error {
	return ReadConfiguration(getEnvPropertyFileName(defaultConfigBaseName), config)
}

// LoadConfigFromPathForEnv - search the property-<ENV> properties in the given search path (for ex. "./config" )
func LoadConfigFromPathForEnv(searchPath string, config Config) error {
	if searchPath == "" {
		return LoadConfigForEnv(config)
	}

	searchPath = strings.TrimSuffix(searchPath, "/")

	return ReadConfiguration(getEnvPropertyFileName(fmt.Sprintf("%s/%s", searchPath, defaultConfigBaseName)), config)
}

// ReadConfiguration reads the configuration from the file and environment variables
func ReadConfiguration(configFilePath string, config Config) error {
	log.Println("config filepath: ", configFilePath)

	viper.Reset() // viper state is global; drop anything a previous load left behind

	viper.SetConfigFile(configFilePath) // Specify the file to read
	viper.SetConfigType("yaml")         // Specify the config file type (yaml)
	viper.AutomaticEnv()                // Enable automatic environment variable binding

	// Replace dots in keys with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for key, env := range envAliases {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("unable to bind env alias %s: %w", env, err)
		}
	}

	setRelayDefaults()

	// Attempt to read the configuration file
	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Reading configuration from config file: %s\nSet environment variables will OVERRIDE these values, as the environment takes precedent.", configFilePath)
	} else {
		log.Println("No configuration file found, reading configuration from environment variables.")
	}

	// Unmarshal the configuration into the provided struct
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("unable to decode into config struct, %v", err)
	}

	return nil
}

func setRelayDefaults() {
	viper.SetDefault("name", "Pub/Sub Service")
	viper.SetDefault("environment", "local")
	viper.SetDefault("version", "1.0")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("gcp.project", "demo-project")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.concurrency", 10)
	viper.SetDefault("pubsub.subscriptionId", "relay-subscription")
	viper.SetDefault("storage.bucket", "relay-uploads")
	viper.SetDefault("storage.signedUrlTTLMinutes", 60)
}

// ShortTopicID normalizes a topic reference to the short ID the SDK expects.
// Accepts either a bare ID or a fully-qualified "projects/<p>/topics/<t>" name.
func ShortTopicID(topic string) string {
	if idx := strings.LastIndex(topic, "/"); idx >= 0 {
		return topic[idx+1:]
	}

	return topic
}

func getEnvPropertyFileName(baseFileName string) string {
	env := strings.ToUpper(os.Getenv("ENVIRONMENT"))
	if !checkIfLocalEnv(env) {
		return fmt.Sprintf("%s-%s.yaml", baseFileName, strings.ToLower(env))
	}

	return fmt.Sprintf("%s.yaml", baseFileName)
}

func checkIfLocalEnv(env string) bool {
	env = strings.ToUpper(env)
	if env == "DEV" || env == "STAGE" || env == "PROD" {
		return false
	}

	return true
}
