package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/myola/storefront/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every configuration value used by the binaries. Only this
// struct may be read for configuration; no direct env/ini access elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"storefront_core"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	// Static admin credential for the role gate. Production deploys
	// resolve callers against the identity provider instead.
	AuthAdminToken  string `env:"AUTH_ADMIN_TOKEN"`
	AuthAdminUserID int64  `env:"AUTH_ADMIN_USER_ID" default:"1"`

	LogLevel []string `env:"LOG_LEVEL"`

	// Membership economics. Amounts are in the smallest currency unit.
	MembershipFee       int64 `env:"MEMBERSHIP_FEE" default:"99000"`
	MembershipJoinBonus int64 `env:"MEMBERSHIP_JOIN_BONUS" default:"49000"`

	PaymentStreamName          string        `env:"PAYMENT_STREAM_NAME" default:"payments:confirmed"`
	PaymentConsumerGroup       string        `env:"PAYMENT_CONSUMER_GROUP" default:"storefront-core"`
	PaymentConsumerName        string        `env:"PAYMENT_CONSUMER_NAME"`
	PaymentMaxRetries          int           `env:"PAYMENT_MAX_RETRIES" default:"3"`
	PaymentVisibilityTimeout   time.Duration `env:"PAYMENT_VISIBILITY_TIMEOUT"`
	PaymentPollInterval        time.Duration `env:"PAYMENT_POLL_INTERVAL"`
	PaymentBatchSize           int64         `env:"PAYMENT_BATCH_SIZE"`
	PaymentStreamMaxLen        int64         `env:"PAYMENT_STREAM_MAX_LEN"`
	PaymentEnableDLQ           bool          `env:"PAYMENT_ENABLE_DLQ"`
	PaymentProcessorConcurrent int           `env:"PAYMENT_PROCESSOR_CONCURRENT" default:"4"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" default:"order-proofs"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`

	AdminTokens string `env:"ADMIN_TOKENS"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
