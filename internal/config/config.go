package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rezamoss/expense-ledger/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-sourced value the binaries use. Only this struct
// should be read for configuration; no direct env access elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"expense_ledger"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr            string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout     int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout    int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`
	HttpServerReadBufferSize  int    `env:"HTTP_SERVER_READ_BUFFER_SIZE"`
	HttpServerWriteBufferSize int    `env:"HTTP_SERVER_WRITE_BUFFER_SIZE"`

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

	LogLevel []string `env:"LOG_LEVEL"`

	// Per-expense lock wait before a mutation gives up with a
	// concurrency error.
	LedgerLockTimeout time.Duration `env:"LEDGER_LOCK_TIMEOUT" default:"3s"`

	AuditStreamName              string        `env:"AUDIT_STREAM_NAME" default:"audit:events"`
	AuditConsumerGroup           string        `env:"AUDIT_CONSUMER_GROUP" default:"auditor"`
	AuditConsumerName            string        `env:"AUDIT_CONSUMER_NAME" default:"auditor"`
	AuditStreamMaxRetries        int           `env:"AUDIT_STREAM_MAX_RETRIES" default:"3"`
	AuditStreamVisibilityTimeout time.Duration `env:"AUDIT_STREAM_VISIBILITY_TIMEOUT" default:"30s"`
	AuditStreamPollInterval      time.Duration `env:"AUDIT_STREAM_POLL_INTERVAL" default:"1s"`
	AuditStreamBatchSize         int64         `env:"AUDIT_STREAM_BATCH_SIZE" default:"10"`
	AuditStreamMaxLen            int64         `env:"AUDIT_STREAM_MAX_LEN"`
	AuditStreamEnableDLQ         bool          `env:"AUDIT_STREAM_ENABLE_DLQ" default:"1"`
	AuditConsumerCount           int           `env:"AUDIT_CONSUMER_COUNT" default:"4"`
	AuditWorkerCount             int           `env:"AUDIT_WORKER_COUNT" default:"32"`

	MigrationsDir string `env:"MIGRATIONS_DIR" default:"migrations"`
	SeedFile      string `env:"SEED_FILE" default:"seed/seed.json"`

	IdentityListenAddr string `env:"IDENTITY_LISTEN_ADDR" default:":8090"`
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
