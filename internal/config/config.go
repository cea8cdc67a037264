package config

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Env           string         `yaml:"env" env:"ENV"`
	Server        ServerConfig   `env-prefix:"SERVER_"`
	Redis         RedisConfig    `env-prefix:"REDIS_"`
	Database      PostgresConfig `env-prefix:"POSTGRES_"`
	Queue         QueueConfig    `env-prefix:"QUEUE_"`
	Sender        SenderConfig   `env-prefix:"SENDER_"`
	RedisRetry    RetryConfig    `env-prefix:"RETRY_REDIS_"`
	PostgresRetry RetryConfig    `env-prefix:"RETRY_POSTGRES_"`
}

func NewConfig(envFilePath string, configFilePath string) (*Config, error) {
	myConfig := &Config{}

	cfg := config.New()

	if envFilePath != "" {
		if err := cfg.LoadEnvFiles(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	cfg.EnableEnv("")

	if configFilePath != "" {
		if err := cfg.LoadConfigFiles(configFilePath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	myConfig.Env = cfg.GetString("PUSHQUEUE_ENV")

	// Server
	myConfig.Server.Host = cfg.GetString("PUSHQUEUE_SERVER_HOST")
	myConfig.Server.Port = cfg.GetInt("PUSHQUEUE_SERVER_PORT")

	// Redis
	myConfig.Redis.Host = cfg.GetString("PUSHQUEUE_REDIS_HOST")
	myConfig.Redis.Port = cfg.GetInt("PUSHQUEUE_REDIS_PORT")
	myConfig.Redis.Password = cfg.GetString("PUSHQUEUE_REDIS_PASSWORD")
	myConfig.Redis.DB = cfg.GetInt("PUSHQUEUE_REDIS_DB")

	// Postgres
	myConfig.Database.MasterDSN = cfg.GetString("PUSHQUEUE_POSTGRES_MASTER_DSN")
	myConfig.Database.SlaveDSNs = cfg.GetStringSlice("PUSHQUEUE_POSTGRES_SLAVE_DSNS")
	myConfig.Database.MaxOpenConnections = cfg.GetInt("PUSHQUEUE_POSTGRES_MAX_OPEN_CONNECTIONS")
	myConfig.Database.MaxIdleConnections = cfg.GetInt("PUSHQUEUE_POSTGRES_MAX_IDLE_CONNECTIONS")
	myConfig.Database.ConnectionMaxLifetimeSeconds = cfg.GetInt("PUSHQUEUE_POSTGRES_CONNECTION_MAX_LIFETIME_SECONDS")

	// Queue
	myConfig.Queue.KeyPrefix = cfg.GetString("PUSHQUEUE_QUEUE_KEY_PREFIX")
	myConfig.Queue.PollIntervalMs = cfg.GetInt("PUSHQUEUE_QUEUE_POLL_INTERVAL_MS")
	myConfig.Queue.SweepIntervalMs = cfg.GetInt("PUSHQUEUE_QUEUE_SWEEP_INTERVAL_MS")
	myConfig.Queue.DefaultMaxRetries = cfg.GetInt("PUSHQUEUE_QUEUE_DEFAULT_MAX_RETRIES")
	myConfig.Queue.MaxBackoffSeconds = cfg.GetInt("PUSHQUEUE_QUEUE_MAX_BACKOFF_SECONDS")
	myConfig.Queue.SuccessResultTTLHours = cfg.GetInt("PUSHQUEUE_QUEUE_SUCCESS_RESULT_TTL_HOURS")
	myConfig.Queue.FailureResultTTLHours = cfg.GetInt("PUSHQUEUE_QUEUE_FAILURE_RESULT_TTL_HOURS")

	// Sender
	myConfig.Sender.Mode = cfg.GetString("PUSHQUEUE_SENDER_MODE")
	myConfig.Sender.GatewayURL = cfg.GetString("PUSHQUEUE_SENDER_GATEWAY_URL")
	myConfig.Sender.TimeoutMs = cfg.GetInt("PUSHQUEUE_SENDER_TIMEOUT_MS")

	// Redis retry
	myConfig.RedisRetry.Attempts = cfg.GetInt("PUSHQUEUE_RETRY_REDIS_ATTEMPTS")
	myConfig.RedisRetry.DelayMilliseconds = cfg.GetInt("PUSHQUEUE_RETRY_REDIS_DELAY_MS")
	myConfig.RedisRetry.Backoff = cfg.GetFloat64("PUSHQUEUE_RETRY_REDIS_BACKOFF")

	// Postgres retry
	myConfig.PostgresRetry.Attempts = cfg.GetInt("PUSHQUEUE_RETRY_POSTGRES_ATTEMPTS")
	myConfig.PostgresRetry.DelayMilliseconds = cfg.GetInt("PUSHQUEUE_RETRY_POSTGRES_DELAY_MS")
	myConfig.PostgresRetry.Backoff = cfg.GetFloat64("PUSHQUEUE_RETRY_POSTGRES_BACKOFF")

	myConfig.applyDefaults()

	return myConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Queue.KeyPrefix == "" {
		c.Queue.KeyPrefix = "pushqueue"
	}
	if c.Queue.PollIntervalMs == 0 {
		c.Queue.PollIntervalMs = 1000
	}
	if c.Queue.SweepIntervalMs == 0 {
		c.Queue.SweepIntervalMs = 1000
	}
	if c.Queue.DefaultMaxRetries == 0 {
		c.Queue.DefaultMaxRetries = 3
	}
	if c.Queue.MaxBackoffSeconds == 0 {
		c.Queue.MaxBackoffSeconds = 60
	}
	if c.Queue.SuccessResultTTLHours == 0 {
		c.Queue.SuccessResultTTLHours = 24
	}
	if c.Queue.FailureResultTTLHours == 0 {
		c.Queue.FailureResultTTLHours = 24 * 7
	}
	if c.Sender.Mode == "" {
		c.Sender.Mode = "console"
	}
	if c.Sender.TimeoutMs == 0 {
		c.Sender.TimeoutMs = 5000
	}
	if c.RedisRetry.Attempts == 0 {
		c.RedisRetry = RetryConfig{Attempts: 3, DelayMilliseconds: 200, Backoff: 2}
	}
	if c.PostgresRetry.Attempts == 0 {
		c.PostgresRetry = RetryConfig{Attempts: 3, DelayMilliseconds: 200, Backoff: 2}
	}
}

func MakeStrategy(c RetryConfig) retry.Strategy {
	return retry.Strategy{
		Attempts: c.Attempts,
		Delay:    time.Duration(c.DelayMilliseconds) * time.Millisecond,
		Backoff:  c.Backoff,
	}
}
