package config

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type PostgresConfig struct {
	MasterDSN                    string   `env:"MASTER_DSN"`
	SlaveDSNs                    []string `env:"SLAVE_DSNS" envSeparator:","`
	MaxOpenConnections           int      `env:"MAX_OPEN_CONNECTIONS" envDefault:"3"`
	MaxIdleConnections           int      `env:"MAX_IDLE_CONNECTIONS" envDefault:"5"`
	ConnectionMaxLifetimeSeconds int      `env:"CONNECTION_MAX_LIFETIME_SECONDS" envDefault:"0"`
}

type QueueConfig struct {
	KeyPrefix              string `yaml:"key_prefix" env:"KEY_PREFIX"`
	PollIntervalMs         int    `yaml:"poll_interval_ms" env:"POLL_INTERVAL_MS"`
	SweepIntervalMs        int    `yaml:"sweep_interval_ms" env:"SWEEP_INTERVAL_MS"`
	DefaultMaxRetries      int    `yaml:"default_max_retries" env:"DEFAULT_MAX_RETRIES"`
	MaxBackoffSeconds      int    `yaml:"max_backoff_seconds" env:"MAX_BACKOFF_SECONDS"`
	SuccessResultTTLHours  int    `yaml:"success_result_ttl_hours" env:"SUCCESS_RESULT_TTL_HOURS"`
	FailureResultTTLHours  int    `yaml:"failure_result_ttl_hours" env:"FAILURE_RESULT_TTL_HOURS"`
}

type SenderConfig struct {
	// Mode selects the sender adapter: "console" or "gateway".
	Mode       string `yaml:"mode" env:"MODE"`
	GatewayURL string `yaml:"gateway_url" env:"GATEWAY_URL"`
	TimeoutMs  int    `yaml:"timeout_ms" env:"TIMEOUT_MS"`
}

type RetryConfig struct {
	Attempts          int     `yaml:"attempts" env:"ATTEMPTS"`
	DelayMilliseconds int     `yaml:"delay_milliseconds" env:"DELAY_MS"`
	Backoff           float64 `yaml:"backoff" env:"BACKOFF"`
}
