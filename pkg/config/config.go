package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KASIRPOINT_APP_ENV" required:"true"`
	Port         string `envconfig:"KASIRPOINT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KASIRPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KASIRPOINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KASIRPOINT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KASIRPOINT_DB_DSN"`
	Driver string `envconfig:"KASIRPOINT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KASIRPOINT_DB_HOST"`
	LegacyPort     int    `envconfig:"KASIRPOINT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KASIRPOINT_DB_USER"`
	LegacyPassword string `envconfig:"KASIRPOINT_DB_PASSWORD"`
	LegacyName     string `envconfig:"KASIRPOINT_DB_NAME"`
	LegacySSLMode  string `envconfig:"KASIRPOINT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KASIRPOINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KASIRPOINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KASIRPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KASIRPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either KASIRPOINT_DB_DSN or host/user/name settings are required")
	}
	userInfo := url.User(d.LegacyUser)
	if d.LegacyPassword != "" {
		userInfo = url.UserPassword(d.LegacyUser, d.LegacyPassword)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:     d.LegacyName,
		RawQuery: "sslmode=" + d.LegacySSLMode,
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"KASIRPOINT_REDIS_URL"`
	Address      string        `envconfig:"KASIRPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"KASIRPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"KASIRPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KASIRPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KASIRPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KASIRPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KASIRPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KASIRPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KASIRPOINT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KASIRPOINT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KASIRPOINT_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KASIRPOINT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KASIRPOINT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KASIRPOINT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KASIRPOINT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KASIRPOINT_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KASIRPOINT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"KASIRPOINT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	TransactionTopic string `envconfig:"KASIRPOINT_PUBSUB_TRANSACTION_TOPIC" default:"transaction-events"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"KASIRPOINT_OUTBOX_POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"KASIRPOINT_OUTBOX_BATCH_SIZE" default:"50"`
}
