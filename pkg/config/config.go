package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SIGORTA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SIGORTA_DB_DSN"
	EnvDBHost = "SIGORTA_DB_HOST"
	EnvDBUser = "SIGORTA_DB_USER"
	EnvDBName = "SIGORTA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Storage      StorageConfig
	Cron         CronConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SIGORTA_APP_ENV" required:"true"`
	Port         string `envconfig:"SIGORTA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SIGORTA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIGORTA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SIGORTA_DB_DSN"`
	Driver string `envconfig:"SIGORTA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SIGORTA_DB_HOST"`
	LegacyPort     int    `envconfig:"SIGORTA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SIGORTA_DB_USER"`
	LegacyPassword string `envconfig:"SIGORTA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SIGORTA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SIGORTA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIGORTA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIGORTA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIGORTA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIGORTA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SIGORTA_REDIS_URL"`
	Address      string        `envconfig:"SIGORTA_REDIS_ADDR"`
	Password     string        `envconfig:"SIGORTA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIGORTA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIGORTA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIGORTA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIGORTA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIGORTA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIGORTA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SIGORTA_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SIGORTA_JWT_ISSUER" default:"sigorta-auth"`
}

type StorageConfig struct {
	RootDir   string `envconfig:"SIGORTA_STORAGE_ROOT" default:"./data/uploads"`
	PublicURL string `envconfig:"SIGORTA_STORAGE_PUBLIC_URL" default:"/uploads"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SIGORTA_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"SIGORTA_CRON_LOCK_KEY" default:"cron:leader"`
	LockTTL  time.Duration `envconfig:"SIGORTA_CRON_LOCK_TTL" default:"25h"`
}

type WebhookConfig struct {
	PaymentEventTTL time.Duration `envconfig:"SIGORTA_WEBHOOK_PAYMENT_EVENT_TTL" default:"720h"`

	// Secret authenticates provider callbacks. Empty disables the check
	// (local dev only).
	Secret string `envconfig:"SIGORTA_WEBHOOK_SECRET"`

	// SystemUserID is the identity provider callbacks are recorded under.
	SystemUserID int64 `envconfig:"SIGORTA_WEBHOOK_SYSTEM_USER_ID" default:"1"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIGORTA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
