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

	EnvDBDSN  = "ALPHASUP_DB_DSN"
	EnvDBHost = "ALPHASUP_DB_HOST"
	EnvDBUser = "ALPHASUP_DB_USER"
	EnvDBName = "ALPHASUP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Payments     PaymentsConfig
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
	Env          string `envconfig:"ALPHASUP_APP_ENV" required:"true"`
	Port         string `envconfig:"ALPHASUP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ALPHASUP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ALPHASUP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ALPHASUP_DB_DSN"`
	Driver string `envconfig:"ALPHASUP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ALPHASUP_DB_HOST"`
	LegacyPort     int    `envconfig:"ALPHASUP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ALPHASUP_DB_USER"`
	LegacyPassword string `envconfig:"ALPHASUP_DB_PASSWORD"`
	LegacyName     string `envconfig:"ALPHASUP_DB_NAME"`
	LegacySSLMode  string `envconfig:"ALPHASUP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ALPHASUP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ALPHASUP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ALPHASUP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALPHASUP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ALPHASUP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ALPHASUP_REDIS_ADDR"`
	Password     string        `envconfig:"ALPHASUP_REDIS_PASSWORD"`
	DB           int           `envconfig:"ALPHASUP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ALPHASUP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ALPHASUP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ALPHASUP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ALPHASUP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ALPHASUP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ALPHASUP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ALPHASUP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ALPHASUP_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type StripeConfig struct {
	APIKey string `envconfig:"ALPHASUP_STRIPE_API_KEY"`
	Secret string `envconfig:"ALPHASUP_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"ALPHASUP_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PaymentsConfig holds the pricing constants for fee and deposit math.
// Fees default to the gateway's card schedule: 2.9% plus 30 minor units.
type PaymentsConfig struct {
	ProcessingFeePercent string        `envconfig:"ALPHASUP_PAYMENTS_PROCESSING_FEE_PERCENT" default:"2.9"`
	FixedFeeCents        int64         `envconfig:"ALPHASUP_PAYMENTS_FIXED_FEE_CENTS" default:"30"`
	DefaultDepositPct    int           `envconfig:"ALPHASUP_PAYMENTS_DEFAULT_DEPOSIT_PERCENT" default:"30"`
	DefaultCurrency      string        `envconfig:"ALPHASUP_PAYMENTS_DEFAULT_CURRENCY" default:"usd"`
	IntentTTL            time.Duration `envconfig:"ALPHASUP_PAYMENTS_INTENT_TTL" default:"30m"`
	WebhookEventTTL      time.Duration `envconfig:"ALPHASUP_PAYMENTS_WEBHOOK_EVENT_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ALPHASUP_AUTO_MIGRATE" default:"false"`
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
