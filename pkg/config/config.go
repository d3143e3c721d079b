package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Analytics     AnalyticsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Analytics.Aggregate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCANTILE_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCANTILE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCANTILE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCANTILE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MERCANTILE_DB_DSN"`
	Driver string `envconfig:"MERCANTILE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCANTILE_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCANTILE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCANTILE_DB_USER"`
	LegacyPassword string `envconfig:"MERCANTILE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCANTILE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCANTILE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCANTILE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCANTILE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCANTILE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCANTILE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCANTILE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCANTILE_REDIS_ADDR"`
	Password     string        `envconfig:"MERCANTILE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCANTILE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCANTILE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCANTILE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCANTILE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCANTILE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCANTILE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MERCANTILE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MERCANTILE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MERCANTILE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MERCANTILE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCANTILE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCANTILE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCANTILE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCANTILE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCANTILE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MERCANTILE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CartConfig struct {
	SessionTTL time.Duration `envconfig:"MERCANTILE_CART_SESSION_TTL" default:"720h"`
}

type AnalyticsConfig struct {
	// FulfillmentAggregate picks the representative fulfillment duration per
	// merchant when a merchant has fulfilled more than one order item.
	FulfillmentAggregate string `envconfig:"MERCANTILE_ANALYTICS_FULFILLMENT_AGGREGATE" default:"mean"`
}

// Aggregate parses the configured fulfillment aggregation rule.
func (a AnalyticsConfig) Aggregate() (enums.FulfillmentAggregate, error) {
	return enums.ParseFulfillmentAggregate(a.FulfillmentAggregate)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCANTILE_AUTO_MIGRATE" default:"false"`
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
