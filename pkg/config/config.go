package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Elasticity ElasticityConfig
	Import     ImportConfig
	CORS       CORSConfig
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
	Env          string `envconfig:"ELASTICOM_APP_ENV" required:"true"`
	Port         string `envconfig:"ELASTICOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ELASTICOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ELASTICOM_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ELASTICOM_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ELASTICOM_DB_DSN"`
	Driver string `envconfig:"ELASTICOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ELASTICOM_DB_HOST"`
	LegacyPort     int    `envconfig:"ELASTICOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ELASTICOM_DB_USER"`
	LegacyPassword string `envconfig:"ELASTICOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"ELASTICOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"ELASTICOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ELASTICOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ELASTICOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ELASTICOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ELASTICOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; when URL and Address are both empty the import
// rate limiter is disabled and the service runs without Redis.
type RedisConfig struct {
	URL          string        `envconfig:"ELASTICOM_REDIS_URL"`
	Address      string        `envconfig:"ELASTICOM_REDIS_ADDR"`
	Password     string        `envconfig:"ELASTICOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ELASTICOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ELASTICOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ELASTICOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ELASTICOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ELASTICOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ELASTICOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CacheConfig struct {
	DefaultTTL time.Duration `envconfig:"ELASTICOM_CACHE_DEFAULT_TTL" default:"1h"`
	RFMTTL     time.Duration `envconfig:"ELASTICOM_CACHE_RFM_TTL" default:"24h"`
}

type ElasticityConfig struct {
	MinSampleSize int           `envconfig:"ELASTICOM_ELASTICITY_MIN_SAMPLE" default:"3"`
	IQRMultiplier float64       `envconfig:"ELASTICOM_ELASTICITY_IQR_MULTIPLIER" default:"1.5"`
	DefaultLimit  int           `envconfig:"ELASTICOM_ELASTICITY_DEFAULT_LIMIT" default:"200"`
	MaxLimit      int           `envconfig:"ELASTICOM_ELASTICITY_MAX_LIMIT" default:"1000"`
	CacheTTL      time.Duration `envconfig:"ELASTICOM_ELASTICITY_CACHE_TTL" default:"1h"`
}

type ImportConfig struct {
	BatchSize       int           `envconfig:"ELASTICOM_IMPORT_BATCH_SIZE" default:"1000"`
	RateLimitWindow time.Duration `envconfig:"ELASTICOM_IMPORT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitBurst  int           `envconfig:"ELASTICOM_IMPORT_RATE_LIMIT_BURST" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ELASTICOM_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
