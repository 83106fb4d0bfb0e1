package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Analysis      AnalysisConfig
	Tracking      TrackingConfig
	Cron          CronConfig
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
	Env          string `envconfig:"MEDIRUSH_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDIRUSH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDIRUSH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIRUSH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDIRUSH_DB_DSN"`
	Driver string `envconfig:"MEDIRUSH_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEDIRUSH_DB_HOST"`
	Port     int    `envconfig:"MEDIRUSH_DB_PORT" default:"5432"`
	User     string `envconfig:"MEDIRUSH_DB_USER"`
	Password string `envconfig:"MEDIRUSH_DB_PASSWORD"`
	Name     string `envconfig:"MEDIRUSH_DB_NAME"`
	SSLMode  string `envconfig:"MEDIRUSH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDIRUSH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDIRUSH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDIRUSH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDIRUSH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDIRUSH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDIRUSH_REDIS_ADDR"`
	Password     string        `envconfig:"MEDIRUSH_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDIRUSH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDIRUSH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDIRUSH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDIRUSH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDIRUSH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDIRUSH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MEDIRUSH_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MEDIRUSH_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MEDIRUSH_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MEDIRUSH_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type OTPConfig struct {
	TTL               time.Duration `envconfig:"MEDIRUSH_OTP_TTL" default:"5m"`
	Digits            int           `envconfig:"MEDIRUSH_OTP_DIGITS" default:"6"`
	MaxVerifyAttempts int           `envconfig:"MEDIRUSH_OTP_MAX_VERIFY_ATTEMPTS" default:"5"`

	ArgonMemoryKB    int `envconfig:"MEDIRUSH_OTP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDIRUSH_OTP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDIRUSH_OTP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDIRUSH_OTP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDIRUSH_OTP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	OTPWindow     time.Duration `envconfig:"MEDIRUSH_AUTH_RATE_LIMIT_OTP_WINDOW" default:"1m"`
	OTPPhoneLimit int           `envconfig:"MEDIRUSH_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"3"`
	OTPIPLimit    int           `envconfig:"MEDIRUSH_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEDIRUSH_AUTO_MIGRATE" default:"false"`
	UseSQLite   bool `envconfig:"MEDIRUSH_USE_SQLITE" default:"false"`
}

// AnalysisConfig wires the prescription analysis gateway.
type AnalysisConfig struct {
	GatewayURL  string        `envconfig:"MEDIRUSH_ANALYSIS_GATEWAY_URL" default:"https://ai.gateway.lovable.dev/v1"`
	APIKey      string        `envconfig:"MEDIRUSH_ANALYSIS_API_KEY"`
	Model       string        `envconfig:"MEDIRUSH_ANALYSIS_MODEL" default:"google/gemini-2.5-flash"`
	Timeout     time.Duration `envconfig:"MEDIRUSH_ANALYSIS_TIMEOUT" default:"30s"`
	MaxUploadMB int           `envconfig:"MEDIRUSH_ANALYSIS_MAX_UPLOAD_MB" default:"5"`
}

// TrackingConfig holds the simulated delivery stage offsets, measured from
// order placement.
type TrackingConfig struct {
	PreparingAfter time.Duration `envconfig:"MEDIRUSH_TRACKING_PREPARING_AFTER" default:"3s"`
	PickedAfter    time.Duration `envconfig:"MEDIRUSH_TRACKING_PICKED_AFTER" default:"5s"`
	DeliveredAfter time.Duration `envconfig:"MEDIRUSH_TRACKING_DELIVERED_AFTER" default:"7s"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"MEDIRUSH_CRON_INTERVAL" default:"1m"`
	LockTTL        time.Duration `envconfig:"MEDIRUSH_CRON_LOCK_TTL" default:"5m"`
	CartMaxAge     time.Duration `envconfig:"MEDIRUSH_CRON_CART_MAX_AGE" default:"720h"`
	SweepBatchSize int           `envconfig:"MEDIRUSH_CRON_SWEEP_BATCH_SIZE" default:"100"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range fallbackDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
