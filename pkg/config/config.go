package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "autospares"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AUTOSPARES_DB_DSN"
	EnvDBHost = "AUTOSPARES_DB_HOST"
	EnvDBUser = "AUTOSPARES_DB_USER"
	EnvDBName = "AUTOSPARES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
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
	Env          string `envconfig:"AUTOSPARES_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOSPARES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUTOSPARES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOSPARES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AUTOSPARES_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOSPARES_DB_DSN"`
	Driver string `envconfig:"AUTOSPARES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOSPARES_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOSPARES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOSPARES_DB_USER"`
	LegacyPassword string `envconfig:"AUTOSPARES_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOSPARES_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOSPARES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOSPARES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOSPARES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOSPARES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOSPARES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOSPARES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUTOSPARES_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOSPARES_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOSPARES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOSPARES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOSPARES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOSPARES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOSPARES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOSPARES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AUTOSPARES_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AUTOSPARES_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AUTOSPARES_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AUTOSPARES_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AUTOSPARES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AUTOSPARES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AUTOSPARES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AUTOSPARES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AUTOSPARES_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AUTOSPARES_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AUTOSPARES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AUTOSPARES_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	TaxRatePercent  int    `envconfig:"AUTOSPARES_CHECKOUT_TAX_RATE_PERCENT" default:"10"`
	ShippingFlatFee string `envconfig:"AUTOSPARES_CHECKOUT_SHIPPING_FLAT_FEE" default:"10.00"`
	MaxOrderRetries uint64 `envconfig:"AUTOSPARES_CHECKOUT_MAX_ORDER_RETRIES" default:"3"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUTOSPARES_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AUTOSPARES_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUTOSPARES_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"AUTOSPARES_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"AUTOSPARES_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"AUTOSPARES_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	MaxUploadMB    int `envconfig:"AUTOSPARES_MAX_UPLOAD_MB" default:"20"`
	ImageMaxWidth  int `envconfig:"AUTOSPARES_MEDIA_IMAGE_MAX_WIDTH" default:"1920"`
	ImageMaxHeight int `envconfig:"AUTOSPARES_MEDIA_IMAGE_MAX_HEIGHT" default:"1080"`
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
