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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Cart          CartConfig
	Email         EmailConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Email.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CLOTHING_STORE_APP_ENV" required:"true"`
	Port         string `envconfig:"CLOTHING_STORE_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"CLOTHING_STORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLOTHING_STORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CLOTHING_STORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CLOTHING_STORE_DB_DSN"`
	Driver string `envconfig:"CLOTHING_STORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLOTHING_STORE_DB_HOST"`
	LegacyPort     int    `envconfig:"CLOTHING_STORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLOTHING_STORE_DB_USER"`
	LegacyPassword string `envconfig:"CLOTHING_STORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLOTHING_STORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLOTHING_STORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLOTHING_STORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLOTHING_STORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLOTHING_STORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLOTHING_STORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CLOTHING_STORE_REDIS_URL"`
	Address      string        `envconfig:"CLOTHING_STORE_REDIS_ADDR"`
	Password     string        `envconfig:"CLOTHING_STORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLOTHING_STORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLOTHING_STORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLOTHING_STORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLOTHING_STORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLOTHING_STORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLOTHING_STORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CLOTHING_STORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CLOTHING_STORE_JWT_ISSUER" default:"clothing-store"`
	ExpirationMinutes      int    `envconfig:"CLOTHING_STORE_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"CLOTHING_STORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLOTHING_STORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLOTHING_STORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLOTHING_STORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLOTHING_STORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLOTHING_STORE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CLOTHING_STORE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLOTHING_STORE_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CLOTHING_STORE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type CartConfig struct {
	GuestRetentionDays int           `envconfig:"CLOTHING_STORE_CART_GUEST_RETENTION_DAYS" default:"30"`
	CronInterval       time.Duration `envconfig:"CLOTHING_STORE_CART_CRON_INTERVAL" default:"24h"`
}

type EmailConfig struct {
	Transport   string        `envconfig:"CLOTHING_STORE_EMAIL_TRANSPORT" default:"log"`
	Host        string        `envconfig:"CLOTHING_STORE_EMAIL_HOST"`
	Port        int           `envconfig:"CLOTHING_STORE_EMAIL_PORT" default:"587"`
	Username    string        `envconfig:"CLOTHING_STORE_EMAIL_USER"`
	Password    string        `envconfig:"CLOTHING_STORE_EMAIL_PASS"`
	From        string        `envconfig:"CLOTHING_STORE_EMAIL_FROM" default:"Clothing Store <no-reply@clothing-store.local>"`
	SendTimeout time.Duration `envconfig:"CLOTHING_STORE_EMAIL_SEND_TIMEOUT" default:"10s"`
}

// NormalizedTransport returns the lower-cased transport name.
func (e EmailConfig) NormalizedTransport() string {
	transport := strings.ToLower(strings.TrimSpace(e.Transport))
	if transport == "" {
		return EmailTransportLog
	}
	return transport
}

func (e EmailConfig) validate() error {
	switch e.NormalizedTransport() {
	case EmailTransportLog, EmailTransportPubSub:
		return nil
	case EmailTransportSMTP:
		if strings.TrimSpace(e.Host) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvEmailHost, EnvEmailTransport, EmailTransportSMTP)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvEmailTransport, e.Transport)
	}
}

type GCPConfig struct {
	ProjectID string `envconfig:"CLOTHING_STORE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"CLOTHING_STORE_PUBSUB_NOTIFICATION_TOPIC" default:"cs-notification-emails"`
	NotificationSubscription string `envconfig:"CLOTHING_STORE_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"cs-notification-emails-sub"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
