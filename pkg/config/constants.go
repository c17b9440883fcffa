package config

const (
	EnvPrefix = "CLOTHING_STORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EmailTransportLog    = "log"
	EmailTransportSMTP   = "smtp"
	EmailTransportPubSub = "pubsub"
)

// Environment variable names referenced by validation errors and tests.
const (
	EnvAppEnv   = "CLOTHING_STORE_APP_ENV"
	EnvPort     = "CLOTHING_STORE_APP_PORT"
	EnvDBDSN    = "CLOTHING_STORE_DB_DSN"
	EnvDBDriver = "CLOTHING_STORE_DB_DRIVER"
	EnvDBHost   = "CLOTHING_STORE_DB_HOST"
	EnvDBUser   = "CLOTHING_STORE_DB_USER"
	EnvDBName   = "CLOTHING_STORE_DB_NAME"
	EnvRedisURL = "CLOTHING_STORE_REDIS_URL"

	EnvJWTSecret              = "CLOTHING_STORE_JWT_SECRET"
	EnvJWTIssuer              = "CLOTHING_STORE_JWT_ISSUER"
	EnvJWTExpMins             = "CLOTHING_STORE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CLOTHING_STORE_REFRESH_TOKEN_TTL_MINUTES"

	EnvEmailTransport = "CLOTHING_STORE_EMAIL_TRANSPORT"
	EnvEmailHost      = "CLOTHING_STORE_EMAIL_HOST"

	EnvCORSAllowedOrigins = "CLOTHING_STORE_CORS_ALLOWED_ORIGINS"
	EnvGuestRetentionDays = "CLOTHING_STORE_CART_GUEST_RETENTION_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
