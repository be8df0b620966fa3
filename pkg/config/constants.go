package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// NEXUSMARKET_ names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "NEXUSMARKET_APP_ENV"
	EnvPort       = "NEXUSMARKET_APP_PORT"
	EnvDBDSN      = "NEXUSMARKET_DB_DSN"
	EnvDBHost     = "NEXUSMARKET_DB_HOST"
	EnvDBUser     = "NEXUSMARKET_DB_USER"
	EnvDBName     = "NEXUSMARKET_DB_NAME"
	EnvRedisURL   = "NEXUSMARKET_REDIS_URL"
	EnvJWTSecret  = "NEXUSMARKET_JWT_SECRET"
	EnvJWTIssuer  = "NEXUSMARKET_JWT_ISSUER"
	EnvJWTExpMins = "NEXUSMARKET_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
