package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "MEDIRUSH"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "MEDIRUSH_APP_ENV"
	EnvPort     = "MEDIRUSH_APP_PORT"
	EnvDBDSN    = "MEDIRUSH_DB_DSN"
	EnvDBHost   = "MEDIRUSH_DB_HOST"
	EnvDBUser   = "MEDIRUSH_DB_USER"
	EnvDBName   = "MEDIRUSH_DB_NAME"
	EnvRedisURL = "MEDIRUSH_REDIS_URL"

	EnvJWTSecret              = "MEDIRUSH_JWT_SECRET"
	EnvJWTIssuer              = "MEDIRUSH_JWT_ISSUER"
	EnvJWTExpMins             = "MEDIRUSH_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MEDIRUSH_REFRESH_TOKEN_TTL_MINUTES"

	EnvAnalysisGatewayURL = "MEDIRUSH_ANALYSIS_GATEWAY_URL"
	EnvAnalysisAPIKey     = "MEDIRUSH_ANALYSIS_API_KEY"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
