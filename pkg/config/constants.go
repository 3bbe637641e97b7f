package config

// EnvPrefix is empty because every field names its variable explicitly.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (DSN assembly,
// tests, tooling).
const (
	EnvAppEnv   = "LEDGERLINE_APP_ENV"
	EnvPort     = "LEDGERLINE_APP_PORT"
	EnvLogLevel = "LEDGERLINE_LOG_LEVEL"

	EnvDBDSN  = "LEDGERLINE_DB_DSN"
	EnvDBHost = "LEDGERLINE_DB_HOST"
	EnvDBPort = "LEDGERLINE_DB_PORT"
	EnvDBUser = "LEDGERLINE_DB_USER"
	EnvDBName = "LEDGERLINE_DB_NAME"

	EnvRedisURL = "LEDGERLINE_REDIS_URL"

	EnvGCPProjectID = "LEDGERLINE_GCP_PROJECT_ID"

	EnvPubSubAnalyticsTopic = "LEDGERLINE_PUBSUB_ANALYTICS_TOPIC"
	EnvPubSubAnalyticsSub   = "LEDGERLINE_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
