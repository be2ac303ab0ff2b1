package config

// EnvPrefix is handed to envconfig; every field carries its full key as the alt name.
const EnvPrefix = "DASHBOARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	RelayModeEmbedded = "embedded"
	RelayModeRemote   = "remote"
	RelayModeDisabled = "disabled"

	DeviceStrategyCounting = "counting"
	DeviceStrategyInsert   = "insert"

	PasswordStoragePlaintext = "plaintext"
	PasswordStorageArgon2id  = "argon2id"
)

const (
	EnvAppEnv            = "DASHBOARD_APP_ENV"
	EnvPort              = "DASHBOARD_APP_PORT"
	EnvDBDSN             = "DASHBOARD_DB_DSN"
	EnvDBDriver          = "DASHBOARD_DB_DRIVER"
	EnvDBHost            = "DASHBOARD_DB_HOST"
	EnvDBUser            = "DASHBOARD_DB_USER"
	EnvDBName            = "DASHBOARD_DB_NAME"
	EnvDBPassword        = "DASHBOARD_DB_PASSWORD"
	EnvRedisURL          = "DASHBOARD_REDIS_URL"
	EnvRelayMode         = "DASHBOARD_RELAY_MODE"
	EnvRelayURL          = "DASHBOARD_RELAY_URL"
	EnvEventsEnabled     = "DASHBOARD_EVENTS_ENABLED"
	EnvEventsPubSubTopic = "DASHBOARD_EVENTS_PUBSUB_TOPIC"
	EnvGCPProjectID      = "DASHBOARD_GCP_PROJECT_ID"
	EnvDeviceStrategy    = "DASHBOARD_DEVICE_STRATEGY"
	EnvPasswordStorage   = "DASHBOARD_PASSWORD_STORAGE"
	EnvAllowedOrigins    = "DASHBOARD_HTTP_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
