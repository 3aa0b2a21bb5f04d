package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry explicit
	// ELASTICOM_* tags so the prefix only matters for untagged fields.
	EnvPrefix = "elasticom"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ELASTICOM_APP_ENV"
	EnvPort   = "ELASTICOM_APP_PORT"
	EnvDBDSN  = "ELASTICOM_DB_DSN"
	EnvDBHost = "ELASTICOM_DB_HOST"
	EnvDBUser = "ELASTICOM_DB_USER"
	EnvDBName = "ELASTICOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
