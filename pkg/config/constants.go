package config

const (
	EnvPrefix = "MERCANTILE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MERCANTILE_DB_DSN"
	EnvDBHost = "MERCANTILE_DB_HOST"
	EnvDBUser = "MERCANTILE_DB_USER"
	EnvDBName = "MERCANTILE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
