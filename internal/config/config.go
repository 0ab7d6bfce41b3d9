package config

type Config interface {
	EnvConfig
	SecurityConfig
	MailConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetAllowedOrigin() string
	GetFrontendURL() string
}

type StoreConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type mainConfig struct {
	EnvVars
	Security
	Mail
	Store
}

func New() Config {
	return mainConfig{}
}
