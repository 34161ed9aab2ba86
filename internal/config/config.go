package config

import (
	"github.com/staynest/service-booking/pkg/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	MigrationsDir   string
	DBConfig        config.DatabaseConfig
	JWTConfig       config.JWTConfig
	KafkaConfig     config.KafkaConfig
	CacheConfig     config.CacheConfig
	RateLimitConfig config.RateLimitConfig
}

// Load reads configuration from environment variables prefixed with BOOKING_.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	return &ServiceConfig{
		Port:            config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:          config.GetAppEnv(v),
		MigrationsDir:   v.GetString("MIGRATIONS_DIR"),
		DBConfig:        config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:       config.LoadJWTConfig(v),
		KafkaConfig:     config.LoadKafkaConfig(v),
		CacheConfig:     config.LoadCacheConfig(v),
		RateLimitConfig: config.LoadRateLimitConfig(v),
	}, nil
}
