package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/pkg/config"
)

const serviceName = "coursepedia"

type Config struct {
	Service        ServiceConfig        `yaml:"service" mapstructure:"service"`
	Database       DatabaseConfig       `yaml:"database" mapstructure:"database"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
	JWT            JWTConfig            `yaml:"jwt" mapstructure:"jwt"`
	Gateway        GatewayConfig        `yaml:"gateway" mapstructure:"gateway"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation" mapstructure:"reconciliation"`
	Redis          RedisConfig          `yaml:"redis" mapstructure:"redis"`
}

// LoadConfig reads configs/coursepedia.yaml (or CONFIG_PATH), applies
// COURSEPEDIA_* environment overrides and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	err := pkgconfig.Load(serviceName, &cfg, pkgconfig.Options{
		EnvPrefix:   "COURSEPEDIA",
		Defaults:    defaults(),
		DotEnvFiles: []string{".env"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	switch c.Gateway.Provider {
	case "midtrans":
		if c.Gateway.Midtrans.ServerKey == "" {
			return fmt.Errorf("gateway.midtrans.server_key is required")
		}
	case "stripe":
		if c.Gateway.Stripe.SecretKey == "" {
			return fmt.Errorf("gateway.stripe.secret_key is required")
		}
	default:
		return fmt.Errorf("unsupported gateway provider: %q", c.Gateway.Provider)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	return nil
}

// IsProduction reports whether detailed errors must be hidden from clients
func (c *Config) IsProduction() bool {
	return c.Service.Environment == "production"
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":           serviceName,
		"service.environment":    "development",
		"service.version":        "dev",
		"service.client_url":     "http://localhost:8000",
		"service.session_secret": "",

		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "coursepedia",
		"database.user":               "postgres",
		"database.password":           "",
		"database.sslmode":            "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  30 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,

		"server.http.host": "0.0.0.0",
		"server.http.port": 8080,
		"server.grpc.host": "0.0.0.0",
		"server.grpc.port": 9090,

		"log.level":          "info",
		"log.format":         "json",
		"log.output":         "stdout",
		"log.file_path":      "",
		"log.development":    false,
		"log.sample_initial": 100,

		"jwt.secret": "",

		"gateway.provider":                        "midtrans",
		"gateway.timeout":                         5 * time.Second,
		"gateway.currency":                        "IDR",
		"gateway.midtrans.server_key":             "",
		"gateway.midtrans.client_key":             "",
		"gateway.midtrans.is_production":          false,
		"gateway.midtrans.snap_url":               "",
		"gateway.midtrans.verify_with_status_api": true,
		"gateway.stripe.secret_key":               "",
		"gateway.stripe.webhook_secret":           "",

		"reconciliation.redirect_channel_writes": true,
		"reconciliation.sweep_interval":          5 * time.Minute,
		"reconciliation.sweep_batch_size":        50,
		"reconciliation.stale_after":             30 * time.Minute,
		"reconciliation.expire_after":            24 * time.Hour,

		"redis.enabled":  false,
		"redis.addr":     "localhost:6379",
		"redis.password": "",
		"redis.db":       0,
	}
}
