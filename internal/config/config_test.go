package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		Gateway: GatewayConfig{
			Provider: "midtrans",
			Timeout:  5 * time.Second,
			Midtrans: MidtransConfig{ServerKey: "SB-Mid-server-x"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid midtrans", func(c *Config) {}, ""},
		{"memory driver", func(c *Config) { c.Database.Driver = "memory" }, ""},
		{"valid stripe", func(c *Config) {
			c.Gateway.Provider = "stripe"
			c.Gateway.Stripe.SecretKey = "sk_test_x"
		}, ""},
		{"missing midtrans key", func(c *Config) { c.Gateway.Midtrans.ServerKey = "" }, "server_key"},
		{"missing stripe key", func(c *Config) { c.Gateway.Provider = "stripe" }, "secret_key"},
		{"unknown gateway", func(c *Config) { c.Gateway.Provider = "paypal" }, "unsupported gateway"},
		{"zero timeout", func(c *Config) { c.Gateway.Timeout = 0 }, "timeout"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coursepedia.yaml")
	yaml := `
service:
  environment: production
  client_url: https://coursepedia.example
gateway:
  midtrans:
    server_key: SB-Mid-server-file
reconciliation:
  redirect_channel_writes: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("COURSEPEDIA_GATEWAY_TIMEOUT", "2s")
	t.Setenv("COURSEPEDIA_DATABASE_PORT", "6543")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://coursepedia.example", cfg.Service.ClientURL)
	assert.Equal(t, "SB-Mid-server-file", cfg.Gateway.Midtrans.ServerKey)
	assert.Equal(t, 2*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "IDR", cfg.Gateway.Currency)
	assert.False(t, cfg.Reconciliation.RedirectChannelWrites)
	assert.True(t, cfg.Gateway.Midtrans.VerifyWithStatusAPI)
	assert.Equal(t, 5*time.Minute, cfg.Reconciliation.SweepInterval)
}

func TestLoadConfig_MissingGatewayKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("APP_ENV", "nowhere")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_key")
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "coursepedia"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=coursepedia sslmode=disable", cfg.DSN())
}
