package config

import "time"

// GatewayConfig selects and configures the payment gateway
type GatewayConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Currency string        `yaml:"currency" mapstructure:"currency"`

	Midtrans MidtransConfig `yaml:"midtrans" mapstructure:"midtrans"`
	Stripe   StripeConfig   `yaml:"stripe" mapstructure:"stripe"`
}

type MidtransConfig struct {
	ServerKey    string `yaml:"server_key" mapstructure:"server_key"`
	ClientKey    string `yaml:"client_key" mapstructure:"client_key"`
	IsProduction bool   `yaml:"is_production" mapstructure:"is_production"`
	// SnapURL overrides the Snap transactions endpoint used by the HTTP fallback
	SnapURL             string `yaml:"snap_url" mapstructure:"snap_url"`
	VerifyWithStatusAPI bool   `yaml:"verify_with_status_api" mapstructure:"verify_with_status_api"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key" mapstructure:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret" mapstructure:"webhook_secret"`
}

// ReconciliationConfig tunes the reconciliation channels and the pending sweeper
type ReconciliationConfig struct {
	// RedirectChannelWrites lets the browser redirect channel change ledger state.
	// When false the redirect only reports the stored status.
	RedirectChannelWrites bool `yaml:"redirect_channel_writes" mapstructure:"redirect_channel_writes"`

	// SweepInterval of 0 disables the pending sweeper
	SweepInterval  time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
	SweepBatchSize int           `yaml:"sweep_batch_size" mapstructure:"sweep_batch_size"`
	StaleAfter     time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
	ExpireAfter    time.Duration `yaml:"expire_after" mapstructure:"expire_after"`
}
