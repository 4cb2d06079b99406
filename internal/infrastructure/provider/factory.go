package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/config"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
	midtransProvider "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/provider/midtrans"
	stripeProvider "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/infrastructure/provider/stripe"
)

// Factory creates payment providers based on the provider type
type Factory struct {
	config *config.GatewayConfig
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.GatewayConfig, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns a payment provider based on the provider type
func (f *Factory) GetProvider(providerType provider.ProviderType) (provider.PaymentProvider, error) {
	switch providerType {
	case provider.ProviderTypeMidtrans:
		return f.createMidtransProvider()
	case provider.ProviderTypeStripe:
		return f.createStripeProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// GetProviderFromString returns a payment provider from a string type
func (f *Factory) GetProviderFromString(providerStr string) (provider.PaymentProvider, error) {
	// Default to Midtrans if not specified
	if providerStr == "" {
		providerStr = string(provider.ProviderTypeMidtrans)
	}

	return f.GetProvider(provider.ProviderType(providerStr))
}

func (f *Factory) createMidtransProvider() (provider.PaymentProvider, error) {
	cfg := f.config.Midtrans
	if cfg.ServerKey == "" {
		return nil, fmt.Errorf("Midtrans server key not configured")
	}

	return midtransProvider.NewMidtransProvider(midtransProvider.Config{
		ServerKey:           cfg.ServerKey,
		ClientKey:           cfg.ClientKey,
		IsProduction:        cfg.IsProduction,
		SnapURL:             cfg.SnapURL,
		Timeout:             f.config.Timeout,
		VerifyWithStatusAPI: cfg.VerifyWithStatusAPI,
	}, f.logger.Named("midtrans")), nil
}

func (f *Factory) createStripeProvider() (provider.PaymentProvider, error) {
	cfg := f.config.Stripe
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeProvider.NewStripeProvider(cfg.SecretKey, cfg.WebhookSecret, f.logger.Named("stripe")), nil
}
