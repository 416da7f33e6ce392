package bootstrap

import (
	"aurum-commerce/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.CheckoutConfig { return cfg.Checkout },
		func(cfg config.Config) config.PricingConfig { return cfg.Pricing },
		func(cfg config.Config) config.GatewayConfig { return cfg.Gateway },
	),
)
