package components

import (
	"aurum-commerce/internal/handler"
	"aurum-commerce/internal/handler/api"
	"aurum-commerce/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCartHandler,
		api.NewCheckoutHandler,
		api.NewOrderHandler,
		api.NewPaymentHandler,
		api.NewPricingHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		func(
			auth *api.AuthHandler,
			cart *api.CartHandler,
			checkout *api.CheckoutHandler,
			order *api.OrderHandler,
			payment *api.PaymentHandler,
			pricing *api.PricingHandler,
			admin *api.AdminHandler,
		) handler.Handlers {
			return handler.Handlers{
				Auth:     auth,
				Cart:     cart,
				Checkout: checkout,
				Order:    order,
				Payment:  payment,
				Pricing:  pricing,
				Admin:    admin,
			}
		},
	),
	fx.Invoke(handler.NewRouter),
)
