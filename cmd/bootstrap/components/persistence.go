package components

import (
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/infra/gateway"
	"aurum-commerce/internal/infra/readstore"
	"aurum-commerce/internal/infra/repository"
	"aurum-commerce/internal/infra/uow"
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/queries"
	"aurum-commerce/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// Command-side repositories are built inside the unit of work per
// transaction; only read stores, sweepers and the gateway are wired here.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewCartReadStore,
			fx.As(new(queries.CartReadStore)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewPaymentReadStore,
			fx.As(new(queries.PaymentReadStore)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			repository.NewVoucherRepository,
			fx.As(new(commands.VoucherSweeper)),
		),
		fx.Annotate(
			repository.NewGiftCardRepository,
			fx.As(new(commands.GiftCardSweeper)),
		),
		fx.Annotate(
			repository.NewCartRepository,
			fx.As(new(commands.CartSweeper)),
		),
		fx.Annotate(
			gateway.NewRazorpayGateway,
			fx.As(new(shared.PaymentGateway)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
