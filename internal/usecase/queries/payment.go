package queries

import (
	"context"

	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound = errs.New("payment not found")
	ErrPaymentAccess   = errs.New("payment access denied")
)

type PaymentQueries interface {
	GetByOrderID(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) (*PaymentView, error)
}

type PaymentReadStore interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*PaymentView, error)
}

type paymentQueriesImpl struct {
	readStore PaymentReadStore
}

func NewPaymentQueries(readStore PaymentReadStore) PaymentQueries {
	return &paymentQueriesImpl{readStore: readStore}
}

func (q *paymentQueriesImpl) GetByOrderID(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) (*PaymentView, error) {
	view, err := q.readStore.FindByOrderID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if view.UserID != actorID && !role.CanManageOrders() {
		return nil, ErrPaymentAccess
	}
	return view, nil
}
