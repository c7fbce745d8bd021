package interfaces

import (
	"context"
	"pdv_payments/internal/domain/entities"
)

// IPaymentGateway abstracts one external payment provider (Pagar.me, PagBank, Mercado Pago).
//
// Every failure is returned as *entities.ErrorDetail.
//   - Create sends the order once. order.ID doubles as the idempotency key and
//     order.ExpiresAt carries the requested expiry. On IncompleteGatewayResponse the
//     fragment still carries the gateway id, so the caller can Refetch.
//   - Refetch reads the same gateway order back and applies the creation rules again.
//     It never creates a second charge.
//   - CheckStatus reads the current status without requiring the QR code to be echoed.
type IPaymentGateway interface {
	Name() string
	Create(ctx context.Context, order entities.PaymentOrder) (entities.GatewayFragment, error)
	Refetch(ctx context.Context, order entities.PaymentOrder) (entities.GatewayFragment, error)
	CheckStatus(ctx context.Context, order entities.PaymentOrder) (entities.GatewayFragment, error)
}

// IGatewaySelector picks the adapter for a new order.
type IGatewaySelector interface {
	Select(order entities.PaymentOrder) (IPaymentGateway, error)
	Get(name string) (IPaymentGateway, error)
}
