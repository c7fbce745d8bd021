package interfaces

import (
	"context"
	"pdv_payments/internal/domain/entities"
)

// IPaymentOrderRepository is the persistence boundary for order snapshots.
//
// Save is an upsert of the full snapshot and is called once per transition, so it must
// tolerate seeing the same order many times. GetByID returns a zero order (empty ID)
// when nothing is stored, like the other repositories in this service.
type IPaymentOrderRepository interface {
	Save(ctx context.Context, o entities.PaymentOrder) error
	GetByID(ctx context.Context, id string) (entities.PaymentOrder, error)
	ListByParentID(ctx context.Context, parentID string) ([]entities.PaymentOrder, error)
}
