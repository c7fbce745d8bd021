package repository

import (
	"context"
	"sort"
	"sync"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"
)

// PaymentOrderMemoryRepository keeps snapshots in process memory. It backs
// PERSISTENCE_DRIVER=memory for local runs and tests.
type PaymentOrderMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]entities.PaymentOrder
}

var _ interfaces.IPaymentOrderRepository = (*PaymentOrderMemoryRepository)(nil)

func NewPaymentOrderMemoryRepository() *PaymentOrderMemoryRepository {
	return &PaymentOrderMemoryRepository{orders: make(map[string]entities.PaymentOrder)}
}

func (r *PaymentOrderMemoryRepository) Save(ctx context.Context, o entities.PaymentOrder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.orders[o.ID] = o.Clone()
	r.mu.Unlock()
	return nil
}

func (r *PaymentOrderMemoryRepository) GetByID(_ context.Context, id string) (entities.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return entities.PaymentOrder{}, nil
	}
	return o.Clone(), nil
}

func (r *PaymentOrderMemoryRepository) ListByParentID(_ context.Context, parentID string) ([]entities.PaymentOrder, error) {
	r.mu.RLock()
	var out []entities.PaymentOrder
	for _, o := range r.orders {
		if parentID != "" && o.ParentID == parentID {
			out = append(out, o.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
