package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	mock_interfaces "pdv_payments/internal/usecase/interfaces/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPersister_SavesSnapshots(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPaymentOrderRepository(ctrl)

	saved := make(chan entities.PaymentOrder, 2)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o entities.PaymentOrder) error {
			saved <- o
			return nil
		}).Times(2)

	p := NewPersister(repo, 4, logging.Discard())
	assert.True(t, p.Enqueue(entities.PaymentOrder{ID: "ord-1", Status: entities.OrderStatusGenerating}))
	assert.True(t, p.Enqueue(entities.PaymentOrder{ID: "ord-1", Status: entities.OrderStatusWaiting}))
	require.NoError(t, p.Close(context.Background()))

	assert.Equal(t, entities.OrderStatusGenerating, (<-saved).Status)
	assert.Equal(t, entities.OrderStatusWaiting, (<-saved).Status)
}

func TestPersister_DropsWhenBufferIsFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPaymentOrderRepository(ctrl)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, entities.PaymentOrder) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			return nil
		}).Times(2)

	p := NewPersister(repo, 1, logging.Discard())
	require.True(t, p.Enqueue(entities.PaymentOrder{ID: "ord-1"}))
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not pick up the first snapshot")
	}

	assert.True(t, p.Enqueue(entities.PaymentOrder{ID: "ord-2"}))
	assert.False(t, p.Enqueue(entities.PaymentOrder{ID: "ord-3"}), "a full buffer must not block the caller")

	close(release)
	require.NoError(t, p.Close(context.Background()))
}

func TestPersister_SaveFailureIsOnlyLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPaymentOrderRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("throttled")).Times(1)

	p := NewPersister(repo, 1, logging.Discard())
	assert.True(t, p.Enqueue(entities.PaymentOrder{ID: "ord-1"}))
	require.NoError(t, p.Close(context.Background()))

	assert.False(t, p.Enqueue(entities.PaymentOrder{ID: "ord-2"}))
	require.NoError(t, p.Close(context.Background()))
}

func TestPersister_CloseHonorsContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPaymentOrderRepository(ctrl)
	release := make(chan struct{})
	defer close(release)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, entities.PaymentOrder) error {
			<-release
			return nil
		}).Times(1)

	p := NewPersister(repo, 1, logging.Discard())
	p.Enqueue(entities.PaymentOrder{ID: "ord-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Close(ctx), context.DeadlineExceeded)
}
