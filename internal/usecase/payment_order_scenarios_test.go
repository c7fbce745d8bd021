package usecase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pdv_payments/internal/config"
	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/infrastructure/payments"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPagarmeUseCase wires the real Pagar.me adapter against a fake gateway server.
func newPagarmeUseCase(t *testing.T, handler http.HandlerFunc) (*PaymentOrderUseCase, *clockwork.FakeClock) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClockAt(epoch)
	log := logging.Discard()
	normalizer := payments.NewResponseNormalizer(clock, DefaultExpiry, log)
	gateway, err := payments.NewPagarmeGateway("sk_test", srv.URL, normalizer, payments.WithLogger(log))
	require.NoError(t, err)
	router, err := payments.NewGatewayRouter(payments.ProviderPagarme, "", gateway)
	require.NoError(t, err)

	uc := NewPaymentOrderUseCase(router, nil, config.LifecycleConfig{PollInterval: pollInterval}, WithClock(clock), WithLogger(log))
	t.Cleanup(func() { _ = uc.Shutdown(context.Background()) })
	return uc, clock
}

func TestScenario_Pix1000ReachesWaiting(t *testing.T) {
	uc, clock := newPagarmeUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{
			"id": "or_1", "status": "pending",
			"charges": [{"id": "ch_1", "status": "pending", "last_transaction": {
				"id": "tran_1", "status": "waiting_payment",
				"qr_code": "00020101021226820014br.gov.bcb.pix2560pix.example.com/qr/v2/1520400005303986540510.005802BR6304ABCD",
				"qr_code_url": "https://api.pagar.me/core/v5/transactions/tran_1/qrcode",
				"expires_at": "2024-05-10T12:30:00Z"}}]}`)
	})

	o, err := uc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusWaiting, o.Status)
	assert.True(t, strings.HasPrefix(o.QRPayload, "000201"))
	assert.InDelta(t, 1800, o.Remaining(clock.Now()).Seconds(), 1)
	assert.Equal(t, "or_1", o.GatewayOrderID)
	assert.Equal(t, "ch_1", o.ChargeID)
	assert.Equal(t, "tran_1", o.TransactionID)
}

func TestScenario_Gateway500FailsRetryable(t *testing.T) {
	uc, _ := newPagarmeUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"errors":[{"code":"500"}]}`)
	})

	o, err := uc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusFailed, o.Status)
	require.NotNil(t, o.LastError)
	assert.Equal(t, entities.ErrorKindGatewayInternalError, o.LastError.Kind)
	assert.True(t, o.LastError.Retryable)
	assert.Contains(t, o.LastError.Message, "try again shortly")
}

func TestScenario_NoCriticalFieldsFailsAfterOneRetry(t *testing.T) {
	var posts, gets atomic.Int32
	uc, _ := newPagarmeUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts.Add(1)
		case http.MethodGet:
			gets.Add(1)
			assert.Equal(t, "/orders/or_1", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"id":"or_1","status":"pending","charges":[{"id":"ch_1","status":"pending"}]}`)
	})

	o, err := uc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusFailed, o.Status)
	require.NotNil(t, o.LastError)
	assert.Equal(t, entities.ErrorKindIncompleteGatewayResponse, o.LastError.Kind)
	assert.False(t, o.LastError.Retryable)
	assert.Equal(t, int32(1), posts.Load())
	assert.Equal(t, int32(1), gets.Load())
}

func TestScenario_NoCriticalFieldsNorGatewayIDRetriesCreateOnce(t *testing.T) {
	var posts, gets atomic.Int32
	keys := make(chan string, 4)
	uc, _ := newPagarmeUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts.Add(1)
			keys <- r.Header.Get("Idempotency-Key")
		case http.MethodGet:
			gets.Add(1)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"pending","charges":[{"status":"pending"}]}`)
	})

	o, err := uc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusFailed, o.Status)
	require.NotNil(t, o.LastError)
	assert.Equal(t, entities.ErrorKindIncompleteGatewayResponse, o.LastError.Kind)
	assert.False(t, o.LastError.Retryable)
	assert.Equal(t, int32(2), posts.Load())
	assert.Equal(t, int32(0), gets.Load())
	assert.Equal(t, o.ID, <-keys)
	assert.Equal(t, o.ID, <-keys)
}

func TestScenario_ThirtyOneMinutesWithoutPayment(t *testing.T) {
	var paid atomic.Bool
	uc, clock := newPagarmeUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			status := "pending"
			if paid.Load() {
				status = "paid"
			}
			_, _ = io.WriteString(w, `{"id":"or_1","status":"`+status+`"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"or_1","status":"pending","charges":[{"id":"ch_1","last_transaction":{"id":"tran_1","qr_code":"000201010212pix","expires_at":"2024-05-10T12:30:00Z"}}]}`)
	})

	var transitions atomic.Int32
	events := make(chan entities.PaymentOrder, 8)
	uc.Subscribe(func(o entities.PaymentOrder) {
		transitions.Add(1)
		events <- o
	})

	o, err := uc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusWaiting, o.Status)
	<-events

	clock.Advance(31 * time.Minute)
	select {
	case ev := <-events:
		assert.Equal(t, entities.OrderStatusExpired, ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatalf("order did not expire")
	}

	paid.Store(true)
	for i := 0; i < 5; i++ {
		clock.Advance(pollInterval)
	}
	time.Sleep(100 * time.Millisecond)

	got, err := uc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusExpired, got.Status)
	assert.Nil(t, got.PaidAt)
	assert.Equal(t, int32(2), transitions.Load())
}
