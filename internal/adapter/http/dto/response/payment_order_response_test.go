package response

import (
	"testing"
	"time"

	"pdv_payments/internal/domain/entities"
)

func TestFromPaymentOrder(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	o := entities.PaymentOrder{
		ID:               "ord-1",
		Provider:         "pagarme",
		Method:           entities.PaymentMethodPix,
		Status:           entities.OrderStatusWaiting,
		AmountMinorUnits: 1000,
		QRPayload:        "000201",
		CreatedAt:        now,
		ExpiresAt:        now.Add(30 * time.Minute),
	}

	res := FromPaymentOrder(o, now.Add(90*time.Second))
	if res.Amount != "10.00" {
		t.Fatalf("expected amount 10.00, got %q", res.Amount)
	}
	if res.RemainingSeconds != 1710 {
		t.Fatalf("expected 1710 remaining seconds, got %d", res.RemainingSeconds)
	}
	if res.Status != "waiting" || res.Method != "pix" || res.QRPayload != "000201" {
		t.Fatalf("unexpected fields: %+v", res)
	}
	if res.LastError != nil {
		t.Fatalf("expected no error, got %+v", res.LastError)
	}
}

func TestFromPaymentOrder_TerminalHasNoCountdown(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	o := entities.PaymentOrder{
		ID:               "ord-1",
		Status:           entities.OrderStatusFailed,
		AmountMinorUnits: 5,
		ExpiresAt:        now.Add(time.Hour),
		LastError:        entities.NewErrorDetail(entities.ErrorKindGatewayInternalError, "boom", true).WithCode("500"),
	}

	res := FromPaymentOrder(o, now)
	if res.RemainingSeconds != 0 {
		t.Fatalf("expected no countdown, got %d", res.RemainingSeconds)
	}
	if res.Amount != "0.05" {
		t.Fatalf("expected amount 0.05, got %q", res.Amount)
	}
	if res.LastError == nil || res.LastError.Kind != "gateway_internal_error" || !res.LastError.Retryable || res.LastError.Code != "500" {
		t.Fatalf("unexpected last error: %+v", res.LastError)
	}
}

func TestFromPaymentOrders(t *testing.T) {
	res := FromPaymentOrders([]entities.PaymentOrder{{ID: "a"}, {ID: "b"}}, time.Now())
	if len(res) != 2 || res[0].ID != "a" || res[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", res)
	}

	empty := FromPaymentOrders(nil, time.Now())
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}
