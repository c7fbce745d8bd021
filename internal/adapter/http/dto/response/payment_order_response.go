package response

import (
	"time"

	"pdv_payments/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type ErrorDetailResponse struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Code      string `json:"code,omitempty"`
}

type PaymentOrderResponse struct {
	ID             string `json:"id"`
	ParentID       string `json:"parent_id,omitempty"`
	Provider       string `json:"provider"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	ChargeID       string `json:"charge_id,omitempty"`
	TransactionID  string `json:"transaction_id,omitempty"`
	Method         string `json:"method"`
	Status         string `json:"status"`

	AmountMinorUnits int64  `json:"amount_minor_units"`
	Amount           string `json:"amount"`

	QRPayload  string `json:"qr_payload,omitempty"`
	QRImageURL string `json:"qr_image_url,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Barcode    string `json:"barcode,omitempty"`

	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	ExpiryDegraded   bool       `json:"expiry_degraded,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`

	LastError  *ErrorDetailResponse `json:"last_error,omitempty"`
	RetryCount int                  `json:"retry_count"`
}

// FromPaymentOrder renders an order snapshot; now drives the countdown, which is
// only meaningful while the order is waiting.
func FromPaymentOrder(o entities.PaymentOrder, now time.Time) PaymentOrderResponse {
	res := PaymentOrderResponse{
		ID:               o.ID,
		ParentID:         o.ParentID,
		Provider:         o.Provider,
		GatewayOrderID:   o.GatewayOrderID,
		ChargeID:         o.ChargeID,
		TransactionID:    o.TransactionID,
		Method:           string(o.Method),
		Status:           string(o.Status),
		AmountMinorUnits: o.AmountMinorUnits,
		Amount:           decimal.New(o.AmountMinorUnits, -2).StringFixed(2),
		QRPayload:        o.QRPayload,
		QRImageURL:       o.QRImageURL,
		PaymentURL:       o.PaymentURL,
		Barcode:          o.Barcode,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		ExpiresAt:        o.ExpiresAt,
		ExpiryDegraded:   o.ExpiryDegraded,
		PaidAt:           o.PaidAt,
		RetryCount:       o.RetryCount,
	}
	if o.Status == entities.OrderStatusWaiting {
		res.RemainingSeconds = int64(o.Remaining(now) / time.Second)
	}
	if d := o.LastError; d != nil {
		res.LastError = &ErrorDetailResponse{Kind: string(d.Kind), Message: d.Message, Retryable: d.Retryable, Code: d.Code}
	}
	return res
}

func FromPaymentOrders(orders []entities.PaymentOrder, now time.Time) []PaymentOrderResponse {
	out := make([]PaymentOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromPaymentOrder(o, now))
	}
	return out
}

// StatusEvent is pushed over the order websocket on every transition.
type StatusEvent struct {
	Type  string               `json:"type"`
	Order PaymentOrderResponse `json:"order"`
}

const StatusEventType = "status_changed"
