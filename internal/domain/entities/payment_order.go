package entities

import (
	"errors"
	"fmt"
	"time"
)

// PaymentMethod is the instrument the customer pays with at the PDV.
type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPix || m == PaymentMethodBoleto
}

// OrderStatus is the lifecycle state of a PaymentOrder.
//
// Transitions:
//   - generating -> waiting | failed
//   - waiting    -> paid | expired | failed
//
// Every other state is terminal. Regeneration never re-enters generating;
// it creates a new order with RetryCount+1.
type OrderStatus string

const (
	OrderStatusGenerating OrderStatus = "generating"
	OrderStatusWaiting    OrderStatus = "waiting"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusExpired    OrderStatus = "expired"
	OrderStatusFailed     OrderStatus = "failed"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusGenerating: {OrderStatusWaiting, OrderStatusFailed},
	OrderStatusWaiting:    {OrderStatusPaid, OrderStatusExpired, OrderStatusFailed},
}

// CanTransition reports whether from -> to is a legal edge of the state machine.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusExpired || s == OrderStatusFailed
}

// PaymentOrder is the canonical, gateway-agnostic record of one payment attempt.
//
// Ownership:
//   - the order actor in the usecase layer is the only writer once the order exists;
//   - everyone else receives value copies (snapshots).
//
// Identity fields:
//   - ID is the local handle (uuid) handed to the PDV;
//   - GatewayOrderID/ChargeID/TransactionID come from the gateway and stay empty until
//     the create call succeeds.
//
// CustomerSnapshot and LineItems are copies of what was sent to the gateway, kept for
// audit and for regeneration. They are never re-derived from the cart.
type PaymentOrder struct {
	ID             string        `json:"id"`
	ParentID       string        `json:"parent_id,omitempty"`
	Provider       string        `json:"provider"`
	GatewayOrderID string        `json:"gateway_order_id,omitempty"`
	ChargeID       string        `json:"charge_id,omitempty"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	Method         PaymentMethod `json:"method"`

	AmountMinorUnits int64       `json:"amount_minor_units"`
	Status           OrderStatus `json:"status"`

	QRPayload  string `json:"qr_payload,omitempty"`
	QRImageURL string `json:"qr_image_url,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Barcode    string `json:"barcode,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	ExpiryDegraded bool       `json:"expiry_degraded,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`

	CustomerSnapshot Customer     `json:"customer"`
	LineItems        []LineItem   `json:"line_items"`
	LastError        *ErrorDetail `json:"last_error,omitempty"`
	RetryCount       int          `json:"retry_count"`

	// What the caller asked for, replayed by regeneration. Zero/empty means the default
	// expiry and routing rules.
	RequestedTTLSeconds int64  `json:"requested_ttl_seconds,omitempty"`
	RequestedProvider   string `json:"requested_provider,omitempty"`
}

// HasPaymentInstrument reports whether at least one critical field resolved.
func (o PaymentOrder) HasPaymentInstrument() bool {
	return o.QRPayload != "" || o.QRImageURL != "" || o.PaymentURL != "" || o.Barcode != ""
}

// Remaining is the countdown shown next to the QR code.
func (o PaymentOrder) Remaining(now time.Time) time.Duration {
	if o.ExpiresAt.IsZero() || !now.Before(o.ExpiresAt) {
		return 0
	}
	return o.ExpiresAt.Sub(now)
}

// Clone returns a deep copy, so snapshots handed to listeners and persistence
// cannot alias the actor-owned order.
func (o PaymentOrder) Clone() PaymentOrder {
	c := o
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	if o.LastError != nil {
		e := *o.LastError
		c.LastError = &e
	}
	if o.LineItems != nil {
		c.LineItems = append([]LineItem(nil), o.LineItems...)
	}
	return c
}

// TransitionTo moves the order to next, enforcing the transition table and the
// paidAt/lastError invariants. It is called only by the owning actor.
func (o *PaymentOrder) TransitionTo(next OrderStatus, at time.Time, detail *ErrorDetail) error {
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	if next == OrderStatusWaiting && !o.HasPaymentInstrument() {
		return fmt.Errorf("%w: no payment instrument resolved", ErrInvalidTransition)
	}

	o.Status = next
	o.UpdatedAt = at
	switch next {
	case OrderStatusPaid:
		paidAt := at
		o.PaidAt = &paidAt
		o.LastError = nil
	case OrderStatusFailed:
		o.LastError = detail
	default:
		o.LastError = nil
	}
	return nil
}
