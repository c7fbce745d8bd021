package entities

import "time"

// GatewayStatus is a provider status folded onto the four outcomes the order cares about.
type GatewayStatus string

const (
	GatewayStatusUnknown GatewayStatus = ""
	GatewayStatusPending GatewayStatus = "pending"
	GatewayStatusPaid    GatewayStatus = "paid"
	GatewayStatusExpired GatewayStatus = "expired"
	GatewayStatusFailed  GatewayStatus = "failed"
)

// GatewayFragment is what one gateway response contributes to a PaymentOrder.
type GatewayFragment struct {
	GatewayOrderID string
	ChargeID       string
	TransactionID  string

	QRPayload  string
	QRImageURL string
	PaymentURL string
	Barcode    string

	ExpiresAt      time.Time
	ExpiryDegraded bool

	Status GatewayStatus
}

func (f GatewayFragment) HasPaymentInstrument() bool {
	return f.QRPayload != "" || f.QRImageURL != "" || f.PaymentURL != "" || f.Barcode != ""
}

// ApplyTo copies gateway identity and payment instrument onto an order still in Generating.
func (f GatewayFragment) ApplyTo(o *PaymentOrder) {
	o.GatewayOrderID = f.GatewayOrderID
	o.ChargeID = f.ChargeID
	o.TransactionID = f.TransactionID
	o.QRPayload = f.QRPayload
	o.QRImageURL = f.QRImageURL
	o.PaymentURL = f.PaymentURL
	o.Barcode = f.Barcode
	o.ExpiresAt = f.ExpiresAt
	o.ExpiryDegraded = f.ExpiryDegraded
}
