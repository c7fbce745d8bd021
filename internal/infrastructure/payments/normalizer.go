package payments

import (
	"strings"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Fragment is the canonical slice of an order that a gateway response can fill.
// The usecase merges it into the PaymentOrder it owns.
type Fragment = entities.GatewayFragment

type fieldStrategy func(d document) (string, bool)

func at(path string) fieldStrategy {
	return func(d document) (string, bool) { return d.str(path) }
}

func linkAt(path string, relOrMedia ...string) fieldStrategy {
	return func(d document) (string, bool) { return d.link(path, relOrMedia...) }
}

// base64Image turns Mercado Pago's inline PNG into something an <img> can render.
func base64Image(path string) fieldStrategy {
	return func(d document) (string, bool) {
		s, ok := d.str(path)
		if !ok {
			return "", false
		}
		if strings.HasPrefix(s, "data:") || strings.HasPrefix(s, "http") {
			return s, true
		}
		return "data:image/png;base64," + s, true
	}
}

// Strategy tables, highest priority first: transaction level, then charge level, then order level.
var (
	qrPayloadStrategies = []fieldStrategy{
		at("charges.0.last_transaction.qr_code"),
		at("point_of_interaction.transaction_data.qr_code"),
		at("charges.0.qr_code"),
		at("charges.0.pix.qr_code"),
		at("qr_codes.0.text"),
		at("qr_code"),
		at("emv"),
		at("pix_copia_e_cola"),
	}

	qrImageURLStrategies = []fieldStrategy{
		at("charges.0.last_transaction.qr_code_url"),
		base64Image("point_of_interaction.transaction_data.qr_code_base64"),
		at("charges.0.qr_code_url"),
		linkAt("qr_codes.0.links", "QRCODE.PNG", "image/png"),
		at("qr_code_url"),
	}

	paymentURLStrategies = []fieldStrategy{
		at("charges.0.last_transaction.url"),
		at("charges.0.last_transaction.pdf"),
		at("point_of_interaction.transaction_data.ticket_url"),
		at("transaction_details.external_resource_url"),
		linkAt("charges.0.links", "application/pdf"),
		at("charges.0.payment_url"),
		at("payment_url"),
		at("checkout_url"),
	}

	barcodeStrategies = []fieldStrategy{
		at("charges.0.last_transaction.line"),
		at("charges.0.last_transaction.barcode"),
		at("barcode.content"),
		at("charges.0.payment_method.boleto.formatted_barcode"),
		at("charges.0.payment_method.boleto.barcode"),
		at("digitable_line"),
		at("barcode"),
	}

	gatewayOrderIDStrategies = []fieldStrategy{at("id")}
	chargeIDStrategies       = []fieldStrategy{at("charges.0.id")}
	transactionIDStrategies  = []fieldStrategy{
		at("charges.0.last_transaction.id"),
		at("point_of_interaction.transaction_data.transaction_id"),
	}

	pixExpiryPaths = []string{
		"charges.0.last_transaction.expires_at",
		"date_of_expiration",
		"charges.0.expires_at",
		"qr_codes.0.expiration_date",
		"expires_at",
		"expiration_date",
	}

	boletoExpiryPaths = []string{
		"charges.0.last_transaction.due_at",
		"date_of_expiration",
		"charges.0.due_at",
		"charges.0.payment_method.boleto.due_date",
		"due_date",
		"expires_at",
		"expiration_date",
	}

	statusPaths = []string{
		"charges.0.last_transaction.status",
		"charges.0.status",
		"status",
	}
)

var gatewayStatuses = map[string]entities.GatewayStatus{
	"paid":     entities.GatewayStatusPaid,
	"approved": entities.GatewayStatusPaid,

	"pending":         entities.GatewayStatusPending,
	"waiting_payment": entities.GatewayStatusPending,
	"waiting":         entities.GatewayStatusPending,
	"processing":      entities.GatewayStatusPending,
	"in_process":      entities.GatewayStatusPending,
	"in_analysis":     entities.GatewayStatusPending,
	"generated":       entities.GatewayStatusPending,
	"authorized":      entities.GatewayStatusPending,
	"created":         entities.GatewayStatusPending,

	"expired": entities.GatewayStatusExpired,

	"canceled":  entities.GatewayStatusFailed,
	"cancelled": entities.GatewayStatusFailed,
	"failed":    entities.GatewayStatusFailed,
	"rejected":  entities.GatewayStatusFailed,
	"declined":  entities.GatewayStatusFailed,
}

// ResponseNormalizer maps heterogeneous gateway bodies onto a Fragment.
type ResponseNormalizer struct {
	clock         clockwork.Clock
	defaultExpiry time.Duration
	log           *logrus.Entry
}

func NewResponseNormalizer(clock clockwork.Clock, defaultExpiry time.Duration, log *logrus.Entry) *ResponseNormalizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if defaultExpiry <= 0 {
		defaultExpiry = 30 * time.Minute
	}
	if log == nil {
		log = logging.Discard()
	}
	return &ResponseNormalizer{clock: clock, defaultExpiry: defaultExpiry, log: log.WithField("component", "normalizer")}
}

// Parse extracts whatever the body carries without judging completeness.
// Used for status checks, where a paid order may no longer echo its QR code.
func (n *ResponseNormalizer) Parse(raw []byte, method entities.PaymentMethod) Fragment {
	d := parseDocument(raw)
	f := Fragment{
		GatewayOrderID: first(d, gatewayOrderIDStrategies),
		ChargeID:       first(d, chargeIDStrategies),
		TransactionID:  first(d, transactionIDStrategies),
		QRPayload:      first(d, qrPayloadStrategies),
		QRImageURL:     first(d, qrImageURLStrategies),
		PaymentURL:     first(d, paymentURLStrategies),
		Barcode:        first(d, barcodeStrategies),
		Status:         resolveStatus(d),
	}

	paths := pixExpiryPaths
	if method == entities.PaymentMethodBoleto {
		paths = boletoExpiryPaths
	}
	for _, p := range paths {
		if t, ok := d.time(p); ok {
			f.ExpiresAt = t
			break
		}
	}
	return f
}

// Normalize is Parse plus the creation rules: a missing expiry is synthesized from
// fallbackTTL (or the configured default) and flagged, and a body with no payment
// instrument at all is IncompleteGatewayResponse. An expiry the gateway did send is kept
// even when it already passed; the order then expires instead of showing a dead QR code.
// The fragment is returned either way so the caller can re-fetch by its gateway id.
func (n *ResponseNormalizer) Normalize(raw []byte, method entities.PaymentMethod, fallbackTTL time.Duration) (Fragment, error) {
	f := n.Parse(raw, method)
	now := n.clock.Now().UTC()

	switch {
	case f.ExpiresAt.IsZero():
		ttl := fallbackTTL
		if ttl <= 0 {
			ttl = n.defaultExpiry
		}
		n.log.WithFields(logrus.Fields{
			"gateway_order_id": f.GatewayOrderID,
			"fallback_ttl":     ttl.String(),
		}).Warn("[payment][normalizer] expiry missing; using local countdown")
		f.ExpiresAt = now.Add(ttl)
		f.ExpiryDegraded = true
	case !f.ExpiresAt.After(now):
		n.log.WithFields(logrus.Fields{
			"gateway_order_id": f.GatewayOrderID,
			"gateway_expires":  f.ExpiresAt,
		}).Warn("[payment][normalizer] gateway expiry already passed")
	}

	if !f.HasPaymentInstrument() {
		return f, entities.NewErrorDetail(entities.ErrorKindIncompleteGatewayResponse,
			"payment gateway response had no QR code, link or barcode", true)
	}
	return f, nil
}

func first(d document, strategies []fieldStrategy) string {
	for _, s := range strategies {
		if v, ok := s(d); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveStatus reports paid if any level says paid; otherwise the highest-priority
// recognized status wins.
func resolveStatus(d document) entities.GatewayStatus {
	resolved := entities.GatewayStatusUnknown
	for _, p := range statusPaths {
		s, ok := d.str(p)
		if !ok {
			continue
		}
		st, known := gatewayStatuses[strings.ToLower(s)]
		if !known {
			continue
		}
		if st == entities.GatewayStatusPaid {
			return st
		}
		if resolved == entities.GatewayStatusUnknown {
			resolved = st
		}
	}
	return resolved
}
