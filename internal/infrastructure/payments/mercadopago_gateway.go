package payments

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/infrastructure/metrics"
	"pdv_payments/internal/infrastructure/tracing"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

const ProviderMercadoPago = "mercadopago"

// mercadoPagoPayments is the part of the SDK payment client this adapter calls.
type mercadoPagoPayments interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPagoGateway creates PIX/boleto payments through the official SDK.
// The SDK owns the HTTP round trip, so its errors go through ClassifyError.
type MercadoPagoGateway struct {
	client     mercadoPagoPayments
	normalizer *ResponseNormalizer
	timeout    time.Duration
	log        *logrus.Entry
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, normalizer *ResponseNormalizer, timeout time.Duration, log *logrus.Entry) (*MercadoPagoGateway, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithFields(logrus.Fields{"component": "gateway", "provider": ProviderMercadoPago})

	if strings.TrimSpace(accessToken) == "" {
		log.Warn("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.WithError(err).Error("[payment][gateway] failed creating sdk config")
		return nil, err
	}
	log.Info("[payment][gateway] Mercado Pago client initialized")

	return newMercadoPagoGateway(payment.NewClient(cfg), normalizer, timeout, log), nil
}

func newMercadoPagoGateway(client mercadoPagoPayments, normalizer *ResponseNormalizer, timeout time.Duration, log *logrus.Entry) *MercadoPagoGateway {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &MercadoPagoGateway{client: client, normalizer: normalizer, timeout: timeout, log: log}
}

func (g *MercadoPagoGateway) Name() string {
	return ProviderMercadoPago
}

func (g *MercadoPagoGateway) Create(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	reqMap, err := buildMercadoPagoPayment(o)
	if err != nil {
		return entities.GatewayFragment{}, asDetail(err)
	}

	// The request is assembled as JSON and decoded into the SDK type so field names
	// follow the public API documentation.
	b, err := json.Marshal(reqMap)
	if err != nil {
		return entities.GatewayFragment{}, asDetail(err)
	}
	var req payment.Request
	if err := json.Unmarshal(b, &req); err != nil {
		g.log.WithError(err).Error("[payment][gateway] payload unmarshal failed")
		return entities.GatewayFragment{}, asDetail(err)
	}

	raw, err := g.call(ctx, "create", func(ctx context.Context) (*payment.Response, error) {
		return g.client.Create(ctx, req)
	})
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Normalize(raw, o.Method, requestedTTL(o))
}

func (g *MercadoPagoGateway) Refetch(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.get(ctx, o, "refetch")
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Normalize(raw, o.Method, requestedTTL(o))
}

func (g *MercadoPagoGateway) CheckStatus(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.get(ctx, o, "check_status")
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Parse(raw, o.Method), nil
}

func (g *MercadoPagoGateway) get(ctx context.Context, o entities.PaymentOrder, operation string) ([]byte, error) {
	id, err := strconv.Atoi(o.GatewayOrderID)
	if err != nil {
		return nil, entities.NewErrorDetail(entities.ErrorKindResourceNotFound, "order has no valid Mercado Pago payment id", false)
	}
	return g.call(ctx, operation, func(ctx context.Context) (*payment.Response, error) {
		return g.client.Get(ctx, id)
	})
}

// call wraps one SDK round trip with the same timeout, span, metric and log shape as HTTPTransport.
func (g *MercadoPagoGateway) call(ctx context.Context, operation string, fn func(context.Context) (*payment.Response, error)) ([]byte, error) {
	if g == nil || g.client == nil {
		return nil, entities.NewErrorDetail(entities.ErrorKindAuthenticationFailed, ErrGatewayNotConfigured.Error(), false)
	}

	ctx, span := tracing.Tracer().Start(ctx, "gateway."+ProviderMercadoPago+"."+operation)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		d := ClassifyError(transportCause(ctx, err))
		metrics.GatewayRequestDuration.WithLabelValues(ProviderMercadoPago, operation, "error").Observe(elapsed.Seconds())
		metrics.GatewayErrors.WithLabelValues(ProviderMercadoPago, string(d.Kind)).Inc()
		span.SetStatus(codes.Error, string(d.Kind))
		g.log.WithFields(logrus.Fields{"operation": operation, "kind": d.Kind, "code": d.Code}).
			Warnf("[payment][gateway] sdk %s failed err=%v", operation, err)
		return nil, &d
	}
	metrics.GatewayRequestDuration.WithLabelValues(ProviderMercadoPago, operation, "ok").Observe(elapsed.Seconds())

	b, err := json.Marshal(resp)
	if err != nil {
		g.log.WithError(err).Error("[payment][gateway] response marshal failed")
		return nil, entities.NewErrorDetail(entities.ErrorKindIncompleteGatewayResponse, "could not read gateway response", true)
	}
	g.log.WithFields(logrus.Fields{
		"operation":           operation,
		"provider_payment_id": resp.ID,
		"provider_status":     resp.Status,
		"elapsed":             elapsed.String(),
	}).Info("[payment][gateway] sdk call success")
	return b, nil
}

func buildMercadoPagoPayment(o entities.PaymentOrder) (map[string]any, error) {
	c := o.CustomerSnapshot
	firstName, lastName := splitName(c.Name)
	docType := "CPF"
	if c.DocumentType == entities.TaxDocumentCompany {
		docType = "CNPJ"
	}

	methodID := ""
	switch o.Method {
	case entities.PaymentMethodPix:
		methodID = "pix"
	case entities.PaymentMethodBoleto:
		methodID = "bolbradesco"
	default:
		return nil, entities.NewErrorDetail(entities.ErrorKindValidationRejected, "unsupported payment method "+string(o.Method), false)
	}

	items := make([]map[string]any, 0, len(o.LineItems))
	for i, it := range o.LineItems {
		id := it.Code
		if id == "" {
			id = "item-" + strconv.Itoa(i+1)
		}
		items = append(items, map[string]any{
			"id":          id,
			"title":       it.TransmittableDescription(),
			"quantity":    it.Quantity,
			"unit_price":  MinorToDecimal(it.AmountMinorUnits).InexactFloat64(),
			"category_id": "others",
		})
	}

	description := "Venda PDV"
	if len(o.LineItems) == 1 {
		description = o.LineItems[0].TransmittableDescription()
	}

	return map[string]any{
		"transaction_amount": MinorToDecimal(o.AmountMinorUnits).InexactFloat64(),
		"description":        description,
		"payment_method_id":  methodID,
		"external_reference": o.ID,
		"date_of_expiration": o.ExpiresAt.Format("2006-01-02T15:04:05.000-07:00"),
		"payer": map[string]any{
			"email":      c.Email,
			"first_name": firstName,
			"last_name":  lastName,
			"identification": map[string]any{
				"type":   docType,
				"number": c.DocumentDigits(),
			},
			"address": map[string]any{
				"zip_code":      c.Address.ZipDigits(),
				"street_name":   c.Address.Street,
				"street_number": c.Address.Number,
				"neighborhood":  c.Address.Neighborhood,
				"city":          c.Address.City,
				"federal_unit":  strings.ToUpper(c.Address.State),
			},
		},
		"additional_info": map[string]any{"items": items},
	}, nil
}

// MinorToDecimal converts centavos to reais without going through float arithmetic.
func MinorToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
