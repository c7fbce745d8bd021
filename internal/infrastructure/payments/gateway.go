package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"pdv_payments/internal/domain/entities"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

// sender is the slice of HTTPTransport the REST adapters use.
type sender interface {
	Send(ctx context.Context, r GatewayRequest) (GatewayResponse, error)
}

// restGateway carries the create/read flow shared by providers that expose
// POST /orders and GET /orders/{id}.
type restGateway struct {
	name       string
	transport  sender
	normalizer *ResponseNormalizer
	buildBody  func(o entities.PaymentOrder) (map[string]any, error)
}

func (g *restGateway) Name() string {
	return g.name
}

func (g *restGateway) Create(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	payload, err := g.buildBody(o)
	if err != nil {
		return entities.GatewayFragment{}, asDetail(err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return entities.GatewayFragment{}, entities.NewErrorDetail(entities.ErrorKindValidationRejected, "could not encode gateway request", false)
	}

	resp, err := g.transport.Send(ctx, GatewayRequest{
		Operation:      "create",
		Method:         http.MethodPost,
		Path:           "/orders",
		Body:           body,
		IdempotencyKey: o.ID,
	})
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Normalize(resp.Body, o.Method, requestedTTL(o))
}

func (g *restGateway) Refetch(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.fetch(ctx, o, "refetch")
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Normalize(raw, o.Method, requestedTTL(o))
}

func (g *restGateway) CheckStatus(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.fetch(ctx, o, "check_status")
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Parse(raw, o.Method), nil
}

func (g *restGateway) fetch(ctx context.Context, o entities.PaymentOrder, operation string) ([]byte, error) {
	if o.GatewayOrderID == "" {
		return nil, entities.NewErrorDetail(entities.ErrorKindResourceNotFound, "order has no gateway id", false)
	}
	resp, err := g.transport.Send(ctx, GatewayRequest{
		Operation: operation,
		Method:    http.MethodGet,
		Path:      "/orders/" + url.PathEscape(o.GatewayOrderID),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// requestedTTL is the expiry the caller asked for, used when the gateway does not echo one.
func requestedTTL(o entities.PaymentOrder) time.Duration {
	if o.ExpiresAt.IsZero() || !o.ExpiresAt.After(o.CreatedAt) {
		return 0
	}
	return o.ExpiresAt.Sub(o.CreatedAt)
}

func asDetail(err error) error {
	var d *entities.ErrorDetail
	if errors.As(err, &d) {
		return d
	}
	return entities.NewErrorDetail(entities.ErrorKindValidationRejected, err.Error(), false)
}
