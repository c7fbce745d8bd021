package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/infrastructure/metrics"
	"pdv_payments/internal/infrastructure/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultGatewayTimeout = 30 * time.Second
	maxResponseBodyBytes  = 4 << 20
)

// Authenticator applies per-call credentials to an outbound request.
type Authenticator interface {
	Apply(req *http.Request)
}

// BearerAuth is used by PagBank.
type BearerAuth struct {
	Token string
}

func (a BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// BasicAuth is used by Pagar.me: the secret key is the user and the password is empty.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) Apply(req *http.Request) {
	token := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	req.Header.Set("Authorization", "Basic "+token)
}

// GatewayRequest is a single outbound call. Path is appended to the transport base URL.
type GatewayRequest struct {
	Operation      string
	Method         string
	Path           string
	Body           []byte
	IdempotencyKey string
}

type GatewayResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// HTTPTransport sends JSON requests to one gateway. Failures come back as
// *entities.ErrorDetail, never as raw transport errors.
type HTTPTransport struct {
	provider string
	baseURL  string
	auth     Authenticator
	client   *http.Client
	timeout  time.Duration
	log      *logrus.Entry
}

type TransportOption func(*HTTPTransport)

func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) TransportOption {
	return func(t *HTTPTransport) {
		if l != nil {
			t.log = l
		}
	}
}

func NewHTTPTransport(provider, baseURL string, auth Authenticator, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		auth:     auth,
		timeout:  defaultGatewayTimeout,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: t.timeout}
	}
	t.log = t.log.WithFields(logrus.Fields{"component": "gateway_transport", "provider": provider})
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, r GatewayRequest) (GatewayResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "gateway."+t.provider+"."+r.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.provider", t.provider),
		attribute.String("http.method", r.Method),
		attribute.String("http.path", r.Path),
	)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, t.baseURL+r.Path, body)
	if err != nil {
		d := entities.NewErrorDetail(entities.ErrorKindValidationRejected, fmt.Sprintf("invalid gateway request: %v", err), false)
		return GatewayResponse{}, d
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.IdempotencyKey)
		req.Header.Set("X-Idempotency-Key", r.IdempotencyKey)
	}
	if t.auth != nil {
		t.auth.Apply(req)
	}

	t.log.WithFields(logrus.Fields{
		"operation": r.Operation,
		"method":    r.Method,
		"path":      r.Path,
		"headers":   logging.RedactHeaders(req.Header),
		"body":      logging.RedactJSON(r.Body),
	}).Debug("[payment][gateway] request")

	start := time.Now()
	resp, err := t.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		d := ClassifyError(transportCause(ctx, err))
		t.observe(r.Operation, "error", elapsed, d.Kind)
		span.SetStatus(codes.Error, string(d.Kind))
		t.log.WithFields(logrus.Fields{
			"operation": r.Operation,
			"kind":      d.Kind,
			"elapsed":   elapsed.String(),
		}).Warnf("[payment][gateway] no response err=%v", err)
		return GatewayResponse{}, &d
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		d := ClassifyError(transportCause(ctx, err))
		t.observe(r.Operation, "error", elapsed, d.Kind)
		span.SetStatus(codes.Error, string(d.Kind))
		return GatewayResponse{}, &d
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	t.log.WithFields(logrus.Fields{
		"operation": r.Operation,
		"status":    resp.StatusCode,
		"elapsed":   elapsed.String(),
		"body":      logging.RedactJSON(raw),
	}).Debug("[payment][gateway] response")

	out := GatewayResponse{StatusCode: resp.StatusCode, Body: raw, Headers: resp.Header}
	if resp.StatusCode >= http.StatusBadRequest {
		d := Classify(resp.StatusCode, raw)
		t.observe(r.Operation, "error", elapsed, d.Kind)
		span.SetStatus(codes.Error, string(d.Kind))
		t.log.WithFields(logrus.Fields{
			"operation": r.Operation,
			"status":    resp.StatusCode,
			"kind":      d.Kind,
			"code":      d.Code,
		}).Warn("[payment][gateway] error response")
		return out, &d
	}

	t.observe(r.Operation, "ok", elapsed, "")
	return out, nil
}

func (t *HTTPTransport) observe(operation, outcome string, elapsed time.Duration, kind entities.ErrorKind) {
	metrics.GatewayRequestDuration.WithLabelValues(t.provider, operation, outcome).Observe(elapsed.Seconds())
	if kind != "" {
		metrics.GatewayErrors.WithLabelValues(t.provider, string(kind)).Inc()
	}
}

// transportCause prefers the context error so a client-side deadline reads as a timeout
// rather than as a generic network failure.
func transportCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
