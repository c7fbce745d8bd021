package payments

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"pdv_payments/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		kind      entities.ErrorKind
		retryable bool
		code      string
	}{
		{"pagarme internal error code", 500, `{"errors":[{"code":"500"}]}`, entities.ErrorKindGatewayInternalError, true, "500"},
		{"unauthorized status", 401, `{"message":"Authorization has been denied for this request."}`, entities.ErrorKindAuthenticationFailed, false, ""},
		{"forbidden status", 403, ``, entities.ErrorKindAuthenticationFailed, false, ""},
		{"not found", 404, `{"message":"Order not found"}`, entities.ErrorKindResourceNotFound, false, ""},
		{"unprocessable", 422, `{"message":"The request is invalid.","errors":{"customer.document":["invalid"]}}`, entities.ErrorKindValidationRejected, false, "validation_error"},
		{"pagbank error_messages", 400, `{"error_messages":[{"code":"40002","description":"invalid_parameter","parameter_name":"customer.tax_id"}]}`, entities.ErrorKindValidationRejected, false, "40002"},
		{"mercadopago cause code", 400, `{"message":"Customer not found","error":"bad_request","status":400,"cause":[{"code":2002,"description":"Customer not found"}]}`, entities.ErrorKindValidationRejected, false, "2002"},
		{"antifraud decline on 400", 400, `{"errors":[{"code":"antifraud_reproved","message":"denied"}]}`, entities.ErrorKindPaymentDeclined, false, "antifraud_reproved"},
		{"insufficient funds", 402, `{"code":"insufficient_funds"}`, entities.ErrorKindPaymentDeclined, false, "insufficient_funds"},
		{"gateway timeout", 504, ``, entities.ErrorKindTimeout, true, ""},
		{"rate limited", 429, `{"message":"slow down"}`, entities.ErrorKindGatewayInternalError, true, ""},
		{"unknown code on 418", 418, `{"errors":[{"code":"teapot"}]}`, entities.ErrorKindGatewayInternalError, true, "teapot"},
		{"html body", 502, `<html>Bad Gateway</html>`, entities.ErrorKindGatewayInternalError, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.status, []byte(tc.body))
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.retryable, got.Retryable)
			assert.Equal(t, tc.code, got.Code)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestClassify_InternalErrorHidesProviderText(t *testing.T) {
	got := Classify(500, []byte(`{"message":"NullReferenceException at Foo.Bar"}`))
	assert.Equal(t, retryShortlyMessage, got.Message)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind entities.ErrorKind
		code string
	}{
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), entities.ErrorKindTimeout, ""},
		{"canceled", context.Canceled, entities.ErrorKindCanceled, ""},
		{"net timeout", timeoutErr{}, entities.ErrorKindTimeout, ""},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, entities.ErrorKindNetworkUnavailable, ""},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.pagar.me"}, entities.ErrorKindNetworkUnavailable, ""},
		{"sdk unauthorized", errors.New(`{"message":"invalid access token","error":"unauthorized","status":401}`), entities.ErrorKindAuthenticationFailed, ""},
		{"sdk invalid users", errors.New(`{"message":"Invalid users involved","status":400,"cause":[{"code":2034}]}`), entities.ErrorKindValidationRejected, "2034"},
		{"sdk customer not found", errors.New(`{"cause":[{"code":2002,"description":"Customer not found"}]}`), entities.ErrorKindValidationRejected, "2002"},
		{"sdk bad request", errors.New(`{"error":"bad_request","status":400}`), entities.ErrorKindValidationRejected, ""},
		{"unknown", errors.New("boom"), entities.ErrorKindGatewayInternalError, ""},
		{"already classified", entities.NewErrorDetail(entities.ErrorKindPaymentDeclined, "no", false), entities.ErrorKindPaymentDeclined, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError(tc.err)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, IsRetryable(tc.kind), got.Retryable)
		})
	}
}
