package entities

import "fmt"

// ErrorKind is the closed taxonomy every gateway/transport failure is folded into.
type ErrorKind string

const (
	ErrorKindAuthenticationFailed      ErrorKind = "authentication_failed"
	ErrorKindResourceNotFound          ErrorKind = "resource_not_found"
	ErrorKindValidationRejected        ErrorKind = "validation_rejected"
	ErrorKindGatewayInternalError      ErrorKind = "gateway_internal_error"
	ErrorKindPaymentDeclined           ErrorKind = "payment_declined"
	ErrorKindTimeout                   ErrorKind = "timeout"
	ErrorKindNetworkUnavailable        ErrorKind = "network_unavailable"
	ErrorKindIncompleteGatewayResponse ErrorKind = "incomplete_gateway_response"
	ErrorKindCanceled                  ErrorKind = "canceled"
)

// ErrorDetail is what the operator sees when an order fails.
// Retryable tells the UI whether "try again" makes sense; it never triggers an automatic retry.
type ErrorDetail struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Code      string    `json:"code,omitempty"`

	cause error
}

func (e *ErrorDetail) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code=%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ErrorDetail) Unwrap() error {
	return e.cause
}

func NewErrorDetail(kind ErrorKind, message string, retryable bool) *ErrorDetail {
	return &ErrorDetail{Kind: kind, Message: message, Retryable: retryable}
}

// WithCode returns a copy tagged with the provider-specific code.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	c := *e
	c.Code = code
	return &c
}

// Wrap builds a detail whose message comes from cause and keeps cause reachable via errors.Is.
func Wrap(kind ErrorKind, cause error, retryable bool) *ErrorDetail {
	return &ErrorDetail{Kind: kind, Message: cause.Error(), Retryable: retryable, cause: cause}
}
