package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"pdv_payments/internal/domain/entities"
)

const retryShortlyMessage = "payment gateway is unavailable, try again shortly"

// knownCodes maps provider error codes (lowercased) to taxonomy kinds.
// Pagar.me reports codes in errors[].code, PagBank in error_messages[].code,
// Mercado Pago in cause[].code / status_detail.
var knownCodes = map[string]entities.ErrorKind{
	"500":                   entities.ErrorKindGatewayInternalError,
	"internal_error":        entities.ErrorKindGatewayInternalError,
	"internal_server_error": entities.ErrorKindGatewayInternalError,
	"service_unavailable":   entities.ErrorKindGatewayInternalError,

	"unauthorized":          entities.ErrorKindAuthenticationFailed,
	"forbidden":             entities.ErrorKindAuthenticationFailed,
	"invalid_token":         entities.ErrorKindAuthenticationFailed,
	"access_denied":         entities.ErrorKindAuthenticationFailed,
	"invalid_authorization": entities.ErrorKindAuthenticationFailed,

	"not_found":          entities.ErrorKindResourceNotFound,
	"resource_not_found": entities.ErrorKindResourceNotFound,
	"order_not_found":    entities.ErrorKindResourceNotFound,

	"bad_request":       entities.ErrorKindValidationRejected,
	"invalid_parameter": entities.ErrorKindValidationRejected,
	"invalid_request":   entities.ErrorKindValidationRejected,
	"validation_error":  entities.ErrorKindValidationRejected,
	"40002":             entities.ErrorKindValidationRejected,
	"2002":              entities.ErrorKindValidationRejected,
	"2034":              entities.ErrorKindValidationRejected,

	"antifraud":                       entities.ErrorKindPaymentDeclined,
	"antifraud_reproved":              entities.ErrorKindPaymentDeclined,
	"insufficient_funds":              entities.ErrorKindPaymentDeclined,
	"expired_card":                    entities.ErrorKindPaymentDeclined,
	"rejected":                        entities.ErrorKindPaymentDeclined,
	"declined":                        entities.ErrorKindPaymentDeclined,
	"cc_rejected_insufficient_amount": entities.ErrorKindPaymentDeclined,
	"cc_rejected_high_risk":           entities.ErrorKindPaymentDeclined,
	"cc_rejected_blacklist":           entities.ErrorKindPaymentDeclined,
	"cc_rejected_other_reason":        entities.ErrorKindPaymentDeclined,
	"cc_rejected_bad_filled_date":     entities.ErrorKindPaymentDeclined,
	"cc_rejected_call_for_authorize":  entities.ErrorKindPaymentDeclined,
	"rejected_by_bank":                entities.ErrorKindPaymentDeclined,
	"rejected_insufficient_data":      entities.ErrorKindPaymentDeclined,
}

// Classify folds an HTTP error response into the taxonomy. Body codes win over the status
// because gateways reuse 400 for declines; unknown failures are GatewayInternalError, retryable.
func Classify(status int, body []byte) entities.ErrorDetail {
	codes, message := extractErrorCodes(body)
	for _, code := range codes {
		if kind, ok := knownCodes[strings.ToLower(code)]; ok {
			d := detailFor(kind, message)
			d.Code = code
			return d
		}
	}

	var d entities.ErrorDetail
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		d = detailFor(entities.ErrorKindAuthenticationFailed, message)
	case status == http.StatusNotFound:
		d = detailFor(entities.ErrorKindResourceNotFound, message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		d = detailFor(entities.ErrorKindValidationRejected, message)
	case status == http.StatusPaymentRequired:
		d = detailFor(entities.ErrorKindPaymentDeclined, message)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		d = detailFor(entities.ErrorKindTimeout, message)
	default:
		d = detailFor(entities.ErrorKindGatewayInternalError, message)
	}
	if len(codes) > 0 {
		d.Code = codes[0]
	}
	return d
}

// ClassifyError handles failures that carry no HTTP response: context expiry, network
// errors, and SDK errors that only expose a message.
func ClassifyError(err error) entities.ErrorDetail {
	if err == nil {
		return detailFor(entities.ErrorKindGatewayInternalError, "")
	}

	var detail *entities.ErrorDetail
	if errors.As(err, &detail) {
		return *detail
	}
	if errors.Is(err, context.Canceled) {
		return detailFor(entities.ErrorKindCanceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return detailFor(entities.ErrorKindTimeout, "payment gateway did not answer in time")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return detailFor(entities.ErrorKindTimeout, "payment gateway did not answer in time")
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return detailFor(entities.ErrorKindNetworkUnavailable, "payment gateway is unreachable")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "customer not found") || strings.Contains(msg, `"code":2002`):
		return withCode(detailFor(entities.ErrorKindValidationRejected, "payer not found for this gateway account"), "2002")
	case strings.Contains(msg, "invalid users involved") || strings.Contains(msg, `"code":2034`):
		return withCode(detailFor(entities.ErrorKindValidationRejected, "invalid users involved between seller and payer"), "2034")
	case strings.Contains(msg, `"error":"unauthorized"`) || strings.Contains(msg, `"status":401`) || strings.Contains(msg, `"status":403`):
		return detailFor(entities.ErrorKindAuthenticationFailed, "payment gateway rejected the credentials")
	case strings.Contains(msg, `"error":"not_found"`) || strings.Contains(msg, `"status":404`):
		return detailFor(entities.ErrorKindResourceNotFound, "payment not found at the gateway")
	case strings.Contains(msg, `"error":"bad_request"`) || strings.Contains(msg, `"status":400`):
		return detailFor(entities.ErrorKindValidationRejected, "payment gateway rejected the request")
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return detailFor(entities.ErrorKindTimeout, "payment gateway did not answer in time")
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "connection reset"):
		return detailFor(entities.ErrorKindNetworkUnavailable, "payment gateway is unreachable")
	}
	return detailFor(entities.ErrorKindGatewayInternalError, retryShortlyMessage)
}

// IsRetryable reports whether the kind is transient for an order that is already Waiting.
func IsRetryable(kind entities.ErrorKind) bool {
	switch kind {
	case entities.ErrorKindGatewayInternalError, entities.ErrorKindTimeout,
		entities.ErrorKindNetworkUnavailable, entities.ErrorKindIncompleteGatewayResponse:
		return true
	}
	return false
}

func detailFor(kind entities.ErrorKind, message string) entities.ErrorDetail {
	switch kind {
	case entities.ErrorKindGatewayInternalError:
		// Provider text for 5xx is noise to the operator.
		message = retryShortlyMessage
	case entities.ErrorKindTimeout, entities.ErrorKindNetworkUnavailable:
		if message == "" {
			message = "payment gateway is unreachable"
		}
	}
	if message == "" {
		message = defaultMessages[kind]
	}
	return entities.ErrorDetail{Kind: kind, Message: message, Retryable: IsRetryable(kind)}
}

func withCode(d entities.ErrorDetail, code string) entities.ErrorDetail {
	d.Code = code
	return d
}

var defaultMessages = map[entities.ErrorKind]string{
	entities.ErrorKindAuthenticationFailed:      "payment gateway rejected the credentials",
	entities.ErrorKindResourceNotFound:          "payment not found at the gateway",
	entities.ErrorKindValidationRejected:        "payment gateway rejected the request",
	entities.ErrorKindPaymentDeclined:           "payment was declined",
	entities.ErrorKindIncompleteGatewayResponse: "payment gateway response had no QR code, link or barcode",
	entities.ErrorKindCanceled:                  "request canceled",
}

// extractErrorCodes collects every code-looking value in the known error envelopes.
// A body that is not a JSON object yields no codes.
func extractErrorCodes(body []byte) ([]string, string) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, ""
	}

	var codes []string
	var message string
	add := func(v any) {
		if s := scalarString(v); s != "" {
			codes = append(codes, s)
		}
	}
	takeMessage := func(m map[string]any) {
		if message != "" {
			return
		}
		for _, k := range []string{"message", "description", "error_description"} {
			if s, ok := m[k].(string); ok && s != "" {
				message = s
				return
			}
		}
	}

	for _, listKey := range []string{"errors", "error_messages", "cause"} {
		list, _ := doc[listKey].([]any)
		for _, it := range list {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			add(m["code"])
			add(m["error"])
			takeMessage(m)
		}
	}
	// Pagar.me also returns errors as {"errors": {"field": ["msg"]}} on validation failures.
	if m, ok := doc["errors"].(map[string]any); ok && len(m) > 0 {
		codes = append(codes, "validation_error")
	}
	add(doc["code"])
	if s, ok := doc["error"].(string); ok {
		add(s)
	}
	add(doc["status_detail"])
	takeMessage(doc)
	return codes, message
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	case json.Number:
		return t.String()
	}
	return ""
}
