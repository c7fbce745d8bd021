package logging

import (
	"encoding/json"
	"net/http"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"x-api-key":           true,
	"proxy-authorization": true,
	"cookie":              true,
}

// Keys are compared lowercased. Secrets and personal tax documents never reach the logs.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"access_token":  true,
	"api_key":       true,
	"secret_key":    true,
	"token":         true,
	"password":      true,
	"document":      true,
	"tax_id":        true,
	"cpf":           true,
	"cnpj":          true,
	"card_number":   true,
	"cvv":           true,
}

// RedactHeaders returns a flat copy of h safe to log.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if sensitiveHeaders[strings.ToLower(k)] {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}

// RedactJSON masks sensitive keys at any depth. Bodies that are not JSON are
// replaced by a length marker instead of being logged verbatim.
func RedactJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "<non-json body>"
	}
	b, err := json.Marshal(redactValue(doc))
	if err != nil {
		return "<unloggable body>"
	}
	return string(b)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if sensitiveKeys[strings.ToLower(k)] {
				out[k] = redacted
				continue
			}
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = redactValue(val)
		}
		return out
	default:
		return v
	}
}
