package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"
)

var ErrMissingPagarmeAPIKey = errors.New("missing PAGARME_API_KEY")

const ProviderPagarme = "pagarme"

// PagarmeGateway talks to the Pagar.me Core v5 orders API.
type PagarmeGateway struct {
	restGateway
}

var _ interfaces.IPaymentGateway = (*PagarmeGateway)(nil)

func NewPagarmeGateway(apiKey, baseURL string, normalizer *ResponseNormalizer, opts ...TransportOption) (*PagarmeGateway, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingPagarmeAPIKey
	}
	t := NewHTTPTransport(ProviderPagarme, baseURL, BasicAuth{Username: apiKey}, opts...)
	return newPagarmeGateway(t, normalizer), nil
}

func newPagarmeGateway(t sender, normalizer *ResponseNormalizer) *PagarmeGateway {
	return &PagarmeGateway{restGateway{
		name:       ProviderPagarme,
		transport:  t,
		normalizer: normalizer,
		buildBody:  buildPagarmeOrder,
	}}
}

func buildPagarmeOrder(o entities.PaymentOrder) (map[string]any, error) {
	c := o.CustomerSnapshot
	docType := "CPF"
	customerType := "individual"
	if c.DocumentType == entities.TaxDocumentCompany {
		docType = "CNPJ"
		customerType = "company"
	}

	customer := map[string]any{
		"name":          c.Name,
		"email":         c.Email,
		"document":      c.DocumentDigits(),
		"document_type": docType,
		"type":          customerType,
		"address": map[string]any{
			"line_1":   strings.Join(nonEmpty(c.Address.Number, c.Address.Street, c.Address.Neighborhood), ", "),
			"line_2":   c.Address.Complement,
			"zip_code": c.Address.ZipDigits(),
			"city":     c.Address.City,
			"state":    c.Address.State,
			"country":  "BR",
		},
	}
	if area, number, ok := splitBrazilianPhone(c.PhoneDigits()); ok {
		customer["phones"] = map[string]any{
			"mobile_phone": map[string]any{"country_code": "55", "area_code": area, "number": number},
		}
	}

	items := make([]map[string]any, 0, len(o.LineItems))
	for i, it := range o.LineItems {
		code := it.Code
		if code == "" {
			code = fmt.Sprintf("item-%d", i+1)
		}
		items = append(items, map[string]any{
			"code":        code,
			"description": it.TransmittableDescription(),
			"amount":      it.AmountMinorUnits,
			"quantity":    it.Quantity,
		})
	}

	var payment map[string]any
	switch o.Method {
	case entities.PaymentMethodPix:
		payment = map[string]any{
			"payment_method": "pix",
			"amount":         o.AmountMinorUnits,
			"pix": map[string]any{
				"expires_in": int64(requestedTTL(o) / time.Second),
			},
		}
	case entities.PaymentMethodBoleto:
		payment = map[string]any{
			"payment_method": "boleto",
			"amount":         o.AmountMinorUnits,
			"boleto": map[string]any{
				"instructions":    "Pagar até o vencimento",
				"due_at":          o.ExpiresAt.UTC().Format(time.RFC3339),
				"document_number": shortReference(o.ID),
				"type":            "DM",
			},
		}
	default:
		return nil, entities.NewErrorDetail(entities.ErrorKindValidationRejected, fmt.Sprintf("unsupported payment method %q", o.Method), false)
	}

	return map[string]any{
		"code":     o.ID,
		"closed":   true,
		"customer": customer,
		"items":    items,
		"payments": []map[string]any{payment},
	}, nil
}

// splitBrazilianPhone turns "5511987654321" or "11987654321" into area "11" and number "987654321".
func splitBrazilianPhone(digits string) (string, string, bool) {
	if (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) != 10 && len(digits) != 11 {
		return "", "", false
	}
	return digits[:2], digits[2:], true
}

// shortReference derives a numeric-friendly document number from the order id.
func shortReference(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
