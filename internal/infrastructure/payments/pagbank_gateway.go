package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"
)

var ErrMissingPagBankToken = errors.New("missing PAGBANK_TOKEN")

const ProviderPagBank = "pagbank"

// PagBankGateway talks to the PagBank (PagSeguro) orders API. PIX is requested through
// qr_codes[], boleto through a charge with payment_method BOLETO.
type PagBankGateway struct {
	restGateway
}

var _ interfaces.IPaymentGateway = (*PagBankGateway)(nil)

func NewPagBankGateway(token, baseURL string, normalizer *ResponseNormalizer, opts ...TransportOption) (*PagBankGateway, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingPagBankToken
	}
	t := NewHTTPTransport(ProviderPagBank, baseURL, BearerAuth{Token: token}, opts...)
	return newPagBankGateway(t, normalizer), nil
}

func newPagBankGateway(t sender, normalizer *ResponseNormalizer) *PagBankGateway {
	return &PagBankGateway{restGateway{
		name:       ProviderPagBank,
		transport:  t,
		normalizer: normalizer,
		buildBody:  buildPagBankOrder,
	}}
}

func buildPagBankOrder(o entities.PaymentOrder) (map[string]any, error) {
	c := o.CustomerSnapshot
	customer := map[string]any{
		"name":   c.Name,
		"email":  c.Email,
		"tax_id": c.DocumentDigits(),
	}
	if area, number, ok := splitBrazilianPhone(c.PhoneDigits()); ok {
		customer["phones"] = []map[string]any{
			{"country": "55", "area": area, "number": number, "type": "MOBILE"},
		}
	}

	items := make([]map[string]any, 0, len(o.LineItems))
	for i, it := range o.LineItems {
		ref := it.Code
		if ref == "" {
			ref = fmt.Sprintf("item-%d", i+1)
		}
		items = append(items, map[string]any{
			"reference_id": ref,
			"name":         it.TransmittableDescription(),
			"quantity":     it.Quantity,
			"unit_amount":  it.AmountMinorUnits,
		})
	}

	body := map[string]any{
		"reference_id": o.ID,
		"customer":     customer,
		"items":        items,
	}

	switch o.Method {
	case entities.PaymentMethodPix:
		body["qr_codes"] = []map[string]any{{
			"amount":          map[string]any{"value": o.AmountMinorUnits},
			"expiration_date": o.ExpiresAt.Format(time.RFC3339),
		}}
	case entities.PaymentMethodBoleto:
		a := c.Address
		body["charges"] = []map[string]any{{
			"reference_id": o.ID,
			"description":  entities.TruncateRunes("Venda PDV "+shortReference(o.ID), 64),
			"amount":       map[string]any{"value": o.AmountMinorUnits, "currency": "BRL"},
			"payment_method": map[string]any{
				"type": "BOLETO",
				"boleto": map[string]any{
					"due_date": o.ExpiresAt.In(gatewayLocation).Format("2006-01-02"),
					"instruction_lines": map[string]any{
						"line_1": "Pagamento referente a venda no PDV",
						"line_2": "Não receber após o vencimento",
					},
					"holder": map[string]any{
						"name":   c.Name,
						"tax_id": c.DocumentDigits(),
						"email":  c.Email,
						"address": map[string]any{
							"street":      a.Street,
							"number":      a.Number,
							"locality":    a.Neighborhood,
							"city":        a.City,
							"region_code": strings.ToUpper(a.State),
							"country":     "Brasil",
							"postal_code": a.ZipDigits(),
						},
					},
				},
			},
		}}
	default:
		return nil, entities.NewErrorDetail(entities.ErrorKindValidationRejected, fmt.Sprintf("unsupported payment method %q", o.Method), false)
	}
	return body, nil
}
