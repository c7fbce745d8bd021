package request

import (
	"errors"
	"strings"
	"testing"

	"pdv_payments/internal/domain/entities"
)

const validOrderBody = `{
  "amount_minor_units": 1000,
  "method": "pix",
  "ttl_seconds": 600,
  "customer": {
    "name": "Maria Silva",
    "email": "maria@example.com",
    "document": "123.456.789-09",
    "document_type": "individual",
    "address": {"street": "Rua A", "number": "10", "city": "Sao Paulo", "state": "SP", "zip_code": "01001-000"}
  },
  "line_items": [{"description": "Cafe", "amount_minor_units": 500, "quantity": 2}]
}`

func TestValidateCreatePaymentOrder(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		violations, err := ValidateCreatePaymentOrder([]byte(validOrderBody))
		if err != nil || len(violations) != 0 {
			t.Fatalf("expected valid, got err=%v violations=%v", err, violations)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ValidateCreatePaymentOrder([]byte("{"))
		if !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("expected ErrMalformedBody, got %v", err)
		}
	})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing customer", `{"amount_minor_units": 1000, "method": "pix"}`, "customer"},
		{"unknown method", strings.Replace(validOrderBody, `"pix"`, `"card"`, 1), "method"},
		{"amount as string", strings.Replace(validOrderBody, `1000`, `"1000"`, 1), "amount_minor_units"},
		{"fractional quantity", strings.Replace(validOrderBody, `"quantity": 2`, `"quantity": 1.5`, 1), "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			violations, err := ValidateCreatePaymentOrder([]byte(tc.body))
			if !errors.Is(err, ErrSchemaViolation) {
				t.Fatalf("expected ErrSchemaViolation, got %v", err)
			}
			if !strings.Contains(strings.Join(violations, ";"), tc.want) {
				t.Fatalf("expected a violation mentioning %q, got %v", tc.want, violations)
			}
		})
	}
}

func TestCreatePaymentOrderRequest_ToInput(t *testing.T) {
	r := CreatePaymentOrderRequest{
		AmountMinorUnits: 1000,
		Method:           " PIX ",
		Provider:         " PagBank ",
		TTLSeconds:       600,
		Customer: CustomerRequest{
			Name:         " Maria ",
			Email:        "maria@example.com ",
			Document:     "123.456.789-09",
			DocumentType: "individual",
			Address:      AddressRequest{Street: "Rua A", ZipCode: "01001-000"},
		},
		LineItems: []LineItemRequest{{Code: " sku-1 ", Description: "Cafe", AmountMinorUnits: 500, Quantity: 2}},
	}

	in := r.ToInput()
	if in.Method != entities.PaymentMethodPix {
		t.Fatalf("expected pix, got %q", in.Method)
	}
	if in.Provider != "pagbank" {
		t.Fatalf("expected pagbank, got %q", in.Provider)
	}
	if in.Customer.Name != "Maria" || in.Customer.Email != "maria@example.com" {
		t.Fatalf("expected trimmed customer, got %+v", in.Customer)
	}
	if in.Customer.DocumentType != entities.TaxDocumentIndividual || in.Customer.Address.ZipCode != "01001-000" {
		t.Fatalf("unexpected customer mapping: %+v", in.Customer)
	}
	if len(in.LineItems) != 1 || in.LineItems[0].Code != "sku-1" || in.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected line items: %+v", in.LineItems)
	}
	if in.TTLSeconds != 600 || in.AmountMinorUnits != 1000 {
		t.Fatalf("unexpected amounts: %+v", in)
	}
}
