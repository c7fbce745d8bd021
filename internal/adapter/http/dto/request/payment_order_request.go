package request

import (
	"errors"
	"fmt"
	"strings"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMalformedBody   = errors.New("request body is not valid json")
	ErrSchemaViolation = errors.New("request body does not match the order contract")
)

// createPaymentOrderSchema is the structural contract of POST /v1/orders.
// Business rules (document length, line item totals, ttl bounds) stay in the use case.
const createPaymentOrderSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["amount_minor_units", "method", "customer"],
  "properties": {
    "amount_minor_units": {"type": "integer"},
    "method": {"type": "string", "enum": ["pix", "boleto"]},
    "ttl_seconds": {"type": "integer"},
    "provider": {"type": "string"},
    "customer": {
      "type": "object",
      "required": ["name", "email", "document", "document_type", "address"],
      "properties": {
        "name": {"type": "string"},
        "email": {"type": "string"},
        "document": {"type": "string"},
        "document_type": {"type": "string", "enum": ["individual", "company"]},
        "phone": {"type": "string"},
        "address": {
          "type": "object",
          "required": ["street", "number", "city", "state", "zip_code"],
          "properties": {
            "street": {"type": "string"},
            "number": {"type": "string"},
            "complement": {"type": "string"},
            "neighborhood": {"type": "string"},
            "city": {"type": "string"},
            "state": {"type": "string"},
            "zip_code": {"type": "string"}
          }
        }
      }
    },
    "line_items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "amount_minor_units", "quantity"],
        "properties": {
          "code": {"type": "string"},
          "description": {"type": "string"},
          "amount_minor_units": {"type": "integer"},
          "quantity": {"type": "integer"}
        }
      }
    }
  }
}`

var createPaymentOrderContract = mustCompileSchema(createPaymentOrderSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// ValidateCreatePaymentOrder checks raw against the order contract and returns the
// individual violations alongside ErrSchemaViolation.
func ValidateCreatePaymentOrder(raw []byte) ([]string, error) {
	result, err := createPaymentOrderContract.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, ErrSchemaViolation
}

type AddressRequest struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

type CustomerRequest struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Document     string         `json:"document"`
	DocumentType string         `json:"document_type"`
	Phone        string         `json:"phone"`
	Address      AddressRequest `json:"address"`
}

type LineItemRequest struct {
	Code             string `json:"code"`
	Description      string `json:"description"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
	Quantity         int    `json:"quantity"`
}

// CreatePaymentOrderRequest is the body the PDV sends to open a payment.
type CreatePaymentOrderRequest struct {
	AmountMinorUnits int64             `json:"amount_minor_units"`
	Method           string            `json:"method"`
	Customer         CustomerRequest   `json:"customer"`
	LineItems        []LineItemRequest `json:"line_items"`
	TTLSeconds       int64             `json:"ttl_seconds"`
	Provider         string            `json:"provider"`
}

func (r CreatePaymentOrderRequest) ToInput() usecase.CreateOrderInput {
	items := make([]entities.LineItem, 0, len(r.LineItems))
	for _, it := range r.LineItems {
		items = append(items, entities.LineItem{
			Code:             strings.TrimSpace(it.Code),
			Description:      it.Description,
			AmountMinorUnits: it.AmountMinorUnits,
			Quantity:         it.Quantity,
		})
	}

	a := r.Customer.Address
	return usecase.CreateOrderInput{
		AmountMinorUnits: r.AmountMinorUnits,
		Method:           entities.PaymentMethod(strings.ToLower(strings.TrimSpace(r.Method))),
		Customer: entities.Customer{
			Name:         strings.TrimSpace(r.Customer.Name),
			Email:        strings.TrimSpace(r.Customer.Email),
			Document:     r.Customer.Document,
			DocumentType: entities.TaxDocumentType(r.Customer.DocumentType),
			Phone:        r.Customer.Phone,
			Address: entities.Address{
				Street:       a.Street,
				Number:       a.Number,
				Complement:   a.Complement,
				Neighborhood: a.Neighborhood,
				City:         a.City,
				State:        a.State,
				ZipCode:      a.ZipCode,
			},
		},
		LineItems:  items,
		TTLSeconds: r.TTLSeconds,
		Provider:   strings.ToLower(strings.TrimSpace(r.Provider)),
	}
}
