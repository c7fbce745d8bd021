package entities

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TaxDocumentType tells the gateway whether the payer is a person (CPF) or a company (CNPJ).
type TaxDocumentType string

const (
	TaxDocumentIndividual TaxDocumentType = "individual"
	TaxDocumentCompany    TaxDocumentType = "company"
)

const (
	MaxLineItemQuantity       = 100
	MaxLineItemDescriptionLen = 256
)

var (
	ErrInvalidCustomerName     = errors.New("customer name is required")
	ErrInvalidCustomerEmail    = errors.New("customer email is invalid")
	ErrInvalidCustomerDocument = errors.New("customer tax document is invalid")
	ErrInvalidCustomerAddress  = errors.New("customer address is incomplete")
	ErrInvalidLineItemAmount   = errors.New("line item amount must be positive")
	ErrInvalidLineItemQuantity = errors.New("line item quantity must be between 1 and 100")
)

// Address is the payer postal address (required by boleto issuers).
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

// Customer is a value object copied into the order at creation time.
type Customer struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Document     string          `json:"document"`
	DocumentType TaxDocumentType `json:"document_type"`
	Phone        string          `json:"phone,omitempty"`
	Address      Address         `json:"address"`
}

// LineItem is a value object; amounts are in centavos.
type LineItem struct {
	Code             string `json:"code,omitempty"`
	Description      string `json:"description"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
	Quantity         int    `json:"quantity"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCustomerName
	}
	email := strings.TrimSpace(c.Email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return ErrInvalidCustomerEmail
	}
	doc := c.DocumentDigits()
	switch c.DocumentType {
	case TaxDocumentIndividual:
		if len(doc) != 11 {
			return ErrInvalidCustomerDocument
		}
	case TaxDocumentCompany:
		if len(doc) != 14 {
			return ErrInvalidCustomerDocument
		}
	default:
		return ErrInvalidCustomerDocument
	}
	a := c.Address
	for _, f := range []string{a.Street, a.Number, a.City, a.State, a.ZipCode} {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidCustomerAddress
		}
	}
	return nil
}

// DocumentDigits strips punctuation from CPF/CNPJ ("123.456.789-09" -> "12345678909").
func (c Customer) DocumentDigits() string {
	return onlyDigits(c.Document)
}

func (c Customer) PhoneDigits() string {
	return onlyDigits(c.Phone)
}

func (a Address) ZipDigits() string {
	return onlyDigits(a.ZipCode)
}

func (i LineItem) Validate() error {
	if i.AmountMinorUnits <= 0 {
		return ErrInvalidLineItemAmount
	}
	if i.Quantity < 1 || i.Quantity > MaxLineItemQuantity {
		return ErrInvalidLineItemQuantity
	}
	return nil
}

// TransmittableDescription truncates on a rune boundary; gateways reject oversized fields.
func (i LineItem) TransmittableDescription() string {
	return TruncateRunes(strings.TrimSpace(i.Description), MaxLineItemDescriptionLen)
}

func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
