package payments

import (
	"errors"
	"fmt"
	"strings"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/Knetic/govaluate"
)

var (
	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrInvalidRoutingRule = errors.New("invalid payment routing rule")
)

type routingRule struct {
	source   string
	expr     *govaluate.EvaluableExpression
	provider string
}

// GatewayRouter picks the adapter for an order: an explicit provider on the order wins,
// then the first routing rule that evaluates true, then the default provider.
//
// Rules come from PAYMENT_ROUTING_RULES as "expr => provider" pairs separated by ';', e.g.
//
//	method == 'boleto' => pagbank; amount >= 500000 => mercadopago
//
// Variables: method, amount (centavos), amount_brl, customer_type, items.
type GatewayRouter struct {
	gateways        map[string]interfaces.IPaymentGateway
	defaultProvider string
	rules           []routingRule
}

var _ interfaces.IGatewaySelector = (*GatewayRouter)(nil)

func NewGatewayRouter(defaultProvider, rules string, gateways ...interfaces.IPaymentGateway) (*GatewayRouter, error) {
	r := &GatewayRouter{
		gateways:        make(map[string]interfaces.IPaymentGateway, len(gateways)),
		defaultProvider: strings.ToLower(strings.TrimSpace(defaultProvider)),
	}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Name()] = g
		}
	}
	if _, ok := r.gateways[r.defaultProvider]; !ok {
		return nil, fmt.Errorf("%w: default provider %q is not configured", ErrUnknownProvider, r.defaultProvider)
	}

	parsed, err := parseRoutingRules(rules)
	if err != nil {
		return nil, err
	}
	for _, rule := range parsed {
		if _, ok := r.gateways[rule.provider]; !ok {
			return nil, fmt.Errorf("%w: rule %q targets %q which is not configured", ErrInvalidRoutingRule, rule.source, rule.provider)
		}
	}
	r.rules = parsed
	return r, nil
}

func (r *GatewayRouter) Get(name string) (interfaces.IPaymentGateway, error) {
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return g, nil
}

func (r *GatewayRouter) Select(o entities.PaymentOrder) (interfaces.IPaymentGateway, error) {
	if o.Provider != "" {
		return r.Get(o.Provider)
	}

	params := routingParams(o)
	for _, rule := range r.rules {
		out, err := rule.expr.Evaluate(params)
		if err != nil {
			// A rule that cannot be evaluated for this order does not match it.
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			return r.gateways[rule.provider], nil
		}
	}
	return r.gateways[r.defaultProvider], nil
}

func routingParams(o entities.PaymentOrder) map[string]interface{} {
	return map[string]interface{}{
		"method":        string(o.Method),
		"amount":        float64(o.AmountMinorUnits),
		"amount_brl":    MinorToDecimal(o.AmountMinorUnits).InexactFloat64(),
		"customer_type": string(o.CustomerSnapshot.DocumentType),
		"items":         float64(len(o.LineItems)),
	}
}

func parseRoutingRules(raw string) ([]routingRule, error) {
	var rules []routingRule
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		exprText, provider, ok := strings.Cut(part, "=>")
		if !ok {
			return nil, fmt.Errorf("%w: %q is missing '=>'", ErrInvalidRoutingRule, part)
		}
		exprText = strings.TrimSpace(exprText)
		provider = strings.ToLower(strings.TrimSpace(provider))
		if exprText == "" || provider == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRoutingRule, part)
		}
		expr, err := govaluate.NewEvaluableExpression(exprText)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRoutingRule, exprText, err)
		}
		rules = append(rules, routingRule{source: part, expr: expr, provider: provider})
	}
	return rules, nil
}
