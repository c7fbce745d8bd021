package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const ProviderMock = "mock"

// MockGateway is the offline provider enabled by PAYMENT_GATEWAY_MOCK. It answers with
// Pagar.me-shaped bodies carrying a syntactically valid PIX BR Code, and reports the
// order as paid after a fixed number of status checks (0 keeps it pending forever).
type MockGateway struct {
	normalizer      *ResponseNormalizer
	clock           clockwork.Clock
	paidAfterChecks int
	log             *logrus.Entry

	mu     sync.Mutex
	orders map[string]*mockOrder
}

type mockOrder struct {
	body   map[string]any
	checks int
}

var _ interfaces.IPaymentGateway = (*MockGateway)(nil)

func NewMockGateway(normalizer *ResponseNormalizer, clock clockwork.Clock, paidAfterChecks int, log *logrus.Entry) *MockGateway {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithFields(logrus.Fields{"component": "gateway", "provider": ProviderMock})
	log.Info("[payment][gateway] mock mode enabled")
	return &MockGateway{
		normalizer:      normalizer,
		clock:           clock,
		paidAfterChecks: paidAfterChecks,
		log:             log,
		orders:          map[string]*mockOrder{},
	}
}

func (g *MockGateway) Name() string {
	return ProviderMock
}

func (g *MockGateway) Create(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	if err := ctx.Err(); err != nil {
		d := ClassifyError(err)
		return entities.GatewayFragment{}, &d
	}

	id := "or_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	chargeID := "ch_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	now := g.clock.Now().UTC()
	expiresAt := o.ExpiresAt
	if !expiresAt.After(now) {
		expiresAt = now.Add(30 * time.Minute)
	}

	tx := map[string]any{
		"id":         "tran_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		"status":     "waiting_payment",
		"expires_at": expiresAt.Format(time.RFC3339),
	}
	switch o.Method {
	case entities.PaymentMethodBoleto:
		tx["line"] = mockDigitableLine(o.AmountMinorUnits)
		tx["url"] = "https://mock.pdv.local/boleto/" + id
		tx["due_at"] = expiresAt.Format(time.RFC3339)
	default:
		tx["qr_code"] = BuildPixPayload(PixPayload{
			Key:          "pdv@mock.local",
			MerchantName: "PDV MOCK",
			MerchantCity: "SAO PAULO",
			Amount:       o.AmountMinorUnits,
			TxID:         shortReference(o.ID),
		})
		tx["qr_code_url"] = "https://mock.pdv.local/qrcode/" + id + ".png"
	}

	body := map[string]any{
		"id":     id,
		"code":   o.ID,
		"status": "pending",
		"charges": []any{map[string]any{
			"id":               chargeID,
			"status":           "pending",
			"amount":           o.AmountMinorUnits,
			"last_transaction": tx,
		}},
	}

	g.mu.Lock()
	g.orders[id] = &mockOrder{body: body}
	g.mu.Unlock()

	raw, err := json.Marshal(body)
	if err != nil {
		return entities.GatewayFragment{}, asDetail(err)
	}
	g.log.WithFields(logrus.Fields{"gateway_order_id": id, "order_id": o.ID}).Info("[payment][gateway] mock create success")
	return g.normalizer.Normalize(raw, o.Method, requestedTTL(o))
}

func (g *MockGateway) Refetch(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.snapshot(ctx, o, false)
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Normalize(raw, o.Method, requestedTTL(o))
}

func (g *MockGateway) CheckStatus(ctx context.Context, o entities.PaymentOrder) (entities.GatewayFragment, error) {
	raw, err := g.snapshot(ctx, o, true)
	if err != nil {
		return entities.GatewayFragment{}, err
	}
	return g.normalizer.Parse(raw, o.Method), nil
}

func (g *MockGateway) snapshot(ctx context.Context, o entities.PaymentOrder, countCheck bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		d := ClassifyError(err)
		return nil, &d
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	mo, ok := g.orders[o.GatewayOrderID]
	if !ok {
		return nil, entities.NewErrorDetail(entities.ErrorKindResourceNotFound, fmt.Sprintf("mock order %s not found", o.GatewayOrderID), false)
	}
	if countCheck {
		mo.checks++
		if g.paidAfterChecks > 0 && mo.checks >= g.paidAfterChecks {
			mo.body["status"] = "paid"
			if charges, ok := mo.body["charges"].([]any); ok && len(charges) > 0 {
				if ch, ok := charges[0].(map[string]any); ok {
					ch["status"] = "paid"
					ch["paid_at"] = g.clock.Now().UTC().Format(time.RFC3339)
				}
			}
		}
	}
	return json.Marshal(mo.body)
}

// mockDigitableLine builds a 47-digit boleto line with the amount in the last 10 digits.
func mockDigitableLine(amount int64) string {
	return fmt.Sprintf("23793381286000000000300000000401%s%010d", "84340000", amount)[:37] + fmt.Sprintf("%010d", amount)
}
