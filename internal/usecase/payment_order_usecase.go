package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pdv_payments/internal/config"
	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"
	"pdv_payments/internal/usecase/polling"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	DefaultExpiry = 30 * time.Minute
	// MaxTTL bounds caller-provided expiries; boleto due dates rarely go past a month.
	MaxTTL = 30 * 24 * time.Hour

	defaultRetention = time.Hour
)

var (
	ErrPaymentOrderNotFound   = errors.New("payment order not found")
	ErrInvalidPaymentOrderID  = errors.New("invalid payment order id")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidPaymentMethod   = errors.New("payment method must be pix or boleto")
	ErrInvalidTTL             = errors.New("ttl_seconds out of range")
	ErrLineItemsTotalMismatch = errors.New("line items do not add up to the order amount")
	ErrOrderNotTerminal       = errors.New("payment order is still in progress")
	ErrOrderAlreadyPaid       = errors.New("payment order already paid")
	ErrServiceClosed          = errors.New("payment order service is shutting down")
)

// CreateOrderInput is what the PDV hands over when the operator picks PIX or boleto.
// TTLSeconds 0 means the default expiry. Provider is optional and skips routing rules.
type CreateOrderInput struct {
	AmountMinorUnits int64
	Method           entities.PaymentMethod
	Customer         entities.Customer
	LineItems        []entities.LineItem
	TTLSeconds       int64
	Provider         string
}

// IPaymentOrderUseCase is the inbound API of the payment-order lifecycle.
//
//   - CreateOrder blocks for one gateway round trip (plus at most one retry) and returns
//     the order either Waiting with a payment instrument or Failed with an ErrorDetail.
//     Input errors return *entities.ErrorDetail{ValidationRejected} with no gateway call.
//   - Cancel is idempotent and safe in any state.
//   - Subscribe receives a snapshot after every transition, in transition order. Each
//     listener runs on its own goroutine and may call back into the use case.
type IPaymentOrderUseCase interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (entities.PaymentOrder, error)
	Cancel(ctx context.Context, id string) error
	Regenerate(ctx context.Context, id string) (entities.PaymentOrder, error)
	GetByID(ctx context.Context, id string) (entities.PaymentOrder, error)
	ListAttempts(ctx context.Context, id string) ([]entities.PaymentOrder, error)
	Subscribe(listener func(entities.PaymentOrder)) (unsubscribe func())
	Shutdown(ctx context.Context) error
}

type PaymentOrderUseCase struct {
	selector  interfaces.IGatewaySelector
	repo      interfaces.IPaymentOrderRepository
	persister *Persister
	scheduler *polling.Scheduler
	clock     clockwork.Clock
	log       *logrus.Entry

	defaultExpiry time.Duration
	maxAttempts   int
	retention     time.Duration

	mu     sync.Mutex
	actors map[string]*orderActor
	closed bool

	listenersMu  sync.RWMutex
	listeners    map[uint64]*listenerQueue
	nextListener uint64
}

var _ IPaymentOrderUseCase = (*PaymentOrderUseCase)(nil)

type Option func(*PaymentOrderUseCase)

func WithClock(c clockwork.Clock) Option {
	return func(u *PaymentOrderUseCase) { u.clock = c }
}

func WithLogger(l *logrus.Entry) Option {
	return func(u *PaymentOrderUseCase) { u.log = l }
}

// WithPersister replaces the default persist worker, which is built on repo.
func WithPersister(p *Persister) Option {
	return func(u *PaymentOrderUseCase) { u.persister = p }
}

// WithRetention sets how long ended orders stay in the in-memory registry.
func WithRetention(d time.Duration) Option {
	return func(u *PaymentOrderUseCase) { u.retention = d }
}

func NewPaymentOrderUseCase(selector interfaces.IGatewaySelector, repo interfaces.IPaymentOrderRepository, lifecycle config.LifecycleConfig, opts ...Option) *PaymentOrderUseCase {
	u := &PaymentOrderUseCase{
		selector:      selector,
		repo:          repo,
		defaultExpiry: lifecycle.DefaultExpiry,
		maxAttempts:   lifecycle.PollMaxAttempts,
		retention:     defaultRetention,
		actors:        make(map[string]*orderActor),
		listeners:     make(map[uint64]*listenerQueue),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.clock == nil {
		u.clock = clockwork.NewRealClock()
	}
	if u.log == nil {
		u.log = logrus.NewEntry(logrus.StandardLogger())
	}
	u.log = u.log.WithField("component", "payment_orders")
	if u.defaultExpiry <= 0 {
		u.defaultExpiry = DefaultExpiry
	}
	if u.persister == nil {
		u.persister = NewPersister(repo, 0, u.log)
	}
	u.scheduler = polling.NewScheduler(u.clock, lifecycle.PollInterval, u.log)
	return u
}

func (u *PaymentOrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (entities.PaymentOrder, error) {
	log := u.log.WithFields(logrus.Fields{"method": in.Method, "amount": in.AmountMinorUnits, "retry_count": 0})
	log.Info("[payment][usecase] create order start")
	return u.create(ctx, in, "", 0)
}

func (u *PaymentOrderUseCase) create(ctx context.Context, in CreateOrderInput, parentID string, retryCount int) (entities.PaymentOrder, error) {
	ttl, err := u.validate(in)
	if err != nil {
		u.log.WithError(err).Warn("[payment][usecase] invalid create input")
		return entities.PaymentOrder{}, entities.Wrap(entities.ErrorKindValidationRejected, err, false)
	}

	now := u.clock.Now().UTC()
	order := entities.PaymentOrder{
		ID:               uuid.NewString(),
		ParentID:         parentID,
		Provider:         strings.ToLower(strings.TrimSpace(in.Provider)),
		Method:           in.Method,
		AmountMinorUnits: in.AmountMinorUnits,
		Status:           entities.OrderStatusGenerating,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(ttl),
		CustomerSnapshot: in.Customer,
		LineItems:        append([]entities.LineItem(nil), in.LineItems...),
		RetryCount:       retryCount,

		RequestedTTLSeconds: in.TTLSeconds,
		RequestedProvider:   strings.ToLower(strings.TrimSpace(in.Provider)),
	}

	if u.selector == nil {
		return entities.PaymentOrder{}, entities.NewErrorDetail(entities.ErrorKindValidationRejected, "payment gateway not configured", false)
	}
	gateway, err := u.selector.Select(order)
	if err != nil {
		u.log.WithError(err).WithField("provider", order.Provider).Warn("[payment][usecase] no gateway for order")
		return entities.PaymentOrder{}, entities.Wrap(entities.ErrorKindValidationRejected, err, false)
	}
	order.Provider = gateway.Name()

	genCtx, cancelGenerate := context.WithCancel(ctx)
	defer cancelGenerate()

	actor := newOrderActor(order, actorDeps{
		gateway:     gateway,
		clock:       u.clock,
		scheduler:   u.scheduler,
		maxAttempts: u.maxAttempts,
		notify:      u.notify,
		persist:     func(o entities.PaymentOrder) { u.persister.Enqueue(o) },
		log:         u.log,
	}, cancelGenerate)
	if err := u.register(actor); err != nil {
		return entities.PaymentOrder{}, err
	}
	actor.start()

	log := u.log.WithFields(logrus.Fields{"order_id": order.ID, "provider": order.Provider, "method": order.Method})
	log.Info("[payment][usecase] calling payment gateway")
	fragment, err := u.generate(genCtx, gateway, order, log)

	result := actor.deliverGenerated(fragment, err)
	log.WithField("status", result.Status).Info("[payment][usecase] create order done")
	return result, nil
}

// generate performs the create call and, when the gateway answered but left out every
// payment instrument, exactly one retry: a re-fetch of the gateway order when its id came
// back, otherwise the same create again. Creates carry the order id as idempotency key, so
// a repeated create cannot open a second charge.
func (u *PaymentOrderUseCase) generate(ctx context.Context, gateway interfaces.IPaymentGateway, order entities.PaymentOrder, log *logrus.Entry) (entities.GatewayFragment, error) {
	fragment, err := gateway.Create(ctx, order)
	if !isIncomplete(err) {
		return fragment, err
	}

	if fragment.GatewayOrderID == "" {
		log.Warn("[payment][usecase] incomplete gateway response without gateway id, re-sending create once")
		retried, rerr := gateway.Create(ctx, order)
		return settleRetry(retried, rerr)
	}

	log.WithField("gateway_order_id", fragment.GatewayOrderID).Warn("[payment][usecase] incomplete gateway response, re-fetching once")
	order.GatewayOrderID = fragment.GatewayOrderID
	refetched, rerr := gateway.Refetch(ctx, order)
	return settleRetry(refetched, rerr)
}

func settleRetry(f entities.GatewayFragment, err error) (entities.GatewayFragment, error) {
	if isIncomplete(err) {
		return f, finalIncomplete(err)
	}
	return f, err
}

func isIncomplete(err error) bool {
	var d *entities.ErrorDetail
	return errors.As(err, &d) && d.Kind == entities.ErrorKindIncompleteGatewayResponse
}

// finalIncomplete marks an incomplete response as no longer retryable once the single
// re-fetch was spent.
func finalIncomplete(err error) *entities.ErrorDetail {
	var d *entities.ErrorDetail
	errors.As(err, &d)
	final := *d
	final.Retryable = false
	return &final
}

func (u *PaymentOrderUseCase) validate(in CreateOrderInput) (time.Duration, error) {
	if in.AmountMinorUnits <= 0 {
		return 0, ErrInvalidAmount
	}
	if !in.Method.Valid() {
		return 0, ErrInvalidPaymentMethod
	}
	if err := in.Customer.Validate(); err != nil {
		return 0, err
	}

	var total int64
	for i, item := range in.LineItems {
		if err := item.Validate(); err != nil {
			return 0, fmt.Errorf("line item %d: %w", i, err)
		}
		total += item.AmountMinorUnits * int64(item.Quantity)
	}
	if len(in.LineItems) > 0 && total != in.AmountMinorUnits {
		return 0, fmt.Errorf("%w: items=%d amount=%d", ErrLineItemsTotalMismatch, total, in.AmountMinorUnits)
	}

	switch {
	case in.TTLSeconds == 0:
		return u.defaultExpiry, nil
	case in.TTLSeconds < 0:
		return 0, ErrInvalidTTL
	}
	ttl := time.Duration(in.TTLSeconds) * time.Second
	if ttl > MaxTTL {
		return 0, ErrInvalidTTL
	}
	return ttl, nil
}

func (u *PaymentOrderUseCase) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidPaymentOrderID
	}

	if actor := u.lookup(id); actor != nil {
		actor.cancel()
		u.log.WithField("order_id", id).Info("[payment][usecase] cancel handled")
		return nil
	}

	// Not owned by this process: nothing left to stop, but the id must exist.
	if _, err := u.load(ctx, id); err != nil {
		return err
	}
	return nil
}

// Regenerate starts a fresh attempt for an order that ended without payment. The new
// order points back through ParentID and carries RetryCount+1; the old one is untouched.
// The requested TTL and provider are replayed, and the countdown restarts from now.
func (u *PaymentOrderUseCase) Regenerate(ctx context.Context, id string) (entities.PaymentOrder, error) {
	prev, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	switch {
	case prev.Status == entities.OrderStatusPaid:
		return entities.PaymentOrder{}, ErrOrderAlreadyPaid
	case !prev.Status.Terminal():
		return entities.PaymentOrder{}, ErrOrderNotTerminal
	}

	u.log.WithFields(logrus.Fields{"parent_id": prev.ID, "retry_count": prev.RetryCount + 1}).Info("[payment][usecase] regenerate order")
	return u.create(ctx, CreateOrderInput{
		AmountMinorUnits: prev.AmountMinorUnits,
		Method:           prev.Method,
		Customer:         prev.CustomerSnapshot,
		LineItems:        prev.LineItems,
		TTLSeconds:       prev.RequestedTTLSeconds,
		Provider:         prev.RequestedProvider,
	}, prev.ID, prev.RetryCount+1)
}

func (u *PaymentOrderUseCase) GetByID(ctx context.Context, id string) (entities.PaymentOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.PaymentOrder{}, ErrInvalidPaymentOrderID
	}
	if actor := u.lookup(id); actor != nil {
		return actor.snapshot(), nil
	}
	return u.load(ctx, id)
}

func (u *PaymentOrderUseCase) load(ctx context.Context, id string) (entities.PaymentOrder, error) {
	if u.repo == nil {
		return entities.PaymentOrder{}, ErrPaymentOrderNotFound
	}
	o, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	if o.ID == "" {
		return entities.PaymentOrder{}, ErrPaymentOrderNotFound
	}
	return o, nil
}

// ListAttempts returns every attempt in the regeneration chain of id, oldest first.
func (u *PaymentOrderUseCase) ListAttempts(ctx context.Context, id string) ([]entities.PaymentOrder, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	root := current
	seen := map[string]bool{root.ID: true}
	for root.ParentID != "" && !seen[root.ParentID] {
		parent, err := u.GetByID(ctx, root.ParentID)
		if errors.Is(err, ErrPaymentOrderNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		seen[parent.ID] = true
		root = parent
	}

	attempts := []entities.PaymentOrder{root}
	visited := map[string]bool{root.ID: true}
	for i := 0; i < len(attempts); i++ {
		children, err := u.children(ctx, attempts[i].ID)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if !visited[c.ID] {
				visited[c.ID] = true
				attempts = append(attempts, c)
			}
		}
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		if attempts[i].RetryCount != attempts[j].RetryCount {
			return attempts[i].RetryCount < attempts[j].RetryCount
		}
		return attempts[i].CreatedAt.Before(attempts[j].CreatedAt)
	})
	return attempts, nil
}

// children merges live orders with stored ones; persistence is asynchronous, so a
// just-created attempt may exist only in memory.
func (u *PaymentOrderUseCase) children(ctx context.Context, parentID string) ([]entities.PaymentOrder, error) {
	byID := map[string]entities.PaymentOrder{}
	if u.repo != nil {
		stored, err := u.repo.ListByParentID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		for _, o := range stored {
			byID[o.ID] = o
		}
	}

	u.mu.Lock()
	var live []*orderActor
	for _, a := range u.actors {
		if a.parentID == parentID {
			live = append(live, a)
		}
	}
	u.mu.Unlock()
	for _, a := range live {
		o := a.snapshot()
		byID[o.ID] = o
	}

	out := make([]entities.PaymentOrder, 0, len(byID))
	for _, o := range byID {
		out = append(out, o)
	}
	return out, nil
}

func (u *PaymentOrderUseCase) Subscribe(listener func(entities.PaymentOrder)) func() {
	q := newListenerQueue(listener, u.log)

	u.listenersMu.Lock()
	id := u.nextListener
	u.nextListener++
	u.listeners[id] = q
	u.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			u.listenersMu.Lock()
			delete(u.listeners, id)
			u.listenersMu.Unlock()
			q.close()
		})
	}
}

// notify is called on the actor goroutine; it only enqueues.
func (u *PaymentOrderUseCase) notify(o entities.PaymentOrder) {
	u.listenersMu.RLock()
	defer u.listenersMu.RUnlock()
	for _, q := range u.listeners {
		q.push(o.Clone())
	}
}

// Shutdown stops every live actor without changing its state and drains pending writes.
// It gives up waiting when ctx is done.
func (u *PaymentOrderUseCase) Shutdown(ctx context.Context) error {
	u.mu.Lock()
	u.closed = true
	actors := make([]*orderActor, 0, len(u.actors))
	for _, a := range u.actors {
		actors = append(actors, a)
	}
	u.mu.Unlock()

	for _, a := range actors {
		a.requestStop()
	}
	var waitErr error
	for _, a := range actors {
		if err := a.wait(ctx); err != nil {
			waitErr = fmt.Errorf("waiting for order %s: %w", a.id, err)
			u.log.WithError(err).WithField("order_id", a.id).Warn("[payment][usecase] order did not stop in time")
			break
		}
	}
	u.scheduler.Close()
	u.log.WithField("orders", len(actors)).Info("[payment][usecase] shutdown")
	return errors.Join(waitErr, u.persister.Close(ctx))
}

func (u *PaymentOrderUseCase) register(a *orderActor) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrServiceClosed
	}
	u.pruneLocked()
	u.actors[a.id] = a
	return nil
}

func (u *PaymentOrderUseCase) lookup(id string) *orderActor {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.actors[id]
}

// pruneLocked forgets ended orders older than the retention window; after that
// GetByID falls back to the repository.
func (u *PaymentOrderUseCase) pruneLocked() {
	cutoff := u.clock.Now().Add(-u.retention)
	for id, a := range u.actors {
		if a.ended() && a.endedAt.Before(cutoff) {
			delete(u.actors, id)
		}
	}
}
