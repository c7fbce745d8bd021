package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/metrics"
	"pdv_payments/internal/usecase/interfaces"
	"pdv_payments/internal/usecase/polling"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const inboxSize = 16

// Messages accepted by an order actor. Replies go through buffered channels so the
// actor never blocks on a caller that went away.
type actorMsg interface{ actorMsg() }

type generatedMsg struct {
	fragment entities.GatewayFragment
	err      error
	reply    chan entities.PaymentOrder
}

type pollResultMsg struct {
	fragment entities.GatewayFragment
	err      error
}

type tickMsg struct {
	reply chan tickDecision
}

type expiryFiredMsg struct{}

type cancelMsg struct {
	reply chan struct{}
}

type snapshotMsg struct {
	reply chan entities.PaymentOrder
}

func (generatedMsg) actorMsg()   {}
func (pollResultMsg) actorMsg()  {}
func (tickMsg) actorMsg()        {}
func (expiryFiredMsg) actorMsg() {}
func (cancelMsg) actorMsg()      {}
func (snapshotMsg) actorMsg()    {}

type tickDecision struct {
	order entities.PaymentOrder
	poll  bool
}

type actorDeps struct {
	gateway     interfaces.IPaymentGateway
	clock       clockwork.Clock
	scheduler   *polling.Scheduler
	maxAttempts int
	notify      func(entities.PaymentOrder)
	persist     func(entities.PaymentOrder)
	log         *logrus.Entry
}

// orderActor is the single writer of one PaymentOrder.
//
// Everything that can change the order (the create response, poll results, the
// expiry timer, cancellation) arrives as a message and is applied in arrival order
// by one goroutine. Other goroutines only ever see clones.
type orderActor struct {
	actorDeps

	id       string
	parentID string

	order          entities.PaymentOrder
	cancelGenerate context.CancelFunc

	inbox    chan actorMsg
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// written by run before done is closed
	final   entities.PaymentOrder
	endedAt time.Time

	expiry   clockwork.Timer
	polling  bool
	attempts int
}

func newOrderActor(order entities.PaymentOrder, deps actorDeps, cancelGenerate context.CancelFunc) *orderActor {
	deps.log = deps.log.WithFields(logrus.Fields{"order_id": order.ID, "provider": order.Provider, "method": order.Method})
	return &orderActor{
		actorDeps:      deps,
		id:             order.ID,
		parentID:       order.ParentID,
		order:          order,
		cancelGenerate: cancelGenerate,
		inbox:          make(chan actorMsg, inboxSize),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (a *orderActor) start() {
	metrics.ActiveOrders.Inc()
	a.persist(a.order.Clone())
	go a.run()
}

func (a *orderActor) run() {
	defer func() {
		a.disarm()
		if a.cancelGenerate != nil {
			a.cancelGenerate()
		}
		a.final = a.order.Clone()
		a.endedAt = a.clock.Now()
		metrics.ActiveOrders.Dec()
		close(a.done)
	}()

	for {
		var expiryC <-chan time.Time
		if a.expiry != nil {
			expiryC = a.expiry.Chan()
		}

		select {
		case msg := <-a.inbox:
			a.handle(msg)
		case <-expiryC:
			a.handle(expiryFiredMsg{})
		case <-a.stop:
			a.log.Debug("[payment][actor] stopped")
			return
		}

		if a.order.Status.Terminal() {
			return
		}
	}
}

func (a *orderActor) handle(msg actorMsg) {
	switch m := msg.(type) {
	case generatedMsg:
		a.onGenerated(m.fragment, m.err)
		m.reply <- a.order.Clone()
	case tickMsg:
		m.reply <- a.onTick()
	case pollResultMsg:
		a.onPollResult(m.fragment, m.err)
	case expiryFiredMsg:
		a.expiry = nil
		if a.order.Status == entities.OrderStatusWaiting {
			a.log.Info("[payment][actor] countdown elapsed")
			a.transition(entities.OrderStatusExpired, nil)
		}
	case cancelMsg:
		a.onCancel()
		close(m.reply)
	case snapshotMsg:
		m.reply <- a.order.Clone()
	}
}

func (a *orderActor) onGenerated(f entities.GatewayFragment, err error) {
	if a.order.Status != entities.OrderStatusGenerating {
		a.log.WithField("status", a.order.Status).Info("[payment][actor] discarding gateway response for order no longer generating")
		return
	}
	if err != nil {
		a.transition(entities.OrderStatusFailed, toErrorDetail(err))
		return
	}

	f.ApplyTo(&a.order)
	if !a.transition(entities.OrderStatusWaiting, nil) {
		a.transition(entities.OrderStatusFailed, entities.NewErrorDetail(
			entities.ErrorKindIncompleteGatewayResponse, "gateway response has no payment instrument", false))
		return
	}

	a.armExpiry()
	if a.order.Status != entities.OrderStatusWaiting {
		return
	}
	a.applyGatewayStatus(f.Status)
	if a.order.Status == entities.OrderStatusWaiting {
		a.startPolling()
	}
}

func (a *orderActor) onTick() tickDecision {
	if a.order.Status != entities.OrderStatusWaiting {
		return tickDecision{}
	}
	if a.expired() {
		a.transition(entities.OrderStatusExpired, nil)
		return tickDecision{}
	}
	a.attempts++
	return tickDecision{order: a.order.Clone(), poll: true}
}

func (a *orderActor) onPollResult(f entities.GatewayFragment, err error) {
	if a.order.Status != entities.OrderStatusWaiting {
		a.log.WithField("status", a.order.Status).Debug("[payment][actor] discarding poll result")
		return
	}
	// The countdown wins over anything the gateway reports once ExpiresAt has passed.
	if a.expired() {
		a.transition(entities.OrderStatusExpired, nil)
		return
	}

	if err != nil {
		d := toErrorDetail(err)
		if d.Kind == entities.ErrorKindCanceled {
			return
		}
		if !d.Retryable {
			a.transition(entities.OrderStatusFailed, d)
			return
		}
		a.order.LastError = d
		a.log.WithFields(logrus.Fields{"kind": d.Kind, "attempt": a.attempts}).Warn("[payment][actor] transient status check failure, still waiting")
		a.checkPollBudget()
		return
	}

	a.applyGatewayStatus(f.Status)
	if a.order.Status == entities.OrderStatusWaiting {
		a.checkPollBudget()
	}
}

func (a *orderActor) applyGatewayStatus(s entities.GatewayStatus) {
	switch s {
	case entities.GatewayStatusPaid:
		a.transition(entities.OrderStatusPaid, nil)
	case entities.GatewayStatusExpired:
		a.transition(entities.OrderStatusExpired, nil)
	case entities.GatewayStatusFailed:
		a.transition(entities.OrderStatusFailed, entities.NewErrorDetail(
			entities.ErrorKindPaymentDeclined, "payment was declined or canceled by the gateway", false))
	}
}

func (a *orderActor) onCancel() {
	switch a.order.Status {
	case entities.OrderStatusGenerating:
		if a.cancelGenerate != nil {
			a.cancelGenerate()
		}
		a.transition(entities.OrderStatusFailed, canceledDetail())
	case entities.OrderStatusWaiting:
		a.transition(entities.OrderStatusFailed, canceledDetail())
	default:
		a.log.WithField("status", a.order.Status).Debug("[payment][actor] cancel on terminal order ignored")
	}
}

// transition applies one state change and emits exactly one notification and one
// persist request for it. It reports false when the edge is not allowed.
func (a *orderActor) transition(next entities.OrderStatus, detail *entities.ErrorDetail) bool {
	prev := a.order.Status
	if err := a.order.TransitionTo(next, a.clock.Now(), detail); err != nil {
		a.log.WithError(err).Warn("[payment][actor] transition rejected")
		return false
	}
	if prev == entities.OrderStatusWaiting {
		a.disarm()
	}

	metrics.OrderTransitions.WithLabelValues(a.order.Provider, string(a.order.Method), string(next)).Inc()
	fields := logrus.Fields{"from": prev, "to": next}
	if detail != nil {
		fields["kind"] = detail.Kind
		fields["retryable"] = detail.Retryable
	}
	a.log.WithFields(fields).Info("[payment][actor] transition")

	snap := a.order.Clone()
	a.persist(snap)
	a.notify(snap)
	return true
}

func (a *orderActor) expired() bool {
	return !a.clock.Now().Before(a.order.ExpiresAt)
}

func (a *orderActor) armExpiry() {
	d := a.order.ExpiresAt.Sub(a.clock.Now())
	if d <= 0 {
		a.transition(entities.OrderStatusExpired, nil)
		return
	}
	a.expiry = a.clock.NewTimer(d)
}

func (a *orderActor) startPolling() {
	if err := a.scheduler.Start(a.id, a.pollOnce); err != nil {
		a.log.WithError(err).Error("[payment][actor] could not start polling")
		return
	}
	a.polling = true
}

func (a *orderActor) checkPollBudget() {
	if a.maxAttempts <= 0 || a.attempts < a.maxAttempts || !a.polling {
		return
	}
	a.log.WithField("attempts", a.attempts).Info("[payment][actor] poll budget exhausted, waiting for the countdown")
	a.scheduler.Stop(a.id)
	a.polling = false
}

// disarm cancels the countdown and the polling loop together.
func (a *orderActor) disarm() {
	if a.expiry != nil {
		a.expiry.Stop()
		a.expiry = nil
	}
	if a.polling {
		a.scheduler.Stop(a.id)
		a.polling = false
	}
}

// pollOnce runs on the scheduler's goroutine. It asks the actor whether a check is
// still wanted, calls the gateway outside the actor, and hands the result back.
func (a *orderActor) pollOnce(ctx context.Context) {
	reply := make(chan tickDecision, 1)
	if !a.send(ctx, tickMsg{reply: reply}) {
		return
	}

	var d tickDecision
	select {
	case d = <-reply:
	case <-ctx.Done():
		return
	case <-a.done:
		return
	}
	if !d.poll {
		return
	}

	f, err := a.gateway.CheckStatus(ctx, d.order)
	if ctx.Err() != nil {
		return
	}
	a.send(ctx, pollResultMsg{fragment: f, err: err})
}

func (a *orderActor) send(ctx context.Context, msg actorMsg) bool {
	select {
	case a.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-a.done:
		return false
	}
}

// deliverGenerated hands the create result to the actor and returns the resulting snapshot.
func (a *orderActor) deliverGenerated(f entities.GatewayFragment, err error) entities.PaymentOrder {
	reply := make(chan entities.PaymentOrder, 1)
	select {
	case a.inbox <- generatedMsg{fragment: f, err: err, reply: reply}:
	case <-a.done:
		return a.final
	}
	select {
	case o := <-reply:
		return o
	case <-a.done:
		return a.final
	}
}

func (a *orderActor) cancel() {
	reply := make(chan struct{})
	select {
	case a.inbox <- cancelMsg{reply: reply}:
	case <-a.done:
		return
	}
	select {
	case <-reply:
	case <-a.done:
	}
}

func (a *orderActor) snapshot() entities.PaymentOrder {
	reply := make(chan entities.PaymentOrder, 1)
	select {
	case a.inbox <- snapshotMsg{reply: reply}:
	case <-a.done:
		return a.final
	}
	select {
	case o := <-reply:
		return o
	case <-a.done:
		return a.final
	}
}

// requestStop ends the actor without a transition; the last persisted snapshot stays as is.
func (a *orderActor) requestStop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

func (a *orderActor) wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *orderActor) ended() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func canceledDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorKindCanceled, "order canceled by operator", false)
}

// toErrorDetail folds anything a gateway returns into the closed taxonomy.
func toErrorDetail(err error) *entities.ErrorDetail {
	var d *entities.ErrorDetail
	if errors.As(err, &d) {
		return d
	}
	switch {
	case errors.Is(err, context.Canceled):
		return entities.Wrap(entities.ErrorKindCanceled, err, false)
	case errors.Is(err, context.DeadlineExceeded):
		return entities.Wrap(entities.ErrorKindTimeout, err, true)
	}
	return entities.Wrap(entities.ErrorKindGatewayInternalError, err, true)
}
