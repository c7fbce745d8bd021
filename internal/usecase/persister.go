package usecase

import (
	"context"
	"sync"
	"time"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/infrastructure/metrics"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	defaultPersistBuffer = 256
	persistTimeout       = 5 * time.Second
)

// Persister writes order snapshots in the background.
//
// Enqueue never blocks the order actor: when the buffer is full the snapshot is
// dropped with a warning. Save failures are logged and counted, never retried, and
// never change the order's state.
type Persister struct {
	repo interfaces.IPaymentOrderRepository
	log  *logrus.Entry

	mu     sync.RWMutex
	queue  chan entities.PaymentOrder
	closed bool
	done   chan struct{}
}

func NewPersister(repo interfaces.IPaymentOrderRepository, buffer int, log *logrus.Entry) *Persister {
	if buffer <= 0 {
		buffer = defaultPersistBuffer
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	p := &Persister{
		repo:  repo,
		log:   log.WithField("component", "persister"),
		queue: make(chan entities.PaymentOrder, buffer),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue reports whether the snapshot was accepted.
func (p *Persister) Enqueue(o entities.PaymentOrder) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.WithFields(logrus.Fields{"order_id": o.ID, "status": o.Status}).Warn("[payment][persist] persister closed, dropping snapshot")
		metrics.PersistDropped.Inc()
		return false
	}

	select {
	case p.queue <- o:
		return true
	default:
		p.log.WithFields(logrus.Fields{"order_id": o.ID, "status": o.Status}).Warn("[payment][persist] buffer full, dropping snapshot")
		metrics.PersistDropped.Inc()
		return false
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for o := range p.queue {
		p.save(o)
	}
}

func (p *Persister) save(o entities.PaymentOrder) {
	if p.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := p.repo.Save(ctx, o); err != nil {
		p.log.WithFields(logrus.Fields{"order_id": o.ID, "status": o.Status}).WithError(err).Error("[payment][persist] save failed")
		metrics.PersistFailures.Inc()
		return
	}
	p.log.WithFields(logrus.Fields{"order_id": o.ID, "status": o.Status}).Debug("[payment][persist] saved")
}

// Close stops accepting snapshots and waits for the queue to drain or ctx to end.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
