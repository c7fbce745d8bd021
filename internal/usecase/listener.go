package usecase

import (
	"sync"

	"pdv_payments/internal/domain/entities"

	"github.com/sirupsen/logrus"
)

// listenerQueue feeds one subscriber from its own goroutine. Snapshots are delivered in
// the order they were published and the queue never blocks the publisher, so a listener
// may call back into the use case (GetByID, Cancel, Regenerate) for the very order that
// notified it.
type listenerQueue struct {
	fn  func(entities.PaymentOrder)
	log *logrus.Entry

	mu      sync.Mutex
	pending []entities.PaymentOrder

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

func newListenerQueue(fn func(entities.PaymentOrder), log *logrus.Entry) *listenerQueue {
	q := &listenerQueue{
		fn:   fn,
		log:  log,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *listenerQueue) push(o entities.PaymentOrder) {
	q.mu.Lock()
	q.pending = append(q.pending, o)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// close stops delivery; snapshots still queued are dropped. It does not wait for the
// goroutine, so a listener may unsubscribe itself.
func (q *listenerQueue) close() {
	q.quitOnce.Do(func() { close(q.quit) })
}

func (q *listenerQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.quit:
			return
		case <-q.wake:
		}

		for {
			o, ok := q.pop()
			if !ok {
				break
			}
			select {
			case <-q.quit:
				return
			default:
			}
			q.deliver(o)
		}
	}
}

func (q *listenerQueue) pop() (entities.PaymentOrder, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return entities.PaymentOrder{}, false
	}
	o := q.pending[0]
	q.pending[0] = entities.PaymentOrder{}
	q.pending = q.pending[1:]
	return o, true
}

func (q *listenerQueue) deliver(o entities.PaymentOrder) {
	defer func() {
		if r := recover(); r != nil {
			q.log.WithFields(logrus.Fields{"order_id": o.ID, "panic": r}).Error("[payment][usecase] status listener panicked")
		}
	}()
	q.fn(o)
}
