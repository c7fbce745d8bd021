package polling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const DefaultInterval = 5 * time.Second

var (
	ErrAlreadyScheduled = errors.New("order already has a polling loop")
	ErrSchedulerClosed  = errors.New("polling scheduler closed")
)

// TickFunc performs one status check. ctx is canceled when the loop is stopped.
type TickFunc func(ctx context.Context)

// Scheduler runs one fixed-cadence loop per order.
//
//   - ticks never overlap: a tick that fires while the previous one is still running is skipped;
//   - Stop cancels the loop and waits for any running tick, so nothing runs after it returns.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration
	log      *logrus.Entry

	mu     sync.Mutex
	loops  map[string]*loop
	closed bool
}

type loop struct {
	cancel  context.CancelFunc
	done    chan struct{}
	running sync.WaitGroup
	busy    atomic.Bool
	skipped atomic.Int64
}

func NewScheduler(clock clockwork.Clock, interval time.Duration, log *logrus.Entry) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
		log:      log.WithField("component", "polling"),
		loops:    make(map[string]*loop),
	}
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start registers the ticker before returning, so a caller advancing a fake clock
// right after Start observes the first tick.
func (s *Scheduler) Start(orderID string, tick TickFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	if _, ok := s.loops[orderID]; ok {
		return ErrAlreadyScheduled
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	ticker := s.clock.NewTicker(s.interval)
	s.loops[orderID] = l

	go s.run(ctx, orderID, l, ticker, tick)
	s.log.WithFields(logrus.Fields{"order_id": orderID, "interval": s.interval.String()}).Debug("[polling] started")
	return nil
}

func (s *Scheduler) run(ctx context.Context, orderID string, l *loop, ticker clockwork.Ticker, tick TickFunc) {
	defer close(l.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			if !l.busy.CompareAndSwap(false, true) {
				n := l.skipped.Add(1)
				s.log.WithFields(logrus.Fields{"order_id": orderID, "skipped": n}).Debug("[polling] previous tick still running, skipping")
				continue
			}
			l.running.Add(1)
			go func() {
				defer l.running.Done()
				defer l.busy.Store(false)
				tick(ctx)
			}()
		}
	}
}

// Stop is idempotent and safe to call for unknown orders.
func (s *Scheduler) Stop(orderID string) {
	s.mu.Lock()
	l, ok := s.loops[orderID]
	delete(s.loops, orderID)
	s.mu.Unlock()
	if !ok {
		return
	}

	l.cancel()
	<-l.done
	l.running.Wait()
	s.log.WithFields(logrus.Fields{"order_id": orderID, "skipped": l.skipped.Load()}).Debug("[polling] stopped")
}

func (s *Scheduler) Active(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[orderID]
	return ok
}

// Close stops every loop and rejects further Start calls.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	ids := make([]string, 0, len(s.loops))
	for id := range s.loops {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Stop(id)
	}
}
