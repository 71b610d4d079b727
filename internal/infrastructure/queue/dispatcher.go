package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountd/account-service/internal/api/metrics"
	"github.com/accountd/account-service/internal/core/domain"
	"github.com/accountd/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// ErrStopped is returned by Notify once the dispatcher has begun shutting down.
var ErrStopped = errors.New("notification dispatcher stopped")

// Dispatcher delivers reset notifications off the request path. Notifications
// are routed to a fixed set of workers by hashing the account ID, so the
// notifications of one account are delivered in the order they were issued.
// A notification accepted by Notify is delivered even if shutdown begins
// before a worker reaches it.
type Dispatcher struct {
	workers  []chan domain.ResetNotification
	notifier ports.ResetNotifier
	log      zerolog.Logger

	// stopping is closed when the start context ends; sealed is closed once
	// no Notify can enqueue anymore, which is when workers drain.
	stopping chan struct{}
	sealed   chan struct{}
	mu       sync.RWMutex
	stopped  bool

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers that hand
// each notification to notifier. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.ResetNotifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.ResetNotification, numWorkers),
		notifier: notifier,
		log:      log,
		stopping: make(chan struct{}),
		sealed:   make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ResetNotification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled the workers
// deliver what is still buffered and exit; call Wait to block until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		<-ctx.Done()
		close(d.stopping)
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
		close(d.sealed)
	}()
}

// Wait blocks until every goroutine started by Start has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Notify queues n for delivery. It blocks only while the target worker's
// buffer is full, and gives up when ctx is done or the dispatcher stops.
func (d *Dispatcher) Notify(ctx context.Context, n domain.ResetNotification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(n.AccountID)
	ch := d.workers[idx]
	select {
	case ch <- n:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(ch)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopping:
		return ErrStopped
	}
}

// shardIndex maps an account ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ResetNotification) {
	defer d.wg.Done()
	depth := metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			<-d.sealed
			d.drain(ctx, id, ch)
			depth.Set(0)
			return
		case n := <-ch:
			depth.Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

// drain delivers whatever is left in ch after shutdown. Items still queued
// when drainTimeout runs out are counted as dropped.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.ResetNotification) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	for {
		select {
		case n := <-ch:
			if drainCtx.Err() != nil {
				metrics.PasswordResetsTotal.WithLabelValues("notify_dropped").Inc()
				d.log.Warn().Str("account_id", n.AccountID).Int("worker_id", id).Msg("reset notification dropped on shutdown")
				continue
			}
			d.deliver(drainCtx, id, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.ResetNotification) {
	start := time.Now()
	if err := d.notifier.Notify(ctx, n); err != nil {
		metrics.NotifyDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		metrics.PasswordResetsTotal.WithLabelValues("notify_failed").Inc()
		d.log.Error().Err(err).
			Str("account_id", n.AccountID).
			Int("worker_id", id).
			Msg("reset notification failed")
		return
	}
	metrics.NotifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	metrics.PasswordResetsTotal.WithLabelValues("notified").Inc()
}
