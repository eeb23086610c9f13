package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikleaka/intonation-identity/internal/api/metrics"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes verification-code deliveries to a fixed set of workers
// using consistent hashing on the email address, keeping per-address
// ordering. Send failures are logged and counted, never surfaced to the
// registration path.
type Dispatcher struct {
	workers []chan ports.Delivery
	sender  ports.CodeSender
	dedup   ports.DeliveryDedup
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.CodeSender, dedup ports.DeliveryDedup, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Delivery, numWorkers),
		sender:  sender,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a delivery to the worker responsible for its address.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(delivery ports.Delivery) {
	d.workers[d.shardIndex(delivery.Email)] <- delivery
}

// shardIndex maps an email address deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, delivery)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, delivery ports.Delivery) {
	dup, err := d.dedup.IsDuplicate(ctx, delivery.Email, delivery.Code)
	if err != nil {
		// Dedup is an optimisation; deliver anyway when Redis is down.
		d.log.Warn().Err(err).Str("email", delivery.Email).Msg("delivery dedup check failed")
	}
	if dup {
		metrics.DeliveriesTotal.WithLabelValues("dedup_hit").Inc()
		return
	}

	start := time.Now()
	if err := d.sender.Send(ctx, delivery.Email, delivery.Code); err != nil {
		metrics.DeliveriesTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("email", delivery.Email).
			Int("worker_id", id).
			Msg("verification code delivery failed")
		return
	}
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	metrics.DeliveriesTotal.WithLabelValues("sent").Inc()

	if err := d.dedup.Mark(ctx, delivery.Email, delivery.Code); err != nil {
		d.log.Warn().Err(err).Str("email", delivery.Email).Msg("delivery dedup mark failed")
	}
}
