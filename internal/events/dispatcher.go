// Package events delivers transfer outcomes to external sinks. Delivery is
// fire-and-forget: producers never block on a slow sink, events are dropped
// when the buffer is full.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gw-payment-engine/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, event models.TransferEvent) error
	Close() error
}

// Emitter is what the transfer engine sees of a Dispatcher.
type Emitter interface {
	Emit(event models.TransferEvent) bool
}

type Dispatcher struct {
	publishers []Publisher
	timeout    time.Duration
	log        *slog.Logger

	queue   chan models.TransferEvent
	stopCh  chan struct{}
	stopped atomic.Bool
	wg      sync.WaitGroup

	dropped atomic.Int64
	failed  atomic.Int64
}

type DispatcherConfig struct {
	Buffer         int
	Workers        int
	PublishTimeout time.Duration
}

func NewDispatcher(cfg DispatcherConfig, log *slog.Logger, publishers ...Publisher) *Dispatcher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		publishers: publishers,
		timeout:    cfg.PublishTimeout,
		log:        log,
		queue:      make(chan models.TransferEvent, cfg.Buffer),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Emit queues event for delivery and reports whether it was accepted.
func (d *Dispatcher) Emit(event models.TransferEvent) bool {
	if d.stopped.Load() {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.dropped.Add(1)
		d.log.Error("очередь событий переполнена, событие отброшено",
			slog.String("tx_id", event.TransactionID),
			slog.String("status", event.Status))
		return false
	}
}

func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }
func (d *Dispatcher) Failed() int64  { return d.failed.Load() }

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.log.Debug("event worker started", slog.Int("worker_id", id))

	for {
		select {
		case event := <-d.queue:
			d.deliver(id, event)
		case <-d.stopCh:
			// deliver what was accepted before the stop
			for {
				select {
				case event := <-d.queue:
					d.deliver(id, event)
				default:
					d.log.Debug("event worker stopping", slog.Int("worker_id", id))
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(workerID int, event models.TransferEvent) {
	for _, p := range d.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := p.Publish(ctx, event)
		cancel()
		if err != nil {
			d.failed.Add(1)
			d.log.Error("event publish failed",
				slog.Int("worker_id", workerID),
				slog.String("tx_id", event.TransactionID),
				slog.String("error", err.Error()))
		}
	}
}

// Shutdown stops accepting events, waits for the workers to flush the
// buffer and closes every publisher.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if d.stopped.Swap(true) {
		return nil
	}
	d.log.Info("shutting down event dispatcher")
	close(d.stopCh)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var errs []error
	select {
	case <-done:
		d.log.Info("all event workers stopped",
			slog.Int64("dropped", d.dropped.Load()),
			slog.Int64("failed", d.failed.Load()))
	case <-ctx.Done():
		d.log.Warn("shutdown timeout exceeded")
		errs = append(errs, ctx.Err())
	}

	for _, p := range d.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
