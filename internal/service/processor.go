package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gw-payment-engine/internal/bank"
	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

type ProcessorConfig struct {
	Workers int
	// Latency is slept after every committed transaction to pace throughput.
	Latency time.Duration
}

// PaymentProcessor runs a pool of workers draining one bank's queue. Stopping
// is immediate: in-flight transactions finish, queued ones stay queued.
type PaymentProcessor struct {
	bank      *bank.Bank
	transfers Transfer
	workers   int
	latency   time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	succeeded atomic.Int64
	failed    atomic.Int64
}

func NewPaymentProcessor(b *bank.Bank, transfers Transfer, cfg ProcessorConfig, log *slog.Logger) *PaymentProcessor {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &PaymentProcessor{
		bank:      b,
		transfers: transfers,
		workers:   cfg.Workers,
		latency:   cfg.Latency,
		log:       log.With(slog.Int("bank_id", b.ID())),
	}
}

func (p *PaymentProcessor) Bank() *bank.Bank { return p.bank }
func (p *PaymentProcessor) Succeeded() int64 { return p.succeeded.Load() }
func (p *PaymentProcessor) Failed() int64    { return p.failed.Load() }

// Start marks the bank operating and launches the workers. Cancelling ctx
// stops the workers as Stop would, but leaves the operating flag to Stop.
func (p *PaymentProcessor) Start(ctx context.Context) error {
	const op = "service.PaymentProcessor.Start"

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bank.SetOperating(true) {
		return fmt.Errorf("%s: bank %d: %w", op, p.bank.ID(), custom_err.ErrBankAlreadyRunning)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx, i)
	}

	p.log.Info("bank started",
		slog.String("currency", p.bank.Currency().String()),
		slog.Int("workers", p.workers))
	return nil
}

func (p *PaymentProcessor) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	p.log.Debug("payment worker started", slog.Int("worker_id", id))

	for p.bank.IsOperating() {
		tx, err := p.bank.Queue().Dequeue(ctx)
		if err != nil {
			break
		}

		// a dequeued transaction always runs to a terminal status
		status, _ := p.transfers.Process(ctx, tx, id)
		p.record(status)

		if p.latency > 0 {
			select {
			case <-time.After(p.latency):
			case <-ctx.Done():
			}
		}
	}

	p.log.Debug("payment worker stopping", slog.Int("worker_id", id))
}

func (p *PaymentProcessor) record(status models.TransactionStatus) {
	switch status {
	case models.StatusSuccessful:
		p.succeeded.Add(1)
	default:
		p.failed.Add(1)
	}
}

// Stop clears the operating flag, wakes idle workers and waits for in-flight
// transactions. It returns how many transactions were left in the queue.
func (p *PaymentProcessor) Stop(ctx context.Context) (int, error) {
	const op = "service.PaymentProcessor.Stop"

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.bank.SetOperating(false) {
		return p.bank.Queue().Len(), fmt.Errorf("%s: bank %d: %w", op, p.bank.ID(), custom_err.ErrBankNotOperating)
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.log.Warn("shutdown timeout exceeded")
		return p.bank.Queue().Len(), fmt.Errorf("%s: %w", op, ctx.Err())
	}

	left := p.bank.Queue().Len()
	p.log.Info("bank stopped",
		slog.Int64("succeeded", p.succeeded.Load()),
		slog.Int64("failed", p.failed.Load()),
		slog.Int("left_in_queue", left))
	return left, nil
}
