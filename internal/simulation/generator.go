// Package simulation drives the engine with random load: it provisions
// accounts and reserves, then keeps submitting transfers until stopped.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"gw-payment-engine/internal/bank"
	"gw-payment-engine/internal/models"
)

type Config struct {
	AccountsPerBank    int
	MaxBalance         int64
	MaxOverdraft       int64
	ReserveBalance     int64
	MaxAmount          int64
	Interval           time.Duration
	InternationalShare float64
	Seed               int64
}

// NewRand returns a source seeded with seed, or with the clock when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Populate funds every reserve of every bank and opens AccountsPerBank
// customer accounts with random balances and overdraft limits.
func Populate(banks []*bank.Bank, cfg Config, rnd *rand.Rand) error {
	const op = "simulation.Populate"

	for _, b := range banks {
		for _, c := range models.SupportedCurrencies() {
			if cfg.ReserveBalance <= 0 {
				break
			}
			if err := b.Reserves().Fund(c, cfg.ReserveBalance); err != nil {
				return fmt.Errorf("%s: bank %d: %w", op, b.ID(), err)
			}
		}
		for i := 0; i < cfg.AccountsPerBank; i++ {
			b.NewAccount(randUpTo(rnd, cfg.MaxBalance), randUpTo(rnd, cfg.MaxOverdraft))
		}
	}
	return nil
}

func randUpTo(rnd *rand.Rand, n int64) int64 {
	if n <= 0 {
		return 0
	}
	return rnd.Int63n(n + 1)
}

// Generator submits random transfers originating at one bank.
type Generator struct {
	origin *bank.Bank
	banks  []*bank.Bank
	cfg    Config
	log    *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand

	submitted atomic.Int64
}

func NewGenerator(origin *bank.Bank, banks []*bank.Bank, cfg Config, rnd *rand.Rand, log *slog.Logger) *Generator {
	return &Generator{
		origin: origin,
		banks:  banks,
		cfg:    cfg,
		rnd:    rnd,
		log:    log.With(slog.Int("bank_id", origin.ID())),
	}
}

func (g *Generator) Submitted() int64 { return g.submitted.Load() }

// Next picks a random origin account in the generator's bank, a destination
// that is another bank's account with probability InternationalShare, and an
// amount in [1, MaxAmount]. ok is false when no destination exists.
func (g *Generator) Next() (origin, destination models.AccountRef, amount int64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	from := g.origin.Accounts()
	if len(from) == 0 {
		return origin, destination, 0, false
	}
	origin = from[g.rnd.Intn(len(from))].Ref()

	target := g.origin
	if others := g.otherBanks(); len(others) > 0 && g.rnd.Float64() < g.cfg.InternationalShare {
		target = others[g.rnd.Intn(len(others))]
	}

	to := target.Accounts()
	candidates := make([]models.AccountRef, 0, len(to))
	for _, a := range to {
		if a.Ref() != origin {
			candidates = append(candidates, a.Ref())
		}
	}
	if len(candidates) == 0 {
		return origin, destination, 0, false
	}
	destination = candidates[g.rnd.Intn(len(candidates))]

	amount = 1
	if g.cfg.MaxAmount > 1 {
		amount += g.rnd.Int63n(g.cfg.MaxAmount)
	}
	return origin, destination, amount, true
}

func (g *Generator) otherBanks() []*bank.Bank {
	out := make([]*bank.Bank, 0, len(g.banks))
	for _, b := range g.banks {
		if b.ID() != g.origin.ID() {
			out = append(out, b)
		}
	}
	return out
}

// Run submits one transfer per Interval until ctx is done.
func (g *Generator) Run(ctx context.Context) {
	interval := g.cfg.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.log.Debug("generator started")
	for {
		select {
		case <-ctx.Done():
			g.log.Info("generator stopped", slog.Int64("submitted", g.submitted.Load()))
			return
		case <-ticker.C:
			origin, destination, amount, ok := g.Next()
			if !ok {
				continue
			}
			if _, err := g.origin.NewTransfer(origin, destination, amount); err != nil {
				g.log.Error("failed to submit transfer", slog.String("error", err.Error()))
				continue
			}
			g.submitted.Add(1)
		}
	}
}
