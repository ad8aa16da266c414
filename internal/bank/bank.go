package bank

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

// Bank owns its customer accounts, its reserves, its pending-transaction
// queue and three counters, each behind its own lock.
type Bank struct {
	id       int
	currency models.Currency

	accountsMu sync.RWMutex
	accounts   []*Account

	reserves *ReserveSet
	queue    *TransactionQueue

	national      Counter
	international Counter
	profit        Counter

	operating atomic.Bool
}

func NewBank(id int, currency models.Currency) (*Bank, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("bank.NewBank: %q: %w", currency, custom_err.ErrInvalidCurrency)
	}
	b := &Bank{
		id:       id,
		currency: currency,
		queue:    NewTransactionQueue(),
	}
	b.reserves = NewReserveSet(id, &b.profit)
	return b, nil
}

func (b *Bank) ID() int                       { return b.id }
func (b *Bank) Currency() models.Currency     { return b.currency }
func (b *Bank) Reserves() *ReserveSet         { return b.reserves }
func (b *Bank) Queue() *TransactionQueue      { return b.queue }
func (b *Bank) IsOperating() bool             { return b.operating.Load() }
func (b *Bank) NationalTransfers() int64      { return b.national.Value() }
func (b *Bank) InternationalTransfers() int64 { return b.international.Value() }
func (b *Bank) Profit() int64                 { return b.profit.Value() }

// SetOperating flips the operating flag and reports the previous value.
func (b *Bank) SetOperating(on bool) (was bool) {
	return b.operating.Swap(on)
}

func (b *Bank) RecordNational()      { b.national.Inc() }
func (b *Bank) RecordInternational() { b.international.Inc() }

// NewAccount provisions a customer account in the bank's currency.
func (b *Bank) NewAccount(balance, overdraftLimit int64) models.AccountRef {
	b.accountsMu.Lock()
	defer b.accountsMu.Unlock()

	ref := models.AccountRef{BankID: b.id, AccountID: FirstCustomerAccountID + len(b.accounts)}
	b.accounts = append(b.accounts, NewAccount(ref, b.currency, balance, overdraftLimit, &b.profit))
	return ref
}

// Account resolves a customer account by id.
func (b *Bank) Account(accountID int) (*Account, error) {
	const op = "bank.Account"

	idx := accountID - FirstCustomerAccountID
	b.accountsMu.RLock()
	defer b.accountsMu.RUnlock()
	if idx < 0 || idx >= len(b.accounts) {
		return nil, fmt.Errorf("%s: %d/%d: %w", op, b.id, accountID, custom_err.ErrAccountNotFound)
	}
	return b.accounts[idx], nil
}

func (b *Bank) Accounts() []*Account {
	b.accountsMu.RLock()
	defer b.accountsMu.RUnlock()
	out := make([]*Account, len(b.accounts))
	copy(out, b.accounts)
	return out
}

// Enqueue appends tx to the bank's queue and wakes a waiting worker.
func (b *Bank) Enqueue(tx *models.Transaction) error {
	if tx == nil {
		return custom_err.ErrInvalidTransfer
	}
	if tx.Origin.BankID != b.id {
		return fmt.Errorf("bank.Enqueue: origin bank %d, queue of bank %d: %w",
			tx.Origin.BankID, b.id, custom_err.ErrInvalidTransfer)
	}
	b.queue.Enqueue(tx)
	return nil
}

// NewTransfer creates a PENDING transaction from one of this bank's accounts
// and enqueues it.
func (b *Bank) NewTransfer(origin, destination models.AccountRef, amount int64) (*models.Transaction, error) {
	tx := models.NewTransaction(origin, destination, amount)
	if err := b.Enqueue(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Report is a lock-free point-in-time view; balances may be slightly stale.
func (b *Bank) Report() models.BankReport {
	accounts := b.Accounts()
	r := models.BankReport{
		BankID:                 b.id,
		Currency:               b.currency,
		Operating:              b.IsOperating(),
		Reserves:               b.reserves.Balances(),
		NationalTransfers:      b.NationalTransfers(),
		InternationalTransfers: b.InternationalTransfers(),
		AccountCount:           len(accounts),
		Accounts:               make([]models.AccountReport, 0, len(accounts)),
		Profit:                 b.Profit(),
		Pending:                b.queue.Len(),
	}
	for _, a := range accounts {
		ar := a.Report()
		r.Accounts = append(r.Accounts, ar)
		r.TotalBalance += ar.Balance
	}
	return r
}
