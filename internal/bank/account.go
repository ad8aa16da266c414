package bank

import (
	"math"
	"sync"
	"sync/atomic"

	"gw-payment-engine/internal/models"
	"gw-payment-engine/internal/money"
)

// Account is a balance in minor units guarded by its own exclusive lock.
// Withdraw and Deposit require the caller to hold the lock; Balance may be
// read without it and can be slightly stale.
type Account struct {
	ref            models.AccountRef
	currency       models.Currency
	overdraftLimit int64
	profit         *Counter

	mu      sync.Mutex
	balance atomic.Int64
}

func NewAccount(ref models.AccountRef, currency models.Currency, balance, overdraftLimit int64, profit *Counter) *Account {
	a := &Account{
		ref:            ref,
		currency:       currency,
		overdraftLimit: overdraftLimit,
		profit:         profit,
	}
	a.balance.Store(balance)
	return a
}

func (a *Account) Ref() models.AccountRef    { return a.ref }
func (a *Account) Currency() models.Currency { return a.currency }
func (a *Account) OverdraftLimit() int64     { return a.overdraftLimit }
func (a *Account) Balance() int64            { return a.balance.Load() }

func (a *Account) Lock()   { a.mu.Lock() }
func (a *Account) Unlock() { a.mu.Unlock() }

// Deposit adds amount to the balance. Non-positive amounts are ignored.
func (a *Account) Deposit(amount int64) {
	if amount <= 0 {
		return
	}
	a.balance.Add(amount)
}

// Withdraw debits amount, using the overdraft limit when the balance does not
// cover it. The overdrawn part carries a 5% surcharge that is credited to the
// owning bank's profit.
func (a *Account) Withdraw(amount int64) bool {
	_, ok := a.Debit(amount)
	return ok
}

// Debit records what a successful withdraw took from an account.
type Debit struct {
	Amount    int64
	Surcharge int64
}

// Total is the full amount removed from the balance.
func (d Debit) Total() int64 {
	return d.Amount + d.Surcharge
}

// Debit is Withdraw returning the receipt needed by Reverse.
func (a *Account) Debit(amount int64) (Debit, bool) {
	if amount <= 0 {
		return Debit{}, false
	}

	balance := a.balance.Load()
	if balance >= amount {
		a.balance.Store(balance - amount)
		return Debit{Amount: amount}, true
	}

	// Measured from the current balance, so an already overdrawn account
	// is surcharged on its existing debt as well.
	if balance < 0 && amount > math.MaxInt64+balance {
		return Debit{}, false
	}
	shortfall := amount - balance
	if a.overdraftLimit < shortfall {
		return Debit{}, false
	}

	surcharge, err := money.Percent(shortfall, money.OverdraftSurcharge)
	if err != nil || shortfall > math.MaxInt64-surcharge {
		return Debit{}, false
	}
	a.balance.Store(balance - (amount - shortfall) - (shortfall + surcharge))
	if a.profit != nil {
		a.profit.Add(surcharge)
	}
	return Debit{Amount: amount, Surcharge: surcharge}, true
}

// Reverse undoes d: the balance gets back everything taken and the
// surcharge leaves the bank's profit again. The caller holds the lock.
func (a *Account) Reverse(d Debit) {
	a.Deposit(d.Total())
	if d.Surcharge > 0 && a.profit != nil {
		a.profit.Add(-d.Surcharge)
	}
}

func (a *Account) Report() models.AccountReport {
	return models.AccountReport{
		Ref:            a.ref,
		Currency:       a.currency,
		Balance:        a.Balance(),
		OverdraftLimit: a.overdraftLimit,
	}
}
