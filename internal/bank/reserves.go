package bank

import (
	"fmt"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

// FirstCustomerAccountID is the first id handed to customer accounts; the ids
// below it belong to reserve accounts, one per supported currency.
var FirstCustomerAccountID = len(models.SupportedCurrencies()) + 1

// ReserveAccountID is the fixed account id of the reserve holding currency.
func ReserveAccountID(currency models.Currency) int {
	return currency.Ordinal() + 1
}

// ReserveSet holds one reserve account per supported currency. Reserves are the
// FX clearing counter-party for international transfers.
type ReserveSet struct {
	accounts map[models.Currency]*Account
}

func NewReserveSet(bankID int, profit *Counter) *ReserveSet {
	currencies := models.SupportedCurrencies()
	rs := &ReserveSet{accounts: make(map[models.Currency]*Account, len(currencies))}
	for _, c := range currencies {
		ref := models.AccountRef{BankID: bankID, AccountID: ReserveAccountID(c)}
		rs.accounts[c] = NewAccount(ref, c, 0, 0, profit)
	}
	return rs
}

func (r *ReserveSet) Get(currency models.Currency) (*Account, error) {
	const op = "bank.ReserveSet.Get"

	a, ok := r.accounts[currency]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, currency, custom_err.ErrInvalidCurrency)
	}
	return a, nil
}

// Fund deposits amount into the reserve for currency under its lock.
func (r *ReserveSet) Fund(currency models.Currency, amount int64) error {
	a, err := r.Get(currency)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return custom_err.ErrInvalidAmount
	}
	unlock := LockOrdered(a)
	defer unlock()
	a.Deposit(amount)
	return nil
}

func (r *ReserveSet) Balances() map[models.Currency]int64 {
	out := make(map[models.Currency]int64, len(r.accounts))
	for c, a := range r.accounts {
		out[c] = a.Balance()
	}
	return out
}
