package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

func TestNewBank_InvalidCurrency(t *testing.T) {
	_, err := NewBank(1, models.Currency("XYZ"))
	assert.ErrorIs(t, err, custom_err.ErrInvalidCurrency)
}

func TestBank_NewAccount_SequentialIDsAfterReserves(t *testing.T) {
	b, err := NewBank(3, models.CurrencyGBP)
	require.NoError(t, err)

	r1 := b.NewAccount(1000, 0)
	r2 := b.NewAccount(2000, 100)

	assert.Equal(t, models.AccountRef{BankID: 3, AccountID: 7}, r1)
	assert.Equal(t, models.AccountRef{BankID: 3, AccountID: 8}, r2)

	acc, err := b.Account(8)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), acc.Balance())
	assert.Equal(t, int64(100), acc.OverdraftLimit())
	assert.Equal(t, models.CurrencyGBP, acc.Currency())

	_, err = b.Account(9)
	assert.ErrorIs(t, err, custom_err.ErrAccountNotFound)
	_, err = b.Account(ReserveAccountID(models.CurrencyUSD))
	assert.ErrorIs(t, err, custom_err.ErrAccountNotFound)
}

func TestReserveSet_TotalOverCurrencies(t *testing.T) {
	b, err := NewBank(2, models.CurrencyEUR)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, c := range models.SupportedCurrencies() {
		r, err := b.Reserves().Get(c)
		require.NoError(t, err)
		assert.Equal(t, c, r.Currency())
		assert.Equal(t, 2, r.Ref().BankID)
		assert.Less(t, r.Ref().AccountID, FirstCustomerAccountID)
		assert.False(t, seen[r.Ref().AccountID])
		seen[r.Ref().AccountID] = true
	}

	_, err = b.Reserves().Get(models.Currency("XYZ"))
	assert.ErrorIs(t, err, custom_err.ErrInvalidCurrency)

	require.NoError(t, b.Reserves().Fund(models.CurrencyJPY, 500))
	assert.Equal(t, int64(500), b.Reserves().Balances()[models.CurrencyJPY])
	assert.ErrorIs(t, b.Reserves().Fund(models.CurrencyJPY, 0), custom_err.ErrInvalidAmount)
}

func TestBank_EnqueueRejectsForeignOrigin(t *testing.T) {
	b, err := NewBank(1, models.CurrencyUSD)
	require.NoError(t, err)

	tx := models.NewTransaction(
		models.AccountRef{BankID: 2, AccountID: 7},
		models.AccountRef{BankID: 1, AccountID: 7},
		10,
	)
	assert.ErrorIs(t, b.Enqueue(tx), custom_err.ErrInvalidTransfer)
	assert.ErrorIs(t, b.Enqueue(nil), custom_err.ErrInvalidTransfer)

	from := b.NewAccount(100, 0)
	to := b.NewAccount(0, 0)
	created, err := b.NewTransfer(from, to, 50)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status())
	assert.Equal(t, 1, b.Queue().Len())
}

func TestBank_Report(t *testing.T) {
	b, err := NewBank(1, models.CurrencyBRL)
	require.NoError(t, err)
	b.NewAccount(1000, 0)
	b.NewAccount(-200, 500)
	require.NoError(t, b.Reserves().Fund(models.CurrencyBRL, 10000))
	b.RecordNational()
	b.RecordInternational()
	b.RecordInternational()

	r := b.Report()
	assert.Equal(t, 1, r.BankID)
	assert.Equal(t, models.CurrencyBRL, r.Currency)
	assert.Equal(t, 2, r.AccountCount)
	assert.Equal(t, int64(800), r.TotalBalance)
	assert.Equal(t, int64(1), r.NationalTransfers)
	assert.Equal(t, int64(2), r.InternationalTransfers)
	assert.Equal(t, int64(10000), r.Reserves[models.CurrencyBRL])
	assert.Len(t, r.Reserves, len(models.SupportedCurrencies()))
	assert.False(t, r.Operating)
}

func TestDirectory_Resolve(t *testing.T) {
	b1, _ := NewBank(1, models.CurrencyUSD)
	b2, _ := NewBank(2, models.CurrencyEUR)
	d := NewDirectory(b2, b1)

	got, err := d.Resolve(2)
	require.NoError(t, err)
	assert.Same(t, b2, got)

	_, err = d.Resolve(9)
	assert.ErrorIs(t, err, custom_err.ErrBankNotFound)
	assert.Error(t, d.Register(b1))

	banks := d.Banks()
	require.Len(t, banks, 2)
	assert.Equal(t, 1, banks[0].ID())

	ref := b2.NewAccount(10, 0)
	gotBank, acc, err := ResolveAccount(d, ref)
	require.NoError(t, err)
	assert.Same(t, b2, gotBank)
	assert.Equal(t, ref, acc.Ref())
}
