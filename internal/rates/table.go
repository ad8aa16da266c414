// Package rates provides the exchange-rate lookup used by international
// transfers. A Table is immutable once built, so lookups are pure and safe
// to call while account locks are held.
package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

// Source converts amounts between currencies.
type Source interface {
	Rate(from, to models.Currency) (decimal.Decimal, error)
}

// Func adapts a plain function to Source.
type Func func(from, to models.Currency) (decimal.Decimal, error)

func (f Func) Rate(from, to models.Currency) (decimal.Decimal, error) {
	return f(from, to)
}

type pair struct {
	from, to models.Currency
}

type Table struct {
	rates map[pair]decimal.Decimal
}

const crossRatePrecision = 10

// NewTableFromBase builds every cross rate from per-currency rates quoted
// against a common base: rate(from, to) = base[to] / base[from].
func NewTableFromBase(base map[models.Currency]decimal.Decimal) (*Table, error) {
	const op = "rates.NewTableFromBase"

	for c, r := range base {
		if !c.IsValid() {
			return nil, fmt.Errorf("%s: %q: %w", op, c, custom_err.ErrInvalidCurrency)
		}
		if !r.IsPositive() {
			return nil, fmt.Errorf("%s: non-positive rate %s for %s", op, r, c)
		}
	}

	t := &Table{rates: make(map[pair]decimal.Decimal, len(base)*len(base))}
	for from, fromRate := range base {
		for to, toRate := range base {
			if from == to {
				t.rates[pair{from, to}] = decimal.NewFromInt(1)
				continue
			}
			t.rates[pair{from, to}] = toRate.DivRound(fromRate, crossRatePrecision)
		}
	}
	return t, nil
}

func (t *Table) Rate(from, to models.Currency) (decimal.Decimal, error) {
	r, ok := t.rates[pair{from, to}]
	if !ok {
		return decimal.Zero, fmt.Errorf("rates.Rate: %s->%s: %w", from, to, custom_err.ErrUnknownCurrencyPair)
	}
	return r, nil
}

// Len is the number of defined ordered pairs.
func (t *Table) Len() int {
	return len(t.rates)
}

// DefaultBaseRates are units of each currency per one USD.
func DefaultBaseRates() map[models.Currency]decimal.Decimal {
	return map[models.Currency]decimal.Decimal{
		models.CurrencyUSD: decimal.RequireFromString("1"),
		models.CurrencyEUR: decimal.RequireFromString("0.92"),
		models.CurrencyGBP: decimal.RequireFromString("0.79"),
		models.CurrencyJPY: decimal.RequireFromString("149.50"),
		models.CurrencyCHF: decimal.RequireFromString("0.88"),
		models.CurrencyBRL: decimal.RequireFromString("5.00"),
	}
}

// ParseBaseRates parses "USD:1,EUR:0.92,...".
func ParseBaseRates(s string) (map[models.Currency]decimal.Decimal, error) {
	const op = "rates.ParseBaseRates"

	out := make(map[models.Currency]decimal.Decimal)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		code, value, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%s: malformed entry %q", op, item)
		}
		c, err := models.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%s: rate for %s: %w", op, c, err)
		}
		out[c] = r
	}
	return out, nil
}

// Storage is where base rates are loaded from.
type Storage interface {
	GetAllRates(ctx context.Context) ([]models.ExchangeRate, error)
}

// Load reads base rates from storage once and freezes them into a Table.
func Load(ctx context.Context, storage Storage) (*Table, error) {
	const op = "rates.Load"

	stored, err := storage.GetAllRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := make(map[models.Currency]decimal.Decimal, len(stored))
	for _, r := range stored {
		c, err := models.ParseCurrency(r.Currency)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		base[c] = r.Rate
	}
	return NewTableFromBase(base)
}
