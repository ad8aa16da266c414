package models

import (
	"fmt"
	"strings"
)

// Currency типы
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
	CurrencyBRL Currency = "BRL"
)

var supportedCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyJPY,
	CurrencyCHF,
	CurrencyBRL,
}

// SupportedCurrencies возвращает список поддерживаемых валют в фиксированном порядке
func SupportedCurrencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// Ordinal returns the position of c in SupportedCurrencies, or -1.
func (c Currency) Ordinal() int {
	for i, s := range supportedCurrencies {
		if s == c {
			return i
		}
	}
	return -1
}

// IsValid проверяет валидность валюты
func (c Currency) IsValid() bool {
	return c.Ordinal() >= 0
}

func (c Currency) String() string {
	return string(c)
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}
