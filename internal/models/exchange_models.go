package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRate курс валюты относительно базовой (USD)
type ExchangeRate struct {
	ID        uuid.UUID       `db:"id"`
	Currency  string          `db:"currency"`
	Rate      decimal.Decimal `db:"rate"`
	UpdatedAt time.Time       `db:"updated_at"`
}
