package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
	"gw-payment-engine/internal/storage"
)

// Querier is the part of *pgxpool.Pool the storage needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RateStorage struct {
	db Querier
}

func NewRateStorage(db Querier) *RateStorage {
	return &RateStorage{db: db}
}

func (s *RateStorage) GetAllRates(ctx context.Context) ([]models.ExchangeRate, error) {
	const op = "storage.GetAllRates"

	rows, err := s.db.Query(ctx, storage.GetAllRatesQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query rates: %w", op, err)
	}
	defer rows.Close()

	var rates []models.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rates, nil
}

func (s *RateStorage) GetRateByCurrency(ctx context.Context, currency models.Currency) (*models.ExchangeRate, error) {
	const op = "storage.GetRateByCurrency"

	rate, err := scanRate(s.db.QueryRow(ctx, storage.GetRateByCurrencyQuery, string(currency)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: currency %s: %w", op, currency, custom_err.ErrUnknownCurrencyPair)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rate, nil
}

func scanRate(row pgx.Row) (models.ExchangeRate, error) {
	var (
		rate models.ExchangeRate
		raw  string
	)
	if err := row.Scan(&rate.ID, &rate.Currency, &raw, &rate.UpdatedAt); err != nil {
		return models.ExchangeRate{}, err
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return models.ExchangeRate{}, fmt.Errorf("invalid rate %q for %s: %w", raw, rate.Currency, err)
	}
	rate.Rate = value
	return rate, nil
}
