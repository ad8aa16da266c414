package storage

const (
	// Курсы валют относительно USD
	GetAllRatesQuery = `
		SELECT id, currency, rate::text, updated_at
		FROM exchange_rates
		ORDER BY currency
	`

	GetRateByCurrencyQuery = `
		SELECT id, currency, rate::text, updated_at
		FROM exchange_rates
		WHERE currency = $1
	`
)
