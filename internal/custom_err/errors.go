package custom_err

import "errors"

var (
	// Transfer validation errors
	ErrInvalidTransfer = errors.New("invalid transfer")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrSelfTransfer    = errors.New("origin and destination are the same account")
	ErrBankNotFound    = errors.New("bank not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidCurrency = errors.New("invalid currency")

	// Settlement errors
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientReserve = errors.New("insufficient reserve")
	ErrUnknownCurrencyPair = errors.New("unknown currency pair")

	// Lifecycle errors
	ErrBankNotOperating   = errors.New("bank is not operating")
	ErrBankAlreadyRunning = errors.New("bank is already running")
)

// Reason maps an error to the short code published with transfer events.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInsufficientReserve):
		return "insufficient_reserve"
	case errors.Is(err, ErrUnknownCurrencyPair):
		return "unknown_currency_pair"
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrBankNotFound),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrInvalidTransfer):
		return "invalid_transfer"
	default:
		return "internal"
	}
}
