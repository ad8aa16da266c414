package models

import (
	"time"
)

// TransferEvent событие о завершении перевода (успешном или нет)
type TransferEvent struct {
	TransactionID   string     `json:"transaction_id" bson:"transaction_id"`
	Origin          AccountRef `json:"origin" bson:"origin"`
	Destination     AccountRef `json:"destination" bson:"destination"`
	Kind            string     `json:"kind" bson:"kind"`
	Amount          int64      `json:"amount" bson:"amount"`
	FromCurrency    string     `json:"from_currency" bson:"from_currency"`
	ToCurrency      string     `json:"to_currency" bson:"to_currency"`
	Fee             int64      `json:"fee" bson:"fee"`
	ConvertedAmount int64      `json:"converted_amount" bson:"converted_amount"`
	Rate            string     `json:"rate,omitempty" bson:"rate,omitempty"`
	Status          string     `json:"status" bson:"status"`
	Reason          string     `json:"reason,omitempty" bson:"reason,omitempty"`
	WorkerID        int        `json:"worker_id" bson:"worker_id"`
	Timestamp       time.Time  `json:"timestamp" bson:"timestamp"`
}

const (
	TransferKindNational      = "NATIONAL"
	TransferKindInternational = "INTERNATIONAL"
)
