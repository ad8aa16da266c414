package models

import (
	"cmp"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// AccountRef is the composite (bankId, accountId) key. It defines the global
// lock order over every account in the system, reserves included.
type AccountRef struct {
	BankID    int `json:"bank_id" bson:"bank_id"`
	AccountID int `json:"account_id" bson:"account_id"`
}

func (r AccountRef) Compare(other AccountRef) int {
	if c := cmp.Compare(r.BankID, other.BankID); c != 0 {
		return c
	}
	return cmp.Compare(r.AccountID, other.AccountID)
}

func (r AccountRef) String() string {
	return fmt.Sprintf("%d/%d", r.BankID, r.AccountID)
}

type TransactionStatus int32

const (
	StatusPending TransactionStatus = iota
	StatusSuccessful
	StatusFailed
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSuccessful:
		return "SUCCESSFUL"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("TransactionStatus(%d)", int32(s))
	}
}

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// Transaction is a pending transfer. Amount is in minor units of the origin
// account's currency. The status moves from PENDING to a terminal value once.
type Transaction struct {
	ID          uuid.UUID
	Origin      AccountRef
	Destination AccountRef
	Amount      int64
	CreatedAt   time.Time

	status atomic.Int32
}

func NewTransaction(origin, destination AccountRef, amount int64) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		Origin:      origin,
		Destination: destination,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
}

func (t *Transaction) Status() TransactionStatus {
	return TransactionStatus(t.status.Load())
}

// Commit sets a terminal status. It reports false when the status was already
// terminal or when status is not terminal; the stored value is then unchanged.
func (t *Transaction) Commit(status TransactionStatus) bool {
	if !status.IsTerminal() {
		return false
	}
	return t.status.CompareAndSwap(int32(StatusPending), int32(status))
}

func (t *Transaction) IsNational() bool {
	return t.Origin.BankID == t.Destination.BankID
}
