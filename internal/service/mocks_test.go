package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"gw-payment-engine/internal/models"
)

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Rate(from, to models.Currency) (decimal.Decimal, error) {
	args := m.Called(from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) Emit(event models.TransferEvent) bool {
	args := m.Called(event)
	return args.Bool(0)
}

type MockTransfer struct {
	mock.Mock
}

func (m *MockTransfer) Process(ctx context.Context, tx *models.Transaction, workerID int) (models.TransactionStatus, error) {
	args := m.Called(ctx, tx, workerID)
	status := args.Get(0).(models.TransactionStatus)
	tx.Commit(status)
	return status, args.Error(1)
}

// blockingTransfer holds every Process call until release is closed and
// reports each start on started.
type blockingTransfer struct {
	started chan *models.Transaction
	release chan struct{}

	mu   sync.Mutex
	done []*models.Transaction
}

func newBlockingTransfer() *blockingTransfer {
	return &blockingTransfer{
		started: make(chan *models.Transaction, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingTransfer) Process(ctx context.Context, tx *models.Transaction, workerID int) (models.TransactionStatus, error) {
	b.started <- tx
	<-b.release
	tx.Commit(models.StatusSuccessful)

	b.mu.Lock()
	b.done = append(b.done, tx)
	b.mu.Unlock()
	return models.StatusSuccessful, nil
}

func (b *blockingTransfer) processed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.done)
}
