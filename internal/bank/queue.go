package bank

import (
	"context"
	"sync"

	"gw-payment-engine/internal/models"
)

// TransactionQueue is a FIFO of pending transactions. Enqueue never blocks;
// Dequeue blocks until an item is available or ctx is done.
type TransactionQueue struct {
	mu    sync.Mutex
	items []*models.Transaction
	// notify carries at most one wake-up. A woken consumer that leaves items
	// behind passes the wake-up on.
	notify chan struct{}
}

func NewTransactionQueue() *TransactionQueue {
	return &TransactionQueue{notify: make(chan struct{}, 1)}
}

func (q *TransactionQueue) Enqueue(tx *models.Transaction) {
	q.mu.Lock()
	q.items = append(q.items, tx)
	q.mu.Unlock()
	q.signal()
}

func (q *TransactionQueue) Dequeue(ctx context.Context) (*models.Transaction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			tx := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()

			if remaining > 0 {
				q.signal()
			}
			return tx, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *TransactionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *TransactionQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
