package events

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"gw-payment-engine/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.TransferEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	got     []string
}

func (p *blockingPublisher) Publish(ctx context.Context, event models.TransferEvent) error {
	<-p.release
	p.mu.Lock()
	p.got = append(p.got, event.TransactionID)
	p.mu.Unlock()
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

func (p *blockingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}
