package bank

import (
	"fmt"
	"slices"
	"sync"

	"gw-payment-engine/internal/custom_err"
	"gw-payment-engine/internal/models"
)

// Directory resolves bank ids. The transfer engine only reads from it.
type Directory interface {
	Resolve(bankID int) (*Bank, error)
}

type MapDirectory struct {
	mu    sync.RWMutex
	banks map[int]*Bank
}

func NewDirectory(banks ...*Bank) *MapDirectory {
	d := &MapDirectory{banks: make(map[int]*Bank, len(banks))}
	for _, b := range banks {
		d.banks[b.ID()] = b
	}
	return d
}

func (d *MapDirectory) Register(b *Bank) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.banks[b.ID()]; ok {
		return fmt.Errorf("bank.Register: bank %d already registered", b.ID())
	}
	d.banks[b.ID()] = b
	return nil
}

func (d *MapDirectory) Resolve(bankID int) (*Bank, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.banks[bankID]
	if !ok {
		return nil, fmt.Errorf("bank.Resolve: %d: %w", bankID, custom_err.ErrBankNotFound)
	}
	return b, nil
}

// ResolveAccount resolves a customer account through its bank.
func ResolveAccount(d Directory, ref models.AccountRef) (*Bank, *Account, error) {
	b, err := d.Resolve(ref.BankID)
	if err != nil {
		return nil, nil, err
	}
	a, err := b.Account(ref.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return b, a, nil
}

// Banks returns the registered banks ordered by id.
func (d *MapDirectory) Banks() []*Bank {
	d.mu.RLock()
	out := make([]*Bank, 0, len(d.banks))
	for _, b := range d.banks {
		out = append(out, b)
	}
	d.mu.RUnlock()

	slices.SortFunc(out, func(x, y *Bank) int { return x.ID() - y.ID() })
	return out
}
