package bank

import (
	"slices"
)

// LockOrdered acquires the locks of accounts in ascending (bankId, accountId)
// order and returns the function that releases them. Accounts sharing a ref
// are locked once. Nil entries are skipped.
func LockOrdered(accounts ...*Account) (unlock func()) {
	ordered := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		if a != nil {
			ordered = append(ordered, a)
		}
	}
	slices.SortFunc(ordered, func(x, y *Account) int {
		return x.ref.Compare(y.ref)
	})
	ordered = slices.CompactFunc(ordered, func(x, y *Account) bool {
		return x.ref == y.ref
	})

	for _, a := range ordered {
		a.Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].Unlock()
		}
	}
}

// WithLocked runs fn while holding the locks of accounts. The locks are
// released on every exit path of fn, including a panic.
func WithLocked(fn func() error, accounts ...*Account) error {
	unlock := LockOrdered(accounts...)
	defer unlock()
	return fn()
}
