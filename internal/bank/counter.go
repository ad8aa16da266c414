package bank

import "sync"

// Counter is an independently locked scalar. Bank counters are never grouped
// under one lock so that unrelated workers do not serialize on them.
type Counter struct {
	mu    sync.Mutex
	value int64
}

func (c *Counter) Add(delta int64) {
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
}

func (c *Counter) Inc() {
	c.Add(1)
}

func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
