package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pool bounds how many task handlers run at once. Submit blocks while
// the pool is saturated, so the claim loop cannot outrun its handlers.
type Pool struct {
	slots    chan struct{}
	inFlight atomic.Int64
	wg       sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{slots: make(chan struct{}, size)}
	for i := 0; i < size; i++ {
		p.slots <- struct{}{}
	}

	return p
}

// Submit runs fn on its own goroutine once a slot frees up. It returns
// the context error if ctx ends before a slot is available.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	p.inFlight.Add(1)

	go func() {
		defer func() {
			p.inFlight.Add(-1)
			p.wg.Done()
			p.slots <- struct{}{}
		}()
		fn()
	}()

	return nil
}

// InFlight reports how many handlers are currently running.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Wait blocks until every submitted handler has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
