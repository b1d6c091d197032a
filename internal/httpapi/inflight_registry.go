package httpapi

import (
	"context"
	"sync"
	"sync/atomic"
)

// InflightRegistry tracks synthesis requests that are talking to the provider
// and supports graceful draining on shutdown. While draining, new synthesis
// requests are rejected and in-flight ones are allowed to finish.
//
// The mu mutex makes the draining check and wg.Add atomic in Add(), so no
// request can slip in between StartDraining and Wait.
type InflightRegistry struct {
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
	count    atomic.Int64
}

// NewInflightRegistry creates a new InflightRegistry.
func NewInflightRegistry() *InflightRegistry {
	return &InflightRegistry{}
}

// Add registers a new request. Returns false if the registry is draining.
func (r *InflightRegistry) Add() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draining {
		return false
	}
	r.wg.Add(1)
	r.count.Add(1)
	return true
}

// Done marks a request as completed. Must be called exactly once per successful Add.
func (r *InflightRegistry) Done() {
	r.count.Add(-1)
	r.wg.Done()
}

// StartDraining makes future Add calls return false.
func (r *InflightRegistry) StartDraining() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draining = true
}

// IsDraining reports whether the registry is in draining mode.
func (r *InflightRegistry) IsDraining() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draining
}

// ActiveCount returns the number of requests in flight.
func (r *InflightRegistry) ActiveCount() int64 {
	return r.count.Load()
}

// Wait blocks until all in-flight requests are done or ctx expires.
func (r *InflightRegistry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
