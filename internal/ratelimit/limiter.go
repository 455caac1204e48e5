// Package ratelimit implements the executor's per-agent throttle.
//
// golang.org/x/time/rate provides the pacing math (the teacher's go.mod
// already pulls it in transitively through the Gemini SDK; here it is
// promoted to a direct, exercised dependency). rate.Limiter alone does not
// guarantee FIFO release order across concurrent Wait callers, so each
// per-agent bucket adds an explicit ticket queue served by a single pump
// goroutine: callers enqueue in arrival order and are woken in that order,
// while the Limiter remains the single source of pacing truth.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles calls per agent name.
type Limiter struct {
	enabled  bool
	perSec   rate.Limit
	burst    int
	mu       sync.Mutex
	buckets  map[string]*bucket
}

type bucket struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	queue   []chan struct{}
	pumping bool
}

// New builds a Limiter. requestsPerInterval calls are permitted per
// intervalMs across any sliding window of that size, per agent name. If
// enabled is false, Acquire always returns immediately.
func New(enabled bool, requestsPerInterval int, intervalMs int) *Limiter {
	if requestsPerInterval <= 0 {
		requestsPerInterval = 1
	}
	if intervalMs <= 0 {
		intervalMs = 1000
	}
	perSec := rate.Limit(float64(requestsPerInterval) / (float64(intervalMs) / 1000.0))
	return &Limiter{
		enabled: enabled,
		perSec:  perSec,
		// Burst of 1 makes this a pure minimum-interval gate: tokens never
		// accumulate, so the configured rate cannot be exceeded across any
		// sliding window of size intervalMs. A burst equal to
		// requestsPerInterval would let a full quota fire instantly and
		// then refill, doubling the effective rate at a window boundary.
		burst:   1,
		buckets: make(map[string]*bucket),
	}
}

// Acquire suspends the caller until agentName's quota permits another call,
// then consumes one unit. Concurrent acquirers for the same agent are
// released in FIFO arrival order.
func (l *Limiter) Acquire(ctx context.Context, agentName string) error {
	if !l.enabled {
		return nil
	}
	b := l.bucketFor(agentName)

	ticket := make(chan struct{})
	b.mu.Lock()
	b.queue = append(b.queue, ticket)
	shouldPump := !b.pumping
	if shouldPump {
		b.pumping = true
	}
	b.mu.Unlock()

	if shouldPump {
		go b.pump()
	}

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Limiter) bucketFor(agentName string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[agentName]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.perSec, l.burst)}
		l.buckets[agentName] = b
	}
	return b
}

// pump serves queued tickets one at a time in FIFO order, pacing releases
// against the shared rate.Limiter.
func (b *bucket) pump() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.pumping = false
			b.mu.Unlock()
			return
		}
		head := b.queue[0]
		b.mu.Unlock()

		// Waiting against a background context: a caller that abandons the
		// queue (its own ctx cancelled) still has its turn consumed here so
		// downstream tickets keep FIFO order; the wasted token is the
		// documented cost of that rare race.
		_ = b.limiter.Wait(context.Background())

		close(head)
		b.mu.Lock()
		b.queue = b.queue[1:]
		b.mu.Unlock()
	}
}
