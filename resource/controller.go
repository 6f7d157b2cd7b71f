package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds provider call limits.
type Config struct {
	// MaxInFlight is the maximum number of concurrent provider calls.
	// If 0, calls are not bounded.
	MaxInFlight int64

	// CallsPerSecond limits the provider call rate.
	// If 0, unlimited.
	CallsPerSecond float64

	// Burst is the number of calls allowed above CallsPerSecond.
	// If 0, defaults to MaxInFlight or 1.
	Burst int

	// IOLimitBytesPerSec is the maximum throughput when reading state documents.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller governs calls into the cluster-state provider.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	callSem     *semaphore.Weighted // nil if unbounded
	callLimiter *rate.Limiter       // nil if unlimited
	ioLimiter   *rate.Limiter       // nil if unlimited

	inFlight atomic.Int64
	calls    atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.callSem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.CallsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = max(int(cfg.MaxInFlight), 1)
		}
		c.callLimiter = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireCall reserves a provider call slot.
// Blocks until a slot and a rate token are available or ctx is canceled.
func (c *Controller) AcquireCall(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.callSem != nil {
		if err := c.callSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	if c.callLimiter != nil {
		if err := c.callLimiter.Wait(ctx); err != nil {
			if c.callSem != nil {
				c.callSem.Release(1)
			}
			return err
		}
	}

	c.inFlight.Add(1)
	c.calls.Add(1)
	return nil
}

// TryAcquireCall reserves a call slot without blocking.
func (c *Controller) TryAcquireCall() bool {
	if c == nil {
		return true
	}
	if c.callSem != nil && !c.callSem.TryAcquire(1) {
		return false
	}
	if c.callLimiter != nil && !c.callLimiter.Allow() {
		if c.callSem != nil {
			c.callSem.Release(1)
		}
		return false
	}
	c.inFlight.Add(1)
	c.calls.Add(1)
	return true
}

// ReleaseCall releases a provider call slot.
func (c *Controller) ReleaseCall() {
	if c == nil {
		return
	}
	if c.callSem != nil {
		c.callSem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of provider calls currently running.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Calls returns the total number of admitted provider calls.
func (c *Controller) Calls() int64 {
	if c == nil {
		return 0
	}
	return c.calls.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests above the burst; take them in burst-sized chunks.
	burst := c.ioLimiter.Burst()
	for bytes > burst {
		if err := c.ioLimiter.WaitN(ctx, burst); err != nil {
			return err
		}
		bytes -= burst
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// Do runs fn while holding a call slot.
func Do[T any](ctx context.Context, c *Controller, fn func(context.Context) (T, error)) (T, error) {
	if err := c.AcquireCall(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer c.ReleaseCall()
	return fn(ctx)
}
