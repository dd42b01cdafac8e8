// Package clock provides the monotonic millisecond time source.
//
// The counter is advanced by a background goroutine, the software analogue of
// a timer interrupt, and read atomically by the tick loop so a reader never
// observes a partially updated value.
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// Source returns monotonic milliseconds since boot.
type Source interface {
	Now() logic.Millis
}

// Counter is a millisecond counter safe for one writer and many readers.
type Counter struct {
	ms atomic.Uint64
}

// Now returns the current counter value.
func (c *Counter) Now() logic.Millis {
	return logic.Millis(c.ms.Load())
}

// Advance moves the counter forward by d milliseconds.
func (c *Counter) Advance(d logic.Millis) {
	c.ms.Add(uint64(d))
}

// Run advances the counter from the runtime's monotonic clock every
// resolution until ctx is done. It blocks; start it in its own goroutine.
func (c *Counter) Run(ctx context.Context, resolution time.Duration) {
	base := c.ms.Load()
	start := time.Now()

	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// time.Since uses the monotonic reading, so wall clock steps are ignored
			elapsed := uint64(time.Since(start) / time.Millisecond)
			c.ms.Store(base + elapsed)
		}
	}
}
