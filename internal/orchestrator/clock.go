package orchestrator

import (
	"context"
	"sync"
	"time"
)

// ClockLayout format of the displayed time.
const ClockLayout = "15:04:05"

// Clock updates a displayed time string once per interval until stopped.
type Clock struct {
	interval time.Duration
	now      func() time.Time
	onTick   func(string)

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewClock creates a one-second clock. onTick may be nil.
func NewClock(onTick func(string)) *Clock {
	return &Clock{
		interval: time.Second,
		now:      time.Now,
		onTick:   onTick,
	}
}

// Start sets the current time and begins ticking. Calling Start on a running clock
// is a no-op.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.current = c.now().Format(ClockLayout)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				c.tick(ctx, t)
			}
		}
	}()
}

func (c *Clock) tick(ctx context.Context, t time.Time) {
	value := t.Format(ClockLayout)

	c.mu.Lock()
	c.current = value
	c.mu.Unlock()

	if ctx.Err() == nil && c.onTick != nil {
		c.onTick(value)
	}
}

// Current returns the last displayed time.
func (c *Clock) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Stop cancels the ticker and waits for it to exit; no update happens afterwards.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.wg.Wait()
	}
}
