package portal

import (
	"sync"
	"time"
)

// ResendCooldownSeconds is how long a new OTP cannot be requested after one was sent.
const ResendCooldownSeconds = 60

// Cooldown counts down once per interval. It is not persisted.
type Cooldown struct {
	interval time.Duration

	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	onTick    func(remaining int)
}

func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval}
}

// OnTick registers fn to be called with the remaining count after every tick.
func (c *Cooldown) OnTick(fn func(remaining int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// Start (re)starts the countdown from seconds.
func (c *Cooldown) Start(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if seconds <= 0 {
		return
	}
	c.remaining = seconds
	stop := make(chan struct{})
	c.stop = stop
	go c.run(stop)
}

func (c *Cooldown) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stop != stop {
				c.mu.Unlock()
				return
			}
			onTick := c.onTick
			if c.remaining > 1 {
				c.remaining--
				remaining := c.remaining
				c.mu.Unlock()
				if onTick != nil {
					onTick(remaining)
				}
				continue
			}
			c.mu.Unlock()

			// The final tick is delivered before the cooldown reads as inactive.
			if onTick != nil {
				onTick(0)
			}
			c.mu.Lock()
			if c.stop == stop {
				c.remaining = 0
				c.stop = nil
			}
			c.mu.Unlock()
			return
		}
	}
}

func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Cooldown) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.remaining = 0
}

func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}
