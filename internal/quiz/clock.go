package quiz

import (
	"sync"
	"time"
)

// TickFunc receives the owning question ID and the whole seconds remaining.
type TickFunc func(questionID uint, remaining int)

// ExpireFunc fires exactly once when the countdown reaches zero. No ticks
// follow it.
type ExpireFunc func(questionID uint)

// Clock is a cancellable per-question countdown. At most one countdown is
// active at a time; starting a new one cancels any in-flight countdown
// first. Remaining time is derived from wall-clock deltas rather than tick
// counts, so tick delivery jitter does not skew accounting.
type Clock struct {
	mu         sync.Mutex
	stop       chan struct{}
	questionID uint
	running    bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Start begins a countdown of d for the given question. Any previous
// countdown is cancelled before the new one is armed.
func (c *Clock) Start(questionID uint, d time.Duration, onTick TickFunc, onExpire ExpireFunc) {
	c.mu.Lock()
	if c.running {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	c.questionID = questionID
	c.running = true
	c.mu.Unlock()

	go c.countdown(questionID, time.Now(), d, stop, onTick, onExpire)
}

// Cancel stops the active countdown. It is idempotent.
func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	close(c.stop)
	c.running = false
}

func (c *Clock) countdown(questionID uint, start time.Time, d time.Duration, stop chan struct{}, onTick TickFunc, onExpire ExpireFunc) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	expiry := time.NewTimer(d)
	defer expiry.Stop()

	for {
		select {
		case <-stop:
			return
		case <-expiry.C:
			c.mu.Lock()
			if c.stop == stop {
				c.running = false
			}
			c.mu.Unlock()
			onExpire(questionID)
			return
		case now := <-ticker.C:
			remaining := d - now.Sub(start)
			if remaining < 0 {
				remaining = 0
			}
			onTick(questionID, int(remaining.Round(time.Second)/time.Second))
		}
	}
}
