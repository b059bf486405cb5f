package command

import (
	"sync"
	"time"
)

// Clock is the engine clock of the tests, time only moves when the test sets it.
type Clock struct {
	mu  sync.Mutex
	now uint64
}

// NewClock returns clock showing DefaultTimestamp.
func NewClock() *Clock {
	return &Clock{now: DefaultTimestamp}
}

// Now is meant to be passed to txsystem.WithClock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(int64(c.now), 0) /* #nosec G115 test timestamps fit into int64 */
}

// Set moves the clock to unix timestamp ts, backwards too.
func (c *Clock) Set(ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = ts
}

func (c *Clock) Add(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}
