package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers and After channels only fire when the clock is advanced.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*MockTicker
	waiters []*waiter
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

type waiter struct {
	at time.Time
	ch chan time.Time
}

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker returns a ticker driven by Advance
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{
		interval: d,
		next:     c.now.Add(d),
		// Generous buffer so a single large Advance does not lose ticks
		ch: make(chan time.Time, 64),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// After returns a channel that receives once the clock passes now+d
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, &waiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward, firing any tickers and After channels due
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)

	live := c.tickers[:0]
	for _, t := range c.tickers {
		if t.fire(c.now) {
			live = append(live, t)
		}
	}
	c.tickers = live

	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !c.now.Before(w.at) {
			w.ch <- c.now
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
}

// Set sets the clock to the given time without firing anything
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ActiveTickers returns the number of tickers that have not been stopped
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// PendingAfters returns the number of After channels not yet fired
func (c *MockClock) PendingAfters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// MockTicker is a ticker fired by MockClock.Advance
type MockTicker struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	stopped  bool
	ch       chan time.Time
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop prevents any further ticks
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *MockTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire sends every tick due by now; returns false once stopped
func (t *MockTicker) fire(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	for !now.Before(t.next) {
		select {
		case t.ch <- t.next:
		default:
		}
		t.next = t.next.Add(t.interval)
	}
	return true
}
