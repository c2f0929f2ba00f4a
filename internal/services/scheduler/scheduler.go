// Package scheduler runs the one cancellable timer each room may have
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/dependencies/clock"
	"github.com/mcoot/cutgame/internal/model"
)

// Config holds scheduler settings
type Config struct {
	// TickInterval is the time between countdown ticks
	TickInterval time.Duration
}

// DefaultConfig returns a Config with one tick per second
func DefaultConfig() Config {
	return Config{TickInterval: time.Second}
}

// TickFunc receives the seconds remaining on a countdown
type TickFunc func(ticket model.TimerTicket, remaining int)

// FireFunc is called when a countdown expires or a delay elapses
type FireFunc func(ticket model.TimerTicket)

type timer struct {
	ticket model.TimerTicket
	stop   chan struct{}
}

func (t *timer) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// Scheduler keeps at most one live timer per room. Every armed timer gets a
// fresh ticket; callbacks carry it so receivers can discard stale firings.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger
	config Config

	mu         sync.Mutex
	generation uint64
	timers     map[model.RoomCode]*timer
	stopped    bool

	// Running timer goroutines, waited on by Stop
	running sync.WaitGroup
}

// New creates a new Scheduler
func New(clk clock.Clock, logger *slog.Logger, config Config) *Scheduler {
	return &Scheduler{
		clock:  clk,
		logger: logger.With(slog.String("component", "scheduler")),
		config: config,
		timers: make(map[model.RoomCode]*timer),
	}
}

// StartCountdown arms a countdown of seconds for the room, replacing any live
// timer. onTick is called with seconds, then once per interval down to zero;
// onExpire follows the zero tick. Once the scheduler is stopped nothing is
// armed and the zero ticket is returned.
func (s *Scheduler) StartCountdown(code model.RoomCode, seconds int, onTick TickFunc, onExpire FireFunc) model.TimerTicket {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0
	}
	t := s.armLocked(code)
	ticker := s.clock.NewTicker(s.config.TickInterval)
	s.running.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.running.Done()
		s.runCountdown(code, t, ticker, seconds, onTick, onExpire)
	}()

	s.logger.Debug("countdown started",
		slog.String("room_code", string(code)),
		slog.Uint64("ticket", uint64(t.ticket)),
		slog.Int("seconds", seconds),
	)
	return t.ticket
}

// After arms a one-shot delay for the room, replacing any live timer
func (s *Scheduler) After(code model.RoomCode, delay time.Duration, fn FireFunc) model.TimerTicket {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0
	}
	t := s.armLocked(code)
	ch := s.clock.After(delay)
	s.running.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.running.Done()
		select {
		case <-t.stop:
			return
		case <-ch:
		}
		if !s.finish(code, t) {
			return
		}
		fn(t.ticket)
	}()

	return t.ticket
}

// Cancel stops the room's live timer, if any. It does not wait for the
// timer goroutine, so a callback that was already under way may still run
// once after Cancel returns. Callers must check the ticket they are handed
// against the one they armed before acting on it.
func (s *Scheduler) Cancel(code model.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(code)
}

// IsCurrent reports whether ticket is the room's live timer
func (s *Scheduler) IsCurrent(code model.RoomCode, ticket model.TimerTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[code]
	return ok && t.ticket == ticket
}

// Active returns the number of rooms with a live timer
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every live timer, refuses new ones and waits for callbacks
// already under way to return. It must not be called from a timer callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for code := range s.timers {
		s.cancelLocked(code)
	}
	s.mu.Unlock()

	s.running.Wait()
}

func (s *Scheduler) armLocked(code model.RoomCode) *timer {
	s.cancelLocked(code)
	s.generation++
	t := &timer{
		ticket: model.TimerTicket(s.generation),
		stop:   make(chan struct{}),
	}
	s.timers[code] = t
	return t
}

func (s *Scheduler) cancelLocked(code model.RoomCode) {
	t, ok := s.timers[code]
	if !ok {
		return
	}
	close(t.stop)
	delete(s.timers, code)
}

// finish releases the room's slot if t still holds it. Returns false if t
// was cancelled in the meantime.
func (s *Scheduler) finish(code model.RoomCode, t *timer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.stopped() {
		return false
	}
	if current, ok := s.timers[code]; ok && current == t {
		delete(s.timers, code)
	}
	return true
}

func (s *Scheduler) runCountdown(code model.RoomCode, t *timer, ticker clock.Ticker, seconds int, onTick TickFunc, onExpire FireFunc) {
	defer ticker.Stop()

	remaining := seconds
	if t.stopped() {
		return
	}
	onTick(t.ticket, remaining)

	for remaining > 0 {
		select {
		case <-t.stop:
			return
		case <-ticker.C():
		}
		if t.stopped() {
			return
		}
		remaining--
		onTick(t.ticket, remaining)
	}

	if !s.finish(code, t) {
		return
	}
	onExpire(t.ticket)
}
