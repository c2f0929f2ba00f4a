package round

import (
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/services/scheduler"
)

// armedTimer is a timer recorded by fakeTimers
type armedTimer struct {
	ticket   model.TimerTicket
	seconds  int
	delay    time.Duration
	onTick   scheduler.TickFunc
	onExpire scheduler.FireFunc
	onFire   scheduler.FireFunc
}

// fakeTimers records armed timers so tests can fire them synchronously
type fakeTimers struct {
	mu   sync.Mutex
	next model.TimerTicket
	live map[model.RoomCode]*armedTimer
}

var _ Timers = (*fakeTimers)(nil)

func newFakeTimers() *fakeTimers {
	return &fakeTimers{live: make(map[model.RoomCode]*armedTimer)}
}

func (f *fakeTimers) StartCountdown(code model.RoomCode, seconds int, onTick scheduler.TickFunc, onExpire scheduler.FireFunc) model.TimerTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.live[code] = &armedTimer{ticket: f.next, seconds: seconds, onTick: onTick, onExpire: onExpire}
	return f.next
}

func (f *fakeTimers) After(code model.RoomCode, delay time.Duration, fn scheduler.FireFunc) model.TimerTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.live[code] = &armedTimer{ticket: f.next, delay: delay, onFire: fn}
	return f.next
}

func (f *fakeTimers) Cancel(code model.RoomCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, code)
}

// get returns the live timer for a room, or nil
func (f *fakeTimers) get(code model.RoomCode) *armedTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[code]
}

// expire fires the live countdown's expiry as the scheduler would
func (f *fakeTimers) expire(code model.RoomCode) {
	f.mu.Lock()
	t := f.live[code]
	delete(f.live, code)
	f.mu.Unlock()
	if t != nil && t.onExpire != nil {
		t.onExpire(t.ticket)
	}
}

// fire runs the live one-shot delay
func (f *fakeTimers) fire(code model.RoomCode) {
	f.mu.Lock()
	t := f.live[code]
	delete(f.live, code)
	f.mu.Unlock()
	if t != nil && t.onFire != nil {
		t.onFire(t.ticket)
	}
}
