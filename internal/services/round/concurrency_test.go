package round

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/cutgame/internal/dependencies/clock"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
	"github.com/mcoot/cutgame/internal/rooms"
	"github.com/mcoot/cutgame/internal/services/scheduler"
	"github.com/mcoot/cutgame/internal/storage/memory"
	"github.com/mcoot/cutgame/internal/testutil"
)

// turnLog records turn handovers and timeouts from concurrent goroutines
type turnLog struct {
	notify.Discard

	mu       sync.Mutex
	turns    []model.PlayerID
	timeouts int
}

func (l *turnLog) Broadcast(_ model.RoomCode, n model.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch p := n.Payload.(type) {
	case model.TurnChangedPayload:
		l.turns = append(l.turns, p.PlayerID)
	case model.MessagePayload:
		l.timeouts++
	}
}

func (l *turnLog) snapshot() ([]model.PlayerID, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.PlayerID(nil), l.turns...), l.timeouts
}

func TestCutsRacingExpiriesAdvanceOncePerEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("runs real timers")
	}

	ctx := context.Background()
	table := rooms.NewTable()
	sched := scheduler.New(clock.New(), testutil.NopLogger(), scheduler.Config{TickInterval: time.Millisecond})
	handovers := &turnLog{}

	cfg := DefaultConfig()
	cfg.TurnSeconds = 1
	controller := NewController(table, sched, handovers, memory.New(), clock.New(), testutil.NopLogger(), cfg)

	order := []model.PlayerID{"A", "B", "C"}
	now := time.Now()
	room := model.NewRoom(code, &model.Player{ID: order[0], Name: "A", JoinedAt: now}, 20, now)
	for _, id := range order[1:] {
		room.AddPlayer(&model.Player{ID: id, Name: string(id), JoinedAt: now})
	}
	require.True(t, table.Insert(room))

	require.NoError(t, controller.SetRange(ctx, code, "A", 20))
	for i, id := range order {
		require.NoError(t, controller.SelectSecret(ctx, code, id, i+1))
	}
	require.NoError(t, controller.StartGame(ctx, code, "A"))

	// 19 matches no secret, so every accepted cut only passes the turn
	var cuts, unexpected atomic.Int64
	deadline := time.Now().Add(300 * time.Millisecond)
	var wg sync.WaitGroup
	for _, id := range order {
		wg.Add(1)
		go func(id model.PlayerID) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				err := controller.CutNumber(ctx, code, id, 19)
				switch {
				case err == nil:
					cuts.Add(1)
				case !errors.Is(err, model.ErrNotYourTurn):
					unexpected.Add(1)
				}
			}
		}(id)
	}
	wg.Wait()

	assert.Zero(t, unexpected.Load())
	assert.Positive(t, cuts.Load())

	// An expiry may be between releasing its slot and taking the room lock
	assert.Eventually(t, func() bool {
		room.Lock()
		defer room.Unlock()
		return room.Phase == model.PhaseActive &&
			sched.IsCurrent(code, room.Timer) &&
			sched.Active() == 1
	}, time.Second, time.Millisecond)

	sched.Stop()

	turns, timeouts := handovers.snapshot()
	assert.Positive(t, timeouts)
	assert.Equal(t, int(cuts.Load())+timeouts, len(turns))

	// Nobody is ever safe, so the turn cycles through the order without skips
	prev := 0
	for i, id := range turns {
		want := order[(prev+1)%len(order)]
		if !assert.Equal(t, want, id, "handover %d", i) {
			break
		}
		prev = (prev + 1) % len(order)
	}
}
