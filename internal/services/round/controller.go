// Package round runs a room's round state machine: ranges, secrets, turns,
// cuts and the timed reset between rounds.
package round

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/dependencies/clock"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
	"github.com/mcoot/cutgame/internal/rooms"
	"github.com/mcoot/cutgame/internal/services/elimination"
	"github.com/mcoot/cutgame/internal/services/scheduler"
	"github.com/mcoot/cutgame/internal/storage"
)

// historyTimeout bounds a single round summary write
const historyTimeout = 5 * time.Second

// Timers is the per-room timer facility the controller drives
type Timers interface {
	StartCountdown(code model.RoomCode, seconds int, onTick scheduler.TickFunc, onExpire scheduler.FireFunc) model.TimerTicket
	After(code model.RoomCode, delay time.Duration, fn scheduler.FireFunc) model.TimerTicket
	Cancel(code model.RoomCode)
}

// Controller manages the round state machine and turn flow of every room
type Controller struct {
	table    *rooms.Table
	timers   Timers
	notifier notify.Notifier
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	config   Config

	// Pending history writes
	history sync.WaitGroup
}

// NewController creates a new round Controller
func NewController(
	table *rooms.Table,
	timers Timers,
	notifier notify.Notifier,
	storage storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
	config Config,
) *Controller {
	return &Controller{
		table:    table,
		timers:   timers,
		notifier: notifier,
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "round")),
		config:   config,
	}
}

// Config returns the rules the controller plays by
func (c *Controller) Config() Config {
	return c.config
}

// withRoom runs fn holding the room's lock. Rooms torn down while the caller
// waited for the lock are reported as not found.
func (c *Controller) withRoom(code model.RoomCode, fn func(room *model.Room) error) error {
	room, ok := c.table.Get(code)
	if !ok {
		return model.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return model.ErrRoomNotFound
	}
	return fn(room)
}

// SetRange handles the host choosing the secret range, opening secret selection
func (c *Controller) SetRange(ctx context.Context, code model.RoomCode, sender model.PlayerID, rng int) error {
	return c.withRoom(code, func(room *model.Room) error {
		if room.GetPlayer(sender) == nil {
			return model.ErrNotInRoom
		}
		if !room.IsHost(sender) {
			return model.ErrNotHost
		}
		if room.Phase != model.PhaseLobby {
			return model.ErrInvalidPhase
		}
		if rng < c.config.MinRange || rng > c.config.MaxRange {
			return model.ErrInvalidRange
		}

		room.Range = rng
		room.Phase = model.PhaseSecretSelection
		room.UpdatedAt = c.clock.Now()

		c.logger.Info("range set",
			slog.String("room_code", string(code)),
			slog.Int("range", rng),
		)

		c.notifier.Broadcast(code, model.NewNotification(code, model.RangeSetPayload{Range: rng}))
		return nil
	})
}

// SelectSecret records a player's secret number for the coming round
func (c *Controller) SelectSecret(ctx context.Context, code model.RoomCode, sender model.PlayerID, n int) error {
	return c.withRoom(code, func(room *model.Room) error {
		player := room.GetPlayer(sender)
		if player == nil {
			return model.ErrNotInRoom
		}
		if room.Phase != model.PhaseSecretSelection {
			return model.ErrInvalidPhase
		}
		if n < 1 || n > room.Range {
			return model.ErrNumberOutOfRange
		}
		if c.secretTaken(room, sender, n) {
			return model.ErrDuplicateSecret
		}

		player.Secret = &n
		room.UpdatedAt = c.clock.Now()

		c.logger.Debug("secret selected",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(sender)),
		)

		c.broadcastRoster(room)
		c.notifyIfAllReady(room)
		return nil
	})
}

// secretTaken applies the duplicate secret policy
func (c *Controller) secretTaken(room *model.Room, sender model.PlayerID, n int) bool {
	switch c.config.DuplicateSecrets {
	case DuplicateNever:
		return false
	case DuplicateTwoPlayers:
		if len(room.Players) != 2 {
			return false
		}
	}
	for _, p := range room.Players {
		if p.ID != sender && p.SecretIs(n) {
			return true
		}
	}
	return false
}

func (c *Controller) notifyIfAllReady(room *model.Room) {
	if room.AllSecretsSelected() {
		c.notifier.Send(room.HostID, model.NewNotification(room.Code, model.AllSecretsReadyPayload{}))
	}
}

// StartGame fixes the turn order and starts the first turn's countdown.
// Players without a secret may still be started; they can never be saved.
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, sender model.PlayerID) error {
	return c.withRoom(code, func(room *model.Room) error {
		if room.GetPlayer(sender) == nil {
			return model.ErrNotInRoom
		}
		if !room.IsHost(sender) {
			return model.ErrNotHost
		}
		if room.Phase != model.PhaseSecretSelection {
			return model.ErrInvalidPhase
		}

		room.BeginRound()
		room.Phase = model.PhaseActive
		room.UpdatedAt = c.clock.Now()

		first := room.GetPlayer(room.CurrentTurn())

		c.logger.Info("round started",
			slog.String("room_code", string(code)),
			slog.Int("round", room.Round),
			slog.Int("player_count", len(room.TurnOrder)),
		)

		c.notifier.Broadcast(code, model.NewNotification(code, model.GameStartedPayload{
			Range:           room.Range,
			Round:           room.Round,
			FirstPlayerID:   first.ID,
			FirstPlayerName: first.Name,
		}))
		c.broadcastRoster(room)
		c.armCountdown(room)
		return nil
	})
}

// CutNumber handles the current player naming a number
func (c *Controller) CutNumber(ctx context.Context, code model.RoomCode, sender model.PlayerID, n int) error {
	return c.withRoom(code, func(room *model.Room) error {
		if room.GetPlayer(sender) == nil {
			return model.ErrNotInRoom
		}
		if room.Phase != model.PhaseActive {
			return model.ErrInvalidPhase
		}
		if room.CurrentTurn() != sender {
			return model.ErrNotYourTurn
		}
		if n < 1 || n > room.Range {
			return model.ErrNumberOutOfRange
		}

		c.timers.Cancel(code)
		room.Timer = 0

		result := elimination.Evaluate(elimination.FromPlayers(room.RoundPlayers()), n)
		for _, saved := range result.Saved {
			room.GetPlayer(saved.ID).Safe = true
		}
		room.UpdatedAt = c.clock.Now()

		c.logger.Info("number cut",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(sender)),
			slog.Int("number", n),
			slog.Int("saved", len(result.Saved)),
			slog.String("outcome", string(result.Outcome)),
		)

		c.notifier.Broadcast(code, model.NewNotification(code, model.CutResultPayload{
			Number: n,
			Saved:  result.SavedNames(),
		}))

		if result.Outcome.IsTerminal() {
			c.endRound(room, result)
			return nil
		}

		c.broadcastRoster(room)
		c.advance(room)
		return nil
	})
}

// HandleDeparture reacts to a player having just been removed from the room.
// heldTurn is whether they held the turn at the time. Caller must hold the lock.
func (c *Controller) HandleDeparture(room *model.Room, departed model.PlayerID, heldTurn bool) {
	switch room.Phase {
	case model.PhaseActive:
		result := elimination.Classify(elimination.FromPlayers(room.RoundPlayers()))
		if result.Outcome.IsTerminal() {
			// A departure never charges the players who stayed
			if result.Outcome != model.OutcomeDraw {
				result = elimination.Result{Unsafe: result.Unsafe, Outcome: model.OutcomeAbandoned}
			}
			c.logger.Info("departure ended round",
				slog.String("room_code", string(room.Code)),
				slog.String("player_id", string(departed)),
				slog.String("outcome", string(result.Outcome)),
			)
			c.endRound(room, result)
			return
		}
		if heldTurn {
			c.timers.Cancel(room.Code)
			room.Timer = 0
			c.advance(room)
		}
	case model.PhaseSecretSelection:
		c.notifyIfAllReady(room)
	}
}

// Teardown stops a room's timer and marks it closed. Caller must hold the lock.
func (c *Controller) Teardown(room *model.Room) {
	c.timers.Cancel(room.Code)
	room.Timer = 0
	room.Close()
}

// WaitForHistory blocks until pending round summaries are written
func (c *Controller) WaitForHistory() {
	c.history.Wait()
}

// advance hands the turn to the next unresolved player
func (c *Controller) advance(room *model.Room) {
	next, ok := room.AdvanceTurn()
	if !ok {
		c.logger.Error("no unresolved player to advance to",
			slog.String("room_code", string(room.Code)),
		)
		c.endRound(room, elimination.Classify(elimination.FromPlayers(room.RoundPlayers())))
		return
	}

	player := room.GetPlayer(next)
	c.notifier.Broadcast(room.Code, model.NewNotification(room.Code, model.TurnChangedPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	}))
	c.armCountdown(room)
}

func (c *Controller) armCountdown(room *model.Room) {
	code := room.Code
	room.Timer = c.timers.StartCountdown(code, c.config.TurnSeconds,
		func(ticket model.TimerTicket, remaining int) {
			c.onTick(code, ticket, remaining)
		},
		func(ticket model.TimerTicket) {
			c.onExpire(code, ticket)
		},
	)
}

func (c *Controller) onTick(code model.RoomCode, ticket model.TimerTicket, remaining int) {
	_ = c.withRoom(code, func(room *model.Room) error {
		if room.Timer != ticket {
			return nil
		}
		c.notifier.Broadcast(code, model.NewNotification(code, model.CountdownPayload{Seconds: remaining}))
		return nil
	})
}

func (c *Controller) onExpire(code model.RoomCode, ticket model.TimerTicket) {
	_ = c.withRoom(code, func(room *model.Room) error {
		if room.Timer != ticket || room.Phase != model.PhaseActive {
			return nil
		}
		room.Timer = 0

		player := room.GetPlayer(room.CurrentTurn())
		if player == nil {
			c.advance(room)
			return nil
		}

		c.logger.Info("turn timed out",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(player.ID)),
		)

		text := fmt.Sprintf("%s ran out of time", player.Name)
		if c.config.TimeoutPenalty {
			player.Losses++
			text = fmt.Sprintf("%s ran out of time and takes a point", player.Name)
		}
		room.UpdatedAt = c.clock.Now()

		c.notifier.Broadcast(code, model.NewNotification(code, model.MessagePayload{Text: text}))
		if c.config.TimeoutPenalty {
			c.broadcastRoster(room)
		}
		c.advance(room)
		return nil
	})
}

// endRound applies losses, announces the result and schedules the reset
func (c *Controller) endRound(room *model.Room, result elimination.Result) {
	c.timers.Cancel(room.Code)
	room.Timer = 0

	losers := result.Losers()
	loserIDs := make([]model.PlayerID, 0, len(losers))
	loserNames := make([]string, 0, len(losers))
	for _, l := range losers {
		if p := room.GetPlayer(l.ID); p != nil {
			p.Losses++
		}
		loserIDs = append(loserIDs, l.ID)
		loserNames = append(loserNames, l.Name)
	}

	now := c.clock.Now()
	room.Phase = model.PhaseRoundOver
	room.UpdatedAt = now

	c.logger.Info("round over",
		slog.String("room_code", string(room.Code)),
		slog.Int("round", room.Round),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("loser_count", len(losers)),
	)

	c.broadcastRoster(room)
	c.notifier.Broadcast(room.Code, model.NewNotification(room.Code, model.RoundOverPayload{
		Outcome: result.Outcome,
		Message: outcomeMessage(result.Outcome, loserNames),
		Losers:  loserNames,
	}))

	scores := make(map[model.PlayerID]int, len(room.Players))
	for _, p := range room.Players {
		scores[p.ID] = p.Losses
	}
	c.recordRound(&model.RoundSummary{
		RoomCode:    room.Code,
		Round:       room.Round,
		Outcome:     result.Outcome,
		Losers:      loserIDs,
		LoserNames:  loserNames,
		Scores:      scores,
		CompletedAt: now,
	})

	code := room.Code
	room.Timer = c.timers.After(code, c.resetDelay(result.Outcome), func(ticket model.TimerTicket) {
		c.onReset(code, ticket)
	})
}

func (c *Controller) resetDelay(outcome model.Outcome) time.Duration {
	switch outcome {
	case model.OutcomeDeadlock:
		return c.config.DeadlockDelay
	case model.OutcomeDraw:
		return c.config.DrawDelay
	default:
		return c.config.SingleLoserDelay
	}
}

func outcomeMessage(outcome model.Outcome, losers []string) string {
	switch outcome {
	case model.OutcomeSingleLoser:
		if len(losers) == 0 {
			return ""
		}
		return fmt.Sprintf("%s loses the round", losers[0])
	case model.OutcomeDeadlock:
		return fmt.Sprintf("Deadlock! %s all lose the round", strings.Join(losers, ", "))
	case model.OutcomeDraw:
		return "Everyone is safe. No one loses this round"
	case model.OutcomeAbandoned:
		return "A player left. No one loses this round"
	default:
		return ""
	}
}

func (c *Controller) onReset(code model.RoomCode, ticket model.TimerTicket) {
	_ = c.withRoom(code, func(room *model.Room) error {
		if room.Timer != ticket || room.Phase != model.PhaseRoundOver {
			return nil
		}

		room.ResetRound()
		room.UpdatedAt = c.clock.Now()

		c.logger.Debug("round reset",
			slog.String("room_code", string(code)),
		)

		c.notifier.Broadcast(code, model.NewNotification(code, model.NewRoundPayload{
			Range: room.Range,
			Round: room.Round + 1,
		}))
		c.broadcastRoster(room)
		return nil
	})
}

// recordRound writes the summary without holding up the room
func (c *Controller) recordRound(summary *model.RoundSummary) {
	c.history.Add(1)
	go func() {
		defer c.history.Done()

		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()

		if err := c.storage.SaveRoundSummary(ctx, summary); err != nil {
			c.logger.Error("failed to save round summary",
				slog.String("room_code", string(summary.RoomCode)),
				slog.Int("round", summary.Round),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (c *Controller) broadcastRoster(room *model.Room) {
	c.notifier.Broadcast(room.Code, model.NewNotification(room.Code, model.RosterPayload{Players: room.Roster()}))
}
