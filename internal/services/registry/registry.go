// Package registry creates, joins and tears down rooms
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/cutgame/internal/dependencies/clock"
	"github.com/mcoot/cutgame/internal/dependencies/random"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
	"github.com/mcoot/cutgame/internal/rooms"
	"github.com/mcoot/cutgame/internal/services/round"
	"github.com/mcoot/cutgame/internal/storage"
)

const (
	// MinRoomCode and MaxRoomCode bound generated 4-digit room codes
	MinRoomCode = 1000
	MaxRoomCode = 9999

	// MaxCodeAttempts is how many random codes are tried before giving up
	MaxCodeAttempts = 100

	cleanupTimeout = 5 * time.Second
)

// Config holds registry settings
type Config struct {
	// DefaultRange is the secret range of a new room
	DefaultRange int
}

// DefaultConfig returns the standard registry settings
func DefaultConfig() Config {
	return Config{DefaultRange: 20}
}

// Registry owns the set of live rooms and participant membership
type Registry struct {
	table    *rooms.Table
	rounds   *round.Controller
	notifier notify.Notifier
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	config   Config
}

// New creates a new Registry
func New(
	table *rooms.Table,
	rounds *round.Controller,
	notifier notify.Notifier,
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	config Config,
) *Registry {
	return &Registry{
		table:    table,
		rounds:   rounds,
		notifier: notifier,
		storage:  storage,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "registry")),
		config:   config,
	}
}

// CreateRoom creates a room with the participant as host and sole member.
// A participant already in another room leaves it first.
func (r *Registry) CreateRoom(ctx context.Context, hostID model.PlayerID, hostName string) (model.RoomCode, error) {
	if err := r.leaveCurrent(ctx, hostID); err != nil {
		return "", err
	}

	code, err := r.reserveCode(ctx)
	if err != nil {
		return "", err
	}

	now := r.clock.Now()
	host := &model.Player{
		ID:       hostID,
		Name:     model.NormalizeName(hostName),
		JoinedAt: now,
	}
	room := model.NewRoom(code, host, r.config.DefaultRange, now)

	room.Lock()
	defer room.Unlock()

	if !r.table.Insert(room) {
		// Reserved codes are never live, so storage and table disagree
		_ = r.storage.ReleaseRoomCode(ctx, code)
		return "", fmt.Errorf("room code %s already live", code)
	}
	r.table.Assign(hostID, code)
	r.notifier.Subscribe(code, hostID)

	r.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(hostID)),
	)

	r.notifier.Send(hostID, model.NewNotification(code, model.RoomCreatedPayload{RoomCode: code}))
	r.notifier.Send(hostID, model.NewNotification(code, model.RoomJoinedPayload{RoomCode: code, IsHost: true}))
	r.broadcastRoster(room)

	return code, nil
}

// reserveCode picks a random 4-digit code that is neither live nor reserved
func (r *Registry) reserveCode(ctx context.Context) (model.RoomCode, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code := model.RoomCode(fmt.Sprintf("%04d", MinRoomCode+r.random.Intn(MaxRoomCode-MinRoomCode+1)))
		if r.table.Has(code) {
			continue
		}
		ok, err := r.storage.ReserveRoomCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("reserve room code: %w", err)
		}
		if ok {
			return code, nil
		}
	}

	r.logger.Warn("room code space exhausted",
		slog.Int("attempts", MaxCodeAttempts),
		slog.Int("live_rooms", r.table.Len()),
	)
	return "", model.ErrNoRoomCodeAvailable
}

// JoinRoom adds a participant to an existing room. Joining a room the
// participant is already in only re-sends the confirmation.
func (r *Registry) JoinRoom(ctx context.Context, code model.RoomCode, participantID model.PlayerID, name string) error {
	if !r.table.Has(code) {
		return model.ErrRoomNotFound
	}

	if current, ok := r.table.RoomOf(participantID); ok && current != code {
		if err := r.leaveCurrent(ctx, participantID); err != nil {
			return err
		}
	}

	room, ok := r.table.Get(code)
	if !ok {
		return model.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return model.ErrRoomNotFound
	}

	if room.GetPlayer(participantID) != nil {
		r.notifier.Send(participantID, model.NewNotification(code, model.RoomJoinedPayload{
			RoomCode: code,
			IsHost:   room.IsHost(participantID),
		}))
		return nil
	}

	now := r.clock.Now()
	room.AddPlayer(&model.Player{
		ID:       participantID,
		Name:     model.NormalizeName(name),
		JoinedAt: now,
	})
	room.UpdatedAt = now
	r.table.Assign(participantID, code)
	r.notifier.Subscribe(code, participantID)

	r.logger.Info("player joined room",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(participantID)),
		slog.String("phase", string(room.Phase)),
	)

	r.notifier.Send(participantID, model.NewNotification(code, model.RoomJoinedPayload{RoomCode: code, IsHost: false}))
	r.broadcastRoster(room)
	return nil
}

// RemoveParticipant takes a participant out of their room, promoting a new
// host or tearing the room down as needed
func (r *Registry) RemoveParticipant(ctx context.Context, participantID model.PlayerID) error {
	code, ok := r.table.RoomOf(participantID)
	if !ok {
		return model.ErrNotInRoom
	}

	room, ok := r.table.Get(code)
	if !ok {
		r.table.Unassign(participantID, code)
		return model.ErrNotInRoom
	}

	emptied, err := r.removeFromRoom(room, participantID)
	if err != nil {
		return err
	}

	if emptied {
		r.releaseRoom(ctx, code)
	}
	return nil
}

// removeFromRoom does the locked part of a removal. Returns true if the room
// was torn down.
func (r *Registry) removeFromRoom(room *model.Room, participantID model.PlayerID) (bool, error) {
	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return false, model.ErrNotInRoom
	}

	heldTurn := room.Phase == model.PhaseActive && room.CurrentTurn() == participantID
	wasHost := room.IsHost(participantID)

	if room.RemovePlayer(participantID) == nil {
		return false, model.ErrNotInRoom
	}
	code := room.Code
	room.UpdatedAt = r.clock.Now()
	r.table.Unassign(participantID, code)
	r.notifier.Unsubscribe(code, participantID)

	r.logger.Info("player left room",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(participantID)),
		slog.String("phase", string(room.Phase)),
	)

	if room.IsEmpty() {
		r.rounds.Teardown(room)
		r.table.Delete(code)
		r.notifier.CloseGroup(code)
		r.logger.Info("room closed",
			slog.String("room_code", string(code)),
		)
		return true, nil
	}

	if wasHost {
		// Players are kept in join order
		newHost := room.Players[0]
		room.HostID = newHost.ID
		r.logger.Info("host reassigned",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(newHost.ID)),
		)
		r.notifier.Send(newHost.ID, model.NewNotification(code, model.HostAssignedPayload{RoomCode: code}))
	}

	r.broadcastRoster(room)
	r.rounds.HandleDeparture(room, participantID, heldTurn)
	return false, nil
}

// releaseRoom drops the durable traces of a torn-down room
func (r *Registry) releaseRoom(ctx context.Context, code model.RoomCode) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := r.storage.ReleaseRoomCode(ctx, code); err != nil {
		r.logger.Error("failed to release room code",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
	}
	if err := r.storage.DeleteRoundSummaries(ctx, code); err != nil {
		r.logger.Error("failed to delete round history",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
	}
}

// leaveCurrent removes the participant from whatever room they are in
func (r *Registry) leaveCurrent(ctx context.Context, participantID model.PlayerID) error {
	if err := r.RemoveParticipant(ctx, participantID); err != nil && !errors.Is(err, model.ErrNotInRoom) {
		return err
	}
	return nil
}

// RoomOf returns the code of the participant's room
func (r *Registry) RoomOf(participantID model.PlayerID) (model.RoomCode, bool) {
	return r.table.RoomOf(participantID)
}

// Snapshot returns the public state of a live room
func (r *Registry) Snapshot(code model.RoomCode) (model.RoomSnapshot, error) {
	room, ok := r.table.Get(code)
	if !ok {
		return model.RoomSnapshot{}, model.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return model.RoomSnapshot{}, model.ErrRoomNotFound
	}
	return room.Snapshot(), nil
}

// ListRooms returns a summary of every live room, ordered by code
func (r *Registry) ListRooms() []model.RoomInfo {
	list := r.table.List()
	infos := make([]model.RoomInfo, 0, len(list))
	for _, room := range list {
		room.Lock()
		if !room.Closed() {
			infos = append(infos, model.RoomInfo{
				Code:    room.Code,
				Phase:   room.Phase,
				Players: len(room.Players),
			})
		}
		room.Unlock()
	}
	return infos
}

// History returns the finished rounds of a live room, oldest first
func (r *Registry) History(ctx context.Context, code model.RoomCode) ([]model.RoundSummary, error) {
	if !r.table.Has(code) {
		return nil, model.ErrRoomNotFound
	}
	return r.storage.GetRoundSummaries(ctx, code)
}

func (r *Registry) broadcastRoster(room *model.Room) {
	r.notifier.Broadcast(room.Code, model.NewNotification(room.Code, model.RosterPayload{Players: room.Roster()}))
}
