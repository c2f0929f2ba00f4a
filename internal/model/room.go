package model

import (
	"sync"
	"time"
)

// RoomCode is the short human-presentable identifier used to join a room
type RoomCode string

// Phase is the current step of a room's round state machine
type Phase string

const (
	PhaseLobby           Phase = "lobby"            // Waiting for the host to pick a range
	PhaseSecretSelection Phase = "secret_selection" // Players choosing secrets
	PhaseActive          Phase = "active"           // Turns in progress
	PhaseRoundOver       Phase = "round_over"       // Result shown, reset pending
)

// TimerTicket identifies one armed timer; zero means no timer
type TimerTicket uint64

// Room is the central aggregate for one game instance.
// All fields are guarded by the room's mutex.
type Room struct {
	mu     sync.Mutex
	closed bool

	Code    RoomCode
	HostID  PlayerID
	Players []*Player // join order
	Range   int
	Phase   Phase
	Round   int

	// Turn cursor. TurnOrder is fixed when a round starts.
	TurnOrder []PlayerID
	TurnIndex int

	Timer TimerTicket

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates a room in the lobby phase with the host as sole member
func NewRoom(code RoomCode, host *Player, rng int, now time.Time) *Room {
	return &Room{
		Code:      code,
		HostID:    host.ID,
		Players:   []*Player{host},
		Range:     rng,
		Phase:     PhaseLobby,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Lock acquires exclusive access to the room
func (r *Room) Lock() {
	r.mu.Lock()
}

// Unlock releases exclusive access to the room
func (r *Room) Unlock() {
	r.mu.Unlock()
}

// Close marks the room as torn down. Caller must hold the lock.
func (r *Room) Close() {
	r.closed = true
}

// Closed reports whether the room has been torn down. Caller must hold the lock.
func (r *Room) Closed() bool {
	return r.closed
}

// GetPlayer returns the player with the given ID, or nil if not in the room
func (r *Room) GetPlayer(id PlayerID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IsHost returns true if id is the room's host
func (r *Room) IsHost(id PlayerID) bool {
	return r.HostID == id
}

// AddPlayer appends a player to the roster
func (r *Room) AddPlayer(p *Player) {
	r.Players = append(r.Players, p)
}

// RemovePlayer removes the player from the roster, returning it (nil if absent)
func (r *Room) RemovePlayer(id PlayerID) *Player {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return p
		}
	}
	return nil
}

// IsEmpty returns true if no players remain
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// AllSecretsSelected returns true if every player has chosen a secret
func (r *Room) AllSecretsSelected() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.HasSecret() {
			return false
		}
	}
	return true
}

// RoundPlayers returns the present players taking part in the current round,
// in turn order
func (r *Room) RoundPlayers() []*Player {
	players := make([]*Player, 0, len(r.TurnOrder))
	for _, id := range r.TurnOrder {
		if p := r.GetPlayer(id); p != nil && p.InRound {
			players = append(players, p)
		}
	}
	return players
}

// CurrentTurn returns the player ID at the cursor, or "" outside a round
func (r *Room) CurrentTurn() PlayerID {
	if len(r.TurnOrder) == 0 || r.TurnIndex < 0 || r.TurnIndex >= len(r.TurnOrder) {
		return ""
	}
	return r.TurnOrder[r.TurnIndex]
}

// unresolved reports whether id can still take a turn this round
func (r *Room) unresolved(id PlayerID) bool {
	p := r.GetPlayer(id)
	return p != nil && p.InRound && !p.Safe
}

// BeginRound fixes the turn order from the current roster and resets the cursor
func (r *Room) BeginRound() {
	r.TurnOrder = make([]PlayerID, len(r.Players))
	for i, p := range r.Players {
		r.TurnOrder[i] = p.ID
		p.InRound = true
		p.Safe = false
	}
	r.TurnIndex = 0
	r.Round++
}

// AdvanceTurn moves the cursor to the next unresolved player, probing at most
// len(TurnOrder) positions. ok is false if every player is resolved, which
// callers must rule out beforehand by classifying the round.
func (r *Room) AdvanceTurn() (next PlayerID, ok bool) {
	n := len(r.TurnOrder)
	if n == 0 {
		return "", false
	}
	for range n {
		r.TurnIndex = (r.TurnIndex + 1) % n
		if id := r.TurnOrder[r.TurnIndex]; r.unresolved(id) {
			return id, true
		}
	}
	return "", false
}

// ResetRound returns the room to secret selection, keeping loss counts
func (r *Room) ResetRound() {
	for _, p := range r.Players {
		p.ResetRound()
	}
	r.TurnOrder = nil
	r.TurnIndex = 0
	r.Timer = 0
	r.Phase = PhaseSecretSelection
}
