package model

import "time"

// PlayerView is the public projection of a player; secrets are never exposed
type PlayerView struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Safe    bool     `json:"safe"`
	Score   int      `json:"score"`
	Ready   bool     `json:"ready"`
	Host    bool     `json:"host"`
	InRound bool     `json:"in_round"`
}

// RoomSnapshot is a point-in-time copy of a room's public state
type RoomSnapshot struct {
	Code        RoomCode
	HostID      PlayerID
	Phase       Phase
	Range       int
	Round       int
	CurrentTurn PlayerID
	Players     []PlayerView
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Roster returns the public view of all players in join order
func (r *Room) Roster() []PlayerView {
	views := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		views[i] = PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			Safe:    p.Safe,
			Score:   p.Losses,
			Ready:   p.HasSecret(),
			Host:    p.ID == r.HostID,
			InRound: p.InRound,
		}
	}
	return views
}

// Snapshot copies the room's public state. Caller must hold the lock.
func (r *Room) Snapshot() RoomSnapshot {
	var current PlayerID
	if r.Phase == PhaseActive {
		current = r.CurrentTurn()
	}
	return RoomSnapshot{
		Code:        r.Code,
		HostID:      r.HostID,
		Phase:       r.Phase,
		Range:       r.Range,
		Round:       r.Round,
		CurrentTurn: current,
		Players:     r.Roster(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RoomInfo is the lightweight listing entry for a live room
type RoomInfo struct {
	Code    RoomCode
	Phase   Phase
	Players int
}
