package model

import (
	"strings"
	"time"
)

// MaxNameLength is the longest display name kept, in runes
const MaxNameLength = 24

// DefaultPlayerName replaces a blank display name
const DefaultPlayerName = "Player"

// PlayerID uniquely identifies a connected participant
type PlayerID string

// Player is a participant's state inside a room
type Player struct {
	ID     PlayerID
	Name   string
	Secret *int // nil until chosen for the current round
	Safe   bool
	Losses int

	// InRound is true for members of the current round's turn order
	InRound bool

	JoinedAt time.Time
}

// HasSecret returns true if the player has chosen a secret this round
func (p *Player) HasSecret() bool {
	return p.Secret != nil
}

// SecretIs returns true if the player's secret is set and equal to n
func (p *Player) SecretIs(n int) bool {
	return p.Secret != nil && *p.Secret == n
}

// ResetRound clears per-round state, keeping the loss count
func (p *Player) ResetRound() {
	p.Secret = nil
	p.Safe = false
	p.InRound = false
}

// NormalizeName trims a display name and bounds its length
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	return name
}
