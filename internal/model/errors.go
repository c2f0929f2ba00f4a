package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotInRoom           = errors.New("player is not in room")
	ErrNoRoomCodeAvailable = errors.New("no room code available")

	// Round errors
	ErrNotHost          = errors.New("player is not the host")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrInvalidPhase     = errors.New("action not valid in current phase")
	ErrDuplicateSecret  = errors.New("secret already taken by the other player")
	ErrNumberOutOfRange = errors.New("number is outside the room's range")
	ErrInvalidRange     = errors.New("invalid range")

	// Transport errors
	ErrRateLimited = errors.New("too many actions")
)
