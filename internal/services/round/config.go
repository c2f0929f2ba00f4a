package round

import (
	"fmt"
	"time"
)

// DuplicateSecretPolicy decides when two players may not share a secret
type DuplicateSecretPolicy string

const (
	// DuplicateTwoPlayers rejects a taken secret only in a two-player room
	DuplicateTwoPlayers DuplicateSecretPolicy = "two-players"
	// DuplicateAlways rejects any secret another player already holds
	DuplicateAlways DuplicateSecretPolicy = "always"
	// DuplicateNever allows shared secrets
	DuplicateNever DuplicateSecretPolicy = "never"
)

// ParseDuplicateSecretPolicy validates a policy name
func ParseDuplicateSecretPolicy(s string) (DuplicateSecretPolicy, error) {
	switch p := DuplicateSecretPolicy(s); p {
	case DuplicateTwoPlayers, DuplicateAlways, DuplicateNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate secret policy %q", s)
	}
}

// Config holds round rules and timings
type Config struct {
	// TurnSeconds is the countdown length for each turn
	TurnSeconds int

	// TimeoutPenalty adds a loss to a player whose turn times out
	TimeoutPenalty bool

	DuplicateSecrets DuplicateSecretPolicy

	// Delays before a finished round resets, by outcome
	SingleLoserDelay time.Duration
	DeadlockDelay    time.Duration
	DrawDelay        time.Duration

	// Bounds for the host-chosen secret range
	MinRange int
	MaxRange int
}

// DefaultConfig returns the standard rules
func DefaultConfig() Config {
	return Config{
		TurnSeconds:      15,
		TimeoutPenalty:   false,
		DuplicateSecrets: DuplicateTwoPlayers,
		SingleLoserDelay: 3 * time.Second,
		DeadlockDelay:    4 * time.Second,
		DrawDelay:        3 * time.Second,
		MinRange:         2,
		MaxRange:         100,
	}
}
