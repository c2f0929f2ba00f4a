package model

import "time"

// Outcome classifies the state of a round after a cut
type Outcome string

const (
	OutcomeContinue    Outcome = "continue"     // More than one distinguishable unsafe player
	OutcomeSingleLoser Outcome = "single_loser" // Exactly one unsafe player remains
	OutcomeDeadlock    Outcome = "deadlock"     // All unsafe players share one secret
	OutcomeDraw        Outcome = "draw"         // Everybody is safe
	OutcomeAbandoned   Outcome = "abandoned"    // A departure ended the round; nobody loses
)

// IsTerminal returns true if the outcome ends the round
func (o Outcome) IsTerminal() bool {
	return o != OutcomeContinue
}

// RoundSummary is a lightweight record of a finished round
type RoundSummary struct {
	RoomCode    RoomCode         `json:"room_code"`
	Round       int              `json:"round"`
	Outcome     Outcome          `json:"outcome"`
	Losers      []PlayerID       `json:"losers"`
	LoserNames  []string         `json:"loser_names"`
	Scores      map[PlayerID]int `json:"scores"`
	CompletedAt time.Time        `json:"completed_at"`
}
