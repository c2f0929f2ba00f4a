// Package elimination decides which players a cut saves and whether the round is over.
package elimination

import "github.com/mcoot/cutgame/internal/model"

// Contender is the part of a player the rules look at
type Contender struct {
	ID     model.PlayerID
	Name   string
	Secret *int
	Safe   bool
}

// Result is the outcome of evaluating a cut
type Result struct {
	// Saved lists the contenders made safe by this cut, in input order
	Saved []Contender

	// Unsafe lists the contenders still unsafe after the cut
	Unsafe []Contender

	Outcome model.Outcome
}

// Losers returns the contenders who lose a point under this result
func (r Result) Losers() []Contender {
	switch r.Outcome {
	case model.OutcomeSingleLoser, model.OutcomeDeadlock:
		return r.Unsafe
	default:
		return nil
	}
}

// SavedNames returns the names of the contenders saved by the cut
func (r Result) SavedNames() []string {
	names := make([]string, len(r.Saved))
	for i, c := range r.Saved {
		names[i] = c.Name
	}
	return names
}

// FromPlayers snapshots players into contenders
func FromPlayers(players []*model.Player) []Contender {
	contenders := make([]Contender, len(players))
	for i, p := range players {
		contenders[i] = Contender{ID: p.ID, Name: p.Name, Secret: p.Secret, Safe: p.Safe}
	}
	return contenders
}

// Evaluate applies a cut of number to the contenders. The input is not modified.
func Evaluate(contenders []Contender, number int) Result {
	after := make([]Contender, len(contenders))
	var saved []Contender
	for i, c := range contenders {
		if !c.Safe && matches(c.Secret, number) {
			c.Safe = true
			saved = append(saved, c)
		}
		after[i] = c
	}

	result := Classify(after)
	result.Saved = saved
	return result
}

// Classify partitions contenders and decides the round's outcome without a cut
func Classify(contenders []Contender) Result {
	var unsafe []Contender
	for _, c := range contenders {
		if !c.Safe {
			unsafe = append(unsafe, c)
		}
	}

	var outcome model.Outcome
	switch {
	case len(unsafe) == 0:
		outcome = model.OutcomeDraw
	case len(unsafe) == 1:
		outcome = model.OutcomeSingleLoser
	case sharedSecret(unsafe):
		outcome = model.OutcomeDeadlock
	default:
		outcome = model.OutcomeContinue
	}

	return Result{Unsafe: unsafe, Outcome: outcome}
}

// sharedSecret reports whether every contender holds the same set secret
func sharedSecret(contenders []Contender) bool {
	first := contenders[0].Secret
	if first == nil {
		return false
	}
	for _, c := range contenders[1:] {
		if !matches(c.Secret, *first) {
			return false
		}
	}
	return true
}

// matches treats an unset secret as equal to nothing
func matches(secret *int, number int) bool {
	return secret != nil && *secret == number
}
