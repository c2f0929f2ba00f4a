package response

import (
	"time"

	"github.com/mcoot/cutgame/internal/model"
)

// Player represents a room participant in API responses
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Host    bool   `json:"host"`
	Ready   bool   `json:"ready"`
	Safe    bool   `json:"safe"`
	InRound bool   `json:"in_round"`
	Score   int    `json:"score"`
}

// PlayerFromModel converts a model.PlayerView
func PlayerFromModel(p model.PlayerView) Player {
	return Player{
		ID:      string(p.ID),
		Name:    p.Name,
		Host:    p.Host,
		Ready:   p.Ready,
		Safe:    p.Safe,
		InRound: p.InRound,
		Score:   p.Score,
	}
}

// Room represents a live room in API responses
type Room struct {
	Code        string    `json:"code"`
	Phase       string    `json:"phase"`
	HostID      string    `json:"host_id"`
	Range       int       `json:"range"`
	Round       int       `json:"round"`
	CurrentTurn *string   `json:"current_turn"`
	Players     []Player  `json:"players"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomFromModel converts model.RoomSnapshot
func RoomFromModel(s model.RoomSnapshot) Room {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}

	var currentTurn *string
	if s.CurrentTurn != "" {
		t := string(s.CurrentTurn)
		currentTurn = &t
	}

	return Room{
		Code:        string(s.Code),
		Phase:       string(s.Phase),
		HostID:      string(s.HostID),
		Range:       s.Range,
		Round:       s.Round,
		CurrentTurn: currentTurn,
		Players:     players,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// RoomListing is a single entry of the live room list
type RoomListing struct {
	Code    string `json:"code"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// RoomList is the response for the room listing endpoint
type RoomList struct {
	Rooms []RoomListing `json:"rooms"`
}

// RoomListFromModel converts a slice of model.RoomInfo
func RoomListFromModel(infos []model.RoomInfo) RoomList {
	rooms := make([]RoomListing, len(infos))
	for i, info := range infos {
		rooms[i] = RoomListing{
			Code:    string(info.Code),
			Phase:   string(info.Phase),
			Players: info.Players,
		}
	}
	return RoomList{Rooms: rooms}
}

// RoundSummary represents a finished round
type RoundSummary struct {
	Round       int            `json:"round"`
	Outcome     string         `json:"outcome"`
	Losers      []string       `json:"losers"`
	LoserNames  []string       `json:"loser_names"`
	Scores      map[string]int `json:"scores"`
	CompletedAt time.Time      `json:"completed_at"`
}

// RoundSummaryFromModel converts model.RoundSummary
func RoundSummaryFromModel(r model.RoundSummary) RoundSummary {
	losers := make([]string, len(r.Losers))
	for i, id := range r.Losers {
		losers[i] = string(id)
	}
	scores := make(map[string]int, len(r.Scores))
	for id, score := range r.Scores {
		scores[string(id)] = score
	}
	names := r.LoserNames
	if names == nil {
		names = []string{}
	}
	return RoundSummary{
		Round:       r.Round,
		Outcome:     string(r.Outcome),
		Losers:      losers,
		LoserNames:  names,
		Scores:      scores,
		CompletedAt: r.CompletedAt,
	}
}

// History is the response for a room's round history
type History struct {
	Code   string         `json:"code"`
	Rounds []RoundSummary `json:"rounds"`
}

// HistoryFromModel converts a room's round summaries
func HistoryFromModel(code model.RoomCode, rounds []model.RoundSummary) History {
	out := make([]RoundSummary, len(rounds))
	for i, r := range rounds {
		out[i] = RoundSummaryFromModel(r)
	}
	return History{Code: string(code), Rounds: out}
}

// Health is the response for the health endpoint
type Health struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}
