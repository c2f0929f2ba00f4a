package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case History:
		o.printHistory(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Host    bool   `json:"host"`
	Ready   bool   `json:"ready"`
	Safe    bool   `json:"safe"`
	InRound bool   `json:"in_round"`
	Score   int    `json:"score"`
}

// Room response type
type Room struct {
	Code        string   `json:"code"`
	Phase       string   `json:"phase"`
	HostID      string   `json:"host_id"`
	Range       int      `json:"range"`
	Round       int      `json:"round"`
	CurrentTurn *string  `json:"current_turn"`
	Players     []Player `json:"players"`
}

// RoomListing response type
type RoomListing struct {
	Code    string `json:"code"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomListing `json:"rooms"`
}

// RoundSummary response type
type RoundSummary struct {
	Round       int            `json:"round"`
	Outcome     string         `json:"outcome"`
	LoserNames  []string       `json:"loser_names"`
	Scores      map[string]int `json:"scores"`
	CompletedAt time.Time      `json:"completed_at"`
}

// History response type
type History struct {
	Code   string         `json:"code"`
	Rounds []RoundSummary `json:"rounds"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Phase: %s\n", r.Phase)
	fmt.Printf("Range: 1-%d\n", r.Range)
	fmt.Printf("Round: %d\n", r.Round)

	turn := ""
	if r.CurrentTurn != nil {
		turn = *r.CurrentTurn
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		var tags []string
		if p.Host {
			tags = append(tags, "host")
		}
		if p.ID == turn {
			tags = append(tags, "turn")
		}
		if p.Safe {
			tags = append(tags, "safe")
		}
		if p.Ready {
			tags = append(tags, "ready")
		}
		if !p.InRound && r.Round > 0 {
			tags = append(tags, "waiting")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Printf("  - %s (%s) - %d points%s\n", p.Name, p.ID, p.Score, tagStr)
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No live rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Printf("%s  %-16s %d players\n", r.Code, r.Phase, r.Players)
	}
}

func (o *Output) printHistory(h History) {
	if len(h.Rounds) == 0 {
		fmt.Printf("Room %s has no finished rounds\n", h.Code)
		return
	}
	fmt.Printf("Room %s:\n", h.Code)
	for _, r := range h.Rounds {
		losers := "none"
		if len(r.LoserNames) > 0 {
			losers = strings.Join(r.LoserNames, ", ")
		}
		fmt.Printf("  Round %d (%s) %s - losers: %s\n",
			r.Round, r.CompletedAt.Format("15:04:05"), r.Outcome, losers)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
	fmt.Printf("Connections: %d\n", h.Connections)
}
