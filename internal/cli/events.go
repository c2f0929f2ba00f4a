package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/cutgame/internal/protocol"
)

// streamOpenedEvent is the first event of every spectator stream
const streamOpenedEvent = "connected"

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Watch a room as a spectator",
		Long: `Follow a room's broadcasts without joining it.

Spectators see what the players see: the roster, range, turns, cuts and
round results. Secrets are never sent. Countdown ticks are shown for the
last five seconds of a turn, or every second with --verbose.

Press Ctrl+C to stop watching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchRoom(ctx, args[0], jsonOutput || cfg.Output == "json")
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw events as JSON lines")

	return cmd
}

// SSEEvent is one event as printed in JSON mode
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func watchRoom(ctx context.Context, roomCode string, jsonOutput bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.URL("/api/v1/rooms/"+roomCode+"/events"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream stays open for the life of the room
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("room %s does not exist", roomCode)
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	err = readSSE(resp.Body, func(event, data string) {
		if jsonOutput {
			printEventJSON(os.Stdout, event, data)
			return
		}
		if line := spectatorLine(roomCode, event, data, cfg.Verbose); line != "" {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), line)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Stopped watching")
	}
	return nil
}

// readSSE calls fn for every complete event on the stream. Comment lines
// such as keepalives are skipped.
func readSSE(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	var event string
	var data []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			if event != "" {
				fn(event, strings.Join(data, "\n"))
			}
			event = ""
			data = nil
		}
	}
	return scanner.Err()
}

// spectatorLine renders a broadcast the way a player would see it, from
// the point of view of someone not in the room
func spectatorLine(roomCode, event, data string, verbose bool) string {
	if event == streamOpenedEvent {
		return fmt.Sprintf("Watching room %s", roomCode)
	}

	env, err := protocol.DecodeEnvelope([]byte(data))
	if err != nil {
		return fmt.Sprintf("%s: %s", event, data)
	}
	line, err := describe(env, "", verbose)
	if err != nil {
		return fmt.Sprintf("%s: %s", event, data)
	}
	return line
}

func printEventJSON(w io.Writer, event, data string) {
	raw := json.RawMessage(data)
	if !json.Valid(raw) {
		quoted, _ := json.Marshal(data)
		raw = quoted
	}
	out, _ := json.Marshal(SSEEvent{Time: time.Now(), Event: event, Data: raw})
	_, _ = fmt.Fprintln(w, string(out))
}
