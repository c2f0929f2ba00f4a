package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/protocol"
)

var (
	errQuit   = errors.New("quit")
	errNoRoom = errors.New("not in a room; use create or join first")
)

const playHelp = `Commands:
  create [name]        Create a room and become its host
  join <code> [name]   Join an existing room
  range <n>            (host) Set the secret range to 1..n
  secret <n>           Pick your secret number
  start                (host) Start the round
  cut <n>              Cut a number on your turn
  help                 Show this help
  quit                 Leave and exit`

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively over a websocket session",
		Long: `Open a websocket session with the server and play from the terminal.

` + playHelp + `

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cmd.InOrStdin(), name)
		},
	}

	cmd.Flags().StringVar(&name, "name", cfg.Name, "Default display name for create and join (env: CUTGAME_NAME)")

	return cmd
}

// playSession tracks what the server has told this participant
type playSession struct {
	mu      sync.Mutex
	self    model.PlayerID
	room    model.RoomCode
	out     *Output
	verbose bool
}

func newPlaySession(out *Output, verbose bool) *playSession {
	return &playSession{out: out, verbose: verbose}
}

// Room returns the room the session is currently in
func (s *playSession) Room() model.RoomCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// receive applies and prints one server message
func (s *playSession) receive(msg []byte) {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		s.out.PrintError(fmt.Errorf("unreadable server message: %w", err))
		return
	}

	s.mu.Lock()
	switch model.NotificationType(env.Type) {
	case model.NotificationConnected:
		if p, err := protocol.DecodePayload[model.ConnectedPayload](env); err == nil {
			s.self = p.ParticipantID
		}
	case model.NotificationRoomCreated, model.NotificationRoomJoined:
		s.room = env.RoomCode
	}
	self := s.self
	s.mu.Unlock()

	if s.out.format == "json" {
		fmt.Println(string(msg))
		return
	}

	text, err := describe(env, self, s.verbose)
	if err != nil {
		s.out.PrintError(err)
		return
	}
	if text != "" {
		s.out.PrintMessage(text)
	}
}

// parseCommand turns one line of input into an action for the current room
func parseCommand(line string, room model.RoomCode, defaultName string) (model.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "quit", "exit":
		return nil, errQuit
	case "help":
		return nil, nil
	case "create":
		return model.CreateRoom{Name: nameArg(args, defaultName)}, nil
	case "join":
		if len(args) < 1 {
			return nil, errors.New("usage: join <code> [name]")
		}
		return model.JoinRoom{RoomCode: model.RoomCode(args[0]), Name: nameArg(args[1:], defaultName)}, nil
	case "start":
		if room == "" {
			return nil, errNoRoom
		}
		return model.StartGame{RoomCode: room}, nil
	case "range", "secret", "cut":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s <n>", cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", args[0])
		}
		if room == "" {
			return nil, errNoRoom
		}
		switch cmd {
		case "range":
			return model.SetRange{RoomCode: room, Range: n}, nil
		case "secret":
			return model.SelectSecret{RoomCode: room, Number: n}, nil
		default:
			return model.CutNumber{RoomCode: room, Number: n}, nil
		}
	default:
		return nil, fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func nameArg(args []string, defaultName string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	return defaultName
}

// describe renders a notification as a line of text; empty means skip it
func describe(env protocol.Envelope, self model.PlayerID, verbose bool) (string, error) {
	switch model.NotificationType(env.Type) {
	case model.NotificationConnected:
		p, err := protocol.DecodePayload[model.ConnectedPayload](env)
		return fmt.Sprintf("Connected as %s. Type help for commands.", p.ParticipantID), err
	case model.NotificationRoomCreated:
		p, err := protocol.DecodePayload[model.RoomCreatedPayload](env)
		return fmt.Sprintf("Created room %s", p.RoomCode), err
	case model.NotificationRoomJoined:
		p, err := protocol.DecodePayload[model.RoomJoinedPayload](env)
		if p.IsHost {
			return fmt.Sprintf("Joined room %s as host. Set the range with: range <n>", p.RoomCode), err
		}
		return fmt.Sprintf("Joined room %s", p.RoomCode), err
	case model.NotificationInvalidRoom:
		p, err := protocol.DecodePayload[model.InvalidRoomPayload](env)
		return p.Message, err
	case model.NotificationRoster:
		p, err := protocol.DecodePayload[model.RosterPayload](env)
		return describeRoster(p.Players, self), err
	case model.NotificationHostAssigned:
		p, err := protocol.DecodePayload[model.HostAssignedPayload](env)
		return fmt.Sprintf("You are now the host of room %s", p.RoomCode), err
	case model.NotificationRangeSet:
		p, err := protocol.DecodePayload[model.RangeSetPayload](env)
		return fmt.Sprintf("Range is 1-%d. Pick a secret with: secret <n>", p.Range), err
	case model.NotificationSecretError:
		p, err := protocol.DecodePayload[model.SecretErrorPayload](env)
		return p.Message, err
	case model.NotificationAllSecretsReady:
		return "Everyone has a secret. Start the round with: start", nil
	case model.NotificationGameStarted:
		p, err := protocol.DecodePayload[model.GameStartedPayload](env)
		return fmt.Sprintf("Round %d started (1-%d). %s", p.Round, p.Range, turnText(p.FirstPlayerID, p.FirstPlayerName, self)), err
	case model.NotificationTurnChanged:
		p, err := protocol.DecodePayload[model.TurnChangedPayload](env)
		return turnText(p.PlayerID, p.PlayerName, self), err
	case model.NotificationCountdown:
		p, err := protocol.DecodePayload[model.CountdownPayload](env)
		if !verbose && p.Seconds > 5 {
			return "", err
		}
		return fmt.Sprintf("%d...", p.Seconds), err
	case model.NotificationCutResult:
		p, err := protocol.DecodePayload[model.CutResultPayload](env)
		if len(p.Saved) == 0 {
			return fmt.Sprintf("%d was cut. Nobody was saved", p.Number), err
		}
		return fmt.Sprintf("%d was cut. Saved: %s", p.Number, strings.Join(p.Saved, ", ")), err
	case model.NotificationRoundOver:
		p, err := protocol.DecodePayload[model.RoundOverPayload](env)
		return p.Message, err
	case model.NotificationNewRound:
		p, err := protocol.DecodePayload[model.NewRoundPayload](env)
		return fmt.Sprintf("Round %d: pick a new secret (1-%d)", p.Round, p.Range), err
	case model.NotificationMessage:
		p, err := protocol.DecodePayload[model.MessagePayload](env)
		return p.Text, err
	case model.NotificationError:
		p, err := protocol.DecodePayload[model.ErrorPayload](env)
		return fmt.Sprintf("Error: %s (%s)", p.Message, p.Code), err
	default:
		return fmt.Sprintf("%s: %s", env.Type, string(env.Payload)), nil
	}
}

func turnText(id model.PlayerID, name string, self model.PlayerID) string {
	if id == self {
		return "Your turn! Cut a number with: cut <n>"
	}
	return fmt.Sprintf("%s's turn", name)
}

func describeRoster(players []model.PlayerView, self model.PlayerID) string {
	parts := make([]string, len(players))
	for i, p := range players {
		entry := fmt.Sprintf("%s %d", p.Name, p.Score)
		var tags []string
		if p.ID == self {
			tags = append(tags, "you")
		}
		if p.Host {
			tags = append(tags, "host")
		}
		if p.Safe {
			tags = append(tags, "safe")
		}
		if len(tags) > 0 {
			entry += " (" + strings.Join(tags, ", ") + ")"
		}
		parts[i] = entry
	}
	return "Players: " + strings.Join(parts, " | ")
}

func runPlay(ctx context.Context, in io.Reader, name string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := client.WebsocketURL("/api/v1/ws")
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output)
	session := newPlaySession(out, cfg.Verbose)

	// Reader: print everything the server sends
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			session.receive(msg)
		}
	}()

	// Input: one command per line
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return closePlay(conn, serverDone)
		case <-serverDone:
			out.PrintMessage("Server closed the connection")
			return nil
		case line, ok := <-lines:
			if !ok {
				return closePlay(conn, serverDone)
			}
			action, err := parseCommand(line, session.Room(), name)
			if errors.Is(err, errQuit) {
				return closePlay(conn, serverDone)
			}
			if err != nil {
				out.PrintError(err)
				continue
			}
			if action == nil {
				if strings.EqualFold(strings.TrimSpace(line), "help") {
					out.PrintMessage(playHelp)
				}
				continue
			}
			msg, err := protocol.EncodeAction(action)
			if err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// closePlay sends a close frame and waits briefly for the server to finish
func closePlay(conn *websocket.Conn, serverDone <-chan struct{}) error {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	select {
	case <-serverDone:
	case <-time.After(time.Second):
	}
	return nil
}
