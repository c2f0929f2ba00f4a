package realtime

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cutgame/internal/dependencies/mocks"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/protocol"
	"github.com/mcoot/cutgame/internal/testutil"
)

type handled struct {
	sender model.PlayerID
	action model.Action
	err    error
}

// recordingHandler captures everything the gateway hands over
type recordingHandler struct {
	calls chan handled
}

func (h *recordingHandler) Handle(ctx context.Context, sender model.PlayerID, action model.Action) {
	h.calls <- handled{sender: sender, action: action}
}

func (h *recordingHandler) Reject(sender model.PlayerID, err error) {
	h.calls <- handled{sender: sender, err: err}
}

type GatewaySuite struct {
	suite.Suite
	hubs    *HubManager
	handler *recordingHandler
	ids     *mocks.MockIdentity
	server  *httptest.Server
	config  Config
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.config = DefaultConfig()
	s.startServer()
}

func (s *GatewaySuite) startServer() {
	if s.server != nil {
		s.server.Close()
	}
	logger := testutil.NopLogger()
	s.hubs = NewHubManager(logger)
	s.handler = &recordingHandler{calls: make(chan handled, 64)}
	s.ids = mocks.NewMockIdentity()
	gateway := NewGateway(s.hubs, s.handler, s.ids, logger, s.config)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gateway.ServeWS)
	mux.HandleFunc("/rooms/1234/events", func(w http.ResponseWriter, r *http.Request) {
		if err := gateway.ServeSSE(w, r, "1234"); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
		}
	})
	s.server = httptest.NewServer(mux)
}

func (s *GatewaySuite) TearDownTest() {
	s.server.Close()
	s.hubs.Close()
}

func (s *GatewaySuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

func (s *GatewaySuite) readEnvelope(conn *websocket.Conn) protocol.Envelope {
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	s.Require().NoError(err)
	env, err := protocol.DecodeEnvelope(msg)
	s.Require().NoError(err)
	return env
}

func (s *GatewaySuite) nextCall() handled {
	select {
	case c := <-s.handler.calls:
		return c
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for handler call")
		return handled{}
	}
}

func (s *GatewaySuite) TestConnectAssignsIdentity() {
	s.ids.QueueID("p-1")
	conn := s.dial()
	defer conn.Close()

	env := s.readEnvelope(conn)
	s.Equal(string(model.NotificationConnected), env.Type)
	payload, err := protocol.DecodePayload[model.ConnectedPayload](env)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p-1"), payload.ParticipantID)
}

func (s *GatewaySuite) TestActionsAreDecodedAndDispatched() {
	s.ids.QueueID("p-1")
	conn := s.dial()
	defer conn.Close()
	s.readEnvelope(conn)

	msg, err := protocol.EncodeAction(model.CreateRoom{Name: "Ann"})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, msg))

	call := s.nextCall()
	s.Equal(model.PlayerID("p-1"), call.sender)
	s.Equal(model.CreateRoom{Name: "Ann"}, call.action)
}

func (s *GatewaySuite) TestMalformedMessagesAreRejected() {
	conn := s.dial()
	defer conn.Close()
	s.readEnvelope(conn)

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"nope"}`)))

	call := s.nextCall()
	s.ErrorIs(call.err, protocol.ErrUnknownAction)
}

func (s *GatewaySuite) TestRateLimitRejectsBursts() {
	s.config.ActionsPerSecond = 0.001
	s.config.ActionBurst = 1
	s.startServer()
	conn := s.dial()
	defer conn.Close()
	s.readEnvelope(conn)

	msg, _ := protocol.EncodeAction(model.StartGame{RoomCode: "1234"})
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, msg))
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, msg))

	s.Equal(model.StartGame{RoomCode: "1234"}, s.nextCall().action)
	s.ErrorIs(s.nextCall().err, model.ErrRateLimited)
}

func (s *GatewaySuite) TestNotificationsReachSocket() {
	s.ids.QueueID("p-1")
	conn := s.dial()
	defer conn.Close()
	s.readEnvelope(conn)

	s.hubs.Subscribe("1234", "p-1")
	s.hubs.Broadcast("1234", model.NewNotification("1234", model.CountdownPayload{Seconds: 9}))

	env := s.readEnvelope(conn)
	s.Equal(string(model.NotificationCountdown), env.Type)
	s.Equal(model.RoomCode("1234"), env.RoomCode)
}

func (s *GatewaySuite) TestCloseDispatchesDisconnect() {
	s.ids.QueueID("p-1")
	conn := s.dial()
	s.readEnvelope(conn)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	call := s.nextCall()
	s.Equal(model.PlayerID("p-1"), call.sender)
	s.Equal(model.Disconnect{}, call.action)
	s.Eventually(func() bool { return s.hubs.ConnectedCount() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *GatewaySuite) TestSpectatorStream() {
	s.hubs.Subscribe("1234", "host")

	resp, err := http.Get(s.server.URL + "/rooms/1234/events")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			s.Require().NoError(err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, _ := readEvent()
	s.Equal("connected", event)

	s.hubs.Broadcast("1234", model.NewNotification("1234", model.RangeSetPayload{Range: 42}))

	event, data := readEvent()
	s.Equal(string(model.NotificationRangeSet), event)
	s.Contains(data, `"range":42`)
}

func (s *GatewaySuite) TestSpectatorStreamForUnknownRoom() {
	resp, err := http.Get(s.server.URL + "/rooms/1234/events")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.NotEqual("text/event-stream", resp.Header.Get("Content-Type"))
	s.Nil(s.hubs.GetHub("1234"))
}

func (s *GatewaySuite) TestSpectatorStreamEndsWhenRoomCloses() {
	s.hubs.Subscribe("1234", "host")

	resp, err := http.Get(s.server.URL + "/rooms/1234/events")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	s.hubs.CloseGroup("1234")

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(resp.Body)
		done <- err
	}()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("stream did not end after the room closed")
	}
	s.Nil(s.hubs.GetHub("1234"))
}
