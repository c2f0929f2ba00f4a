package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cutgame/internal/dependencies/mocks"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/protocol"
	"github.com/mcoot/cutgame/internal/rooms"
	"github.com/mcoot/cutgame/internal/services/registry"
	"github.com/mcoot/cutgame/internal/services/round"
	"github.com/mcoot/cutgame/internal/services/scheduler"
	"github.com/mcoot/cutgame/internal/storage/memory"
	"github.com/mcoot/cutgame/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	notifier   *mocks.RecordingNotifier
	random     *mocks.MockRandom
	scheduler  *scheduler.Scheduler
	registry   *registry.Registry
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	logger := testutil.NopLogger()
	table := rooms.NewTable()
	store := memory.New()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.notifier = mocks.NewRecordingNotifier()
	s.random = mocks.NewMockRandom()
	s.scheduler = scheduler.New(clock, logger, scheduler.DefaultConfig())
	rounds := round.NewController(table, s.scheduler, s.notifier, store, clock, logger, round.DefaultConfig())
	s.registry = registry.New(table, rounds, s.notifier, store, clock, s.random, logger, registry.DefaultConfig())
	s.dispatcher = New(s.registry, rounds, s.notifier, logger)
	s.ctx = context.Background()
}

func (s *DispatcherSuite) TearDownTest() {
	s.scheduler.Stop()
}

func (s *DispatcherSuite) lastSent(to model.PlayerID) model.Notification {
	sent := s.notifier.SentTo(to)
	s.Require().NotEmpty(sent)
	return sent[len(sent)-1]
}

func (s *DispatcherSuite) TestFullRoundThroughActions() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})
	s.dispatcher.Handle(s.ctx, "b", model.JoinRoom{Name: "Ben", RoomCode: "1234"})
	s.dispatcher.Handle(s.ctx, "a", model.SetRange{RoomCode: "1234", Range: 10})
	s.dispatcher.Handle(s.ctx, "a", model.SelectSecret{RoomCode: "1234", Number: 4})
	s.dispatcher.Handle(s.ctx, "b", model.SelectSecret{RoomCode: "1234", Number: 6})
	s.dispatcher.Handle(s.ctx, "a", model.StartGame{RoomCode: "1234"})
	s.dispatcher.Handle(s.ctx, "a", model.CutNumber{RoomCode: "1234", Number: 6})

	n, ok := s.notifier.LastBroadcast("1234", model.NotificationRoundOver)
	s.Require().True(ok)
	s.Equal([]string{"Ann"}, n.Payload.(model.RoundOverPayload).Losers)
	s.Empty(s.notifier.SentTo("b")[1:], "only room-joined goes to b directly")
}

func (s *DispatcherSuite) TestUnknownRoomSendsInvalidRoom() {
	s.dispatcher.Handle(s.ctx, "a", model.JoinRoom{Name: "Ann", RoomCode: "9999"})

	s.Equal(model.NotificationInvalidRoom, s.lastSent("a").Type)
}

func (s *DispatcherSuite) TestInRoomActionsForUnknownRoomAreDropped() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})
	sentBefore := len(s.notifier.SentTo("a"))

	for _, action := range []model.Action{
		model.SetRange{RoomCode: "9999", Range: 10},
		model.SelectSecret{RoomCode: "9999", Number: 1},
		model.StartGame{RoomCode: "9999"},
		model.CutNumber{RoomCode: "9999", Number: 1},
	} {
		s.dispatcher.Handle(s.ctx, "a", action)
	}

	s.Len(s.notifier.SentTo("a"), sentBefore)
}

func (s *DispatcherSuite) TestDuplicateSecretSendsSelectionError() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})
	s.dispatcher.Handle(s.ctx, "b", model.JoinRoom{Name: "Ben", RoomCode: "1234"})
	s.dispatcher.Handle(s.ctx, "a", model.SetRange{RoomCode: "1234", Range: 10})
	s.dispatcher.Handle(s.ctx, "a", model.SelectSecret{RoomCode: "1234", Number: 5})

	s.dispatcher.Handle(s.ctx, "b", model.SelectSecret{RoomCode: "1234", Number: 5})

	s.Equal(model.NotificationSecretError, s.lastSent("b").Type)
	snap, err := s.registry.Snapshot("1234")
	s.Require().NoError(err)
	s.False(snap.Players[1].Ready)
}

func (s *DispatcherSuite) TestPermissionErrorsAreSilent() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})
	s.dispatcher.Handle(s.ctx, "b", model.JoinRoom{Name: "Ben", RoomCode: "1234"})
	sentBefore := len(s.notifier.SentTo("b"))

	s.dispatcher.Handle(s.ctx, "b", model.SetRange{RoomCode: "1234", Range: 10})
	s.dispatcher.Handle(s.ctx, "b", model.StartGame{RoomCode: "1234"})
	s.dispatcher.Handle(s.ctx, "b", model.CutNumber{RoomCode: "1234", Number: 1})

	s.Len(s.notifier.SentTo("b"), sentBefore)
}

func (s *DispatcherSuite) TestRangeErrorsAreReported() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})

	s.dispatcher.Handle(s.ctx, "a", model.SetRange{RoomCode: "1234", Range: 500})

	n := s.lastSent("a")
	s.Equal(model.NotificationError, n.Type)
	s.Equal(CodeInvalidRange, n.Payload.(model.ErrorPayload).Code)
}

func (s *DispatcherSuite) TestDisconnectRemovesParticipant() {
	s.random.QueueIntn(234)
	s.dispatcher.Handle(s.ctx, "a", model.CreateRoom{Name: "Ann"})

	s.dispatcher.Handle(s.ctx, "a", model.Disconnect{})
	s.dispatcher.Handle(s.ctx, "a", model.Disconnect{})

	s.Empty(s.registry.ListRooms())
	for _, n := range s.notifier.SentTo("a") {
		s.NotEqual(model.NotificationError, n.Type)
	}
}

func (s *DispatcherSuite) TestRejectMapsProtocolErrors() {
	s.dispatcher.Reject("a", protocol.ErrMalformedPayload)

	n := s.lastSent("a")
	s.Equal(CodeBadRequest, n.Payload.(model.ErrorPayload).Code)
}

func (s *DispatcherSuite) TestRejectHidesUnexpectedErrors() {
	s.dispatcher.Reject("a", errors.New("redis is down"))

	n := s.lastSent("a")
	s.Equal(model.ErrorPayload{Code: CodeInternal, Message: "internal error"}, n.Payload)
}
