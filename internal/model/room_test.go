package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RoomSuite struct {
	suite.Suite
	room *Room
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomSuite))
}

func (s *RoomSuite) SetupTest() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.room = NewRoom("1234", &Player{ID: "a", Name: "A"}, 20, now)
	s.room.AddPlayer(&Player{ID: "b", Name: "B"})
	s.room.AddPlayer(&Player{ID: "c", Name: "C"})
	s.room.AddPlayer(&Player{ID: "d", Name: "D"})
}

func (s *RoomSuite) TestBeginRoundFixesOrder() {
	s.room.BeginRound()

	s.Equal([]PlayerID{"a", "b", "c", "d"}, s.room.TurnOrder)
	s.Equal(PlayerID("a"), s.room.CurrentTurn())
	s.Equal(1, s.room.Round)
	for _, p := range s.room.Players {
		s.True(p.InRound)
	}
}

// Every unsafe player is visited once before any is revisited
func (s *RoomSuite) TestAdvanceVisitsEveryUnsafePlayer() {
	s.room.BeginRound()
	s.room.GetPlayer("c").Safe = true

	var visited []PlayerID
	for i := 0; i < 6; i++ {
		next, ok := s.room.AdvanceTurn()
		s.Require().True(ok)
		visited = append(visited, next)
	}

	s.Equal([]PlayerID{"b", "d", "a", "b", "d", "a"}, visited)
}

func (s *RoomSuite) TestAdvanceSkipsDepartedAndLateJoiners() {
	s.room.BeginRound()
	s.room.RemovePlayer("b")
	s.room.AddPlayer(&Player{ID: "e", Name: "E"})

	next, ok := s.room.AdvanceTurn()
	s.Require().True(ok)
	s.Equal(PlayerID("c"), next)
	s.Equal([]PlayerID{"a", "b", "c", "d"}, s.room.TurnOrder, "turn order is fixed for the round")
	s.Len(s.room.RoundPlayers(), 3)
}

func (s *RoomSuite) TestAdvanceWithOneUnsafePlayerReturnsThem() {
	s.room.BeginRound()
	for _, id := range []PlayerID{"b", "c", "d"} {
		s.room.GetPlayer(id).Safe = true
	}

	next, ok := s.room.AdvanceTurn()
	s.Require().True(ok)
	s.Equal(PlayerID("a"), next)
}

func (s *RoomSuite) TestAdvanceWithEveryoneResolved() {
	s.room.BeginRound()
	for _, p := range s.room.Players {
		p.Safe = true
	}

	_, ok := s.room.AdvanceTurn()
	s.False(ok)
}

func (s *RoomSuite) TestAdvanceOnEmptyOrder() {
	_, ok := s.room.AdvanceTurn()
	s.False(ok)
	s.Equal(PlayerID(""), s.room.CurrentTurn())
}

func (s *RoomSuite) TestResetRoundKeepsLosses() {
	n := 4
	s.room.BeginRound()
	s.room.Phase = PhaseRoundOver
	a := s.room.GetPlayer("a")
	a.Secret = &n
	a.Safe = true
	a.Losses = 2

	s.room.ResetRound()

	s.Equal(PhaseSecretSelection, s.room.Phase)
	s.Nil(a.Secret)
	s.False(a.Safe)
	s.False(a.InRound)
	s.Equal(2, a.Losses)
	s.Empty(s.room.TurnOrder)
	s.Equal(TimerTicket(0), s.room.Timer)
}

func (s *RoomSuite) TestAllSecretsSelectedIsDerived() {
	s.False(s.room.AllSecretsSelected())
	for i, p := range s.room.Players {
		n := i + 1
		p.Secret = &n
	}
	s.True(s.room.AllSecretsSelected())

	s.room.AddPlayer(&Player{ID: "e", Name: "E"})
	s.False(s.room.AllSecretsSelected())
}

func (s *RoomSuite) TestSnapshotHidesSecrets() {
	n := 7
	s.room.GetPlayer("b").Secret = &n

	snap := s.room.Snapshot()

	s.Equal(PlayerID("a"), snap.HostID)
	s.Equal(PlayerID(""), snap.CurrentTurn)
	s.Require().Len(snap.Players, 4)
	s.True(snap.Players[0].Host)
	s.True(snap.Players[1].Ready)
	s.False(snap.Players[2].Ready)
}

func (s *RoomSuite) TestNormalizeName() {
	s.Equal("Alice", NormalizeName("  Alice "))
	s.Equal(DefaultPlayerName, NormalizeName("   "))
	s.Len([]rune(NormalizeName("abcdefghijklmnopqrstuvwxyz0123")), MaxNameLength)
}
