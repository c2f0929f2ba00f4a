package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cutgame/internal/model"
)

type TableSuite struct {
	suite.Suite
	table *Table
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func (s *TableSuite) SetupTest() {
	s.table = NewTable()
}

func (s *TableSuite) newRoom(code model.RoomCode, host model.PlayerID) *model.Room {
	return model.NewRoom(code, &model.Player{ID: host, Name: string(host)}, 20, time.Now())
}

func (s *TableSuite) TestInsertRejectsLiveCode() {
	s.True(s.table.Insert(s.newRoom("1234", "a")))
	s.False(s.table.Insert(s.newRoom("1234", "b")))

	room, ok := s.table.Get("1234")
	s.Require().True(ok)
	s.Equal(model.PlayerID("a"), room.HostID)
}

func (s *TableSuite) TestDeleteDropsParticipantIndex() {
	s.table.Insert(s.newRoom("1234", "a"))
	s.table.Insert(s.newRoom("5678", "c"))
	s.table.Assign("a", "1234")
	s.table.Assign("b", "1234")
	s.table.Assign("c", "5678")

	s.table.Delete("1234")

	s.False(s.table.Has("1234"))
	_, ok := s.table.RoomOf("a")
	s.False(ok)
	_, ok = s.table.RoomOf("b")
	s.False(ok)
	code, ok := s.table.RoomOf("c")
	s.True(ok)
	s.Equal(model.RoomCode("5678"), code)
}

func (s *TableSuite) TestUnassignIgnoresStaleRoom() {
	s.table.Assign("a", "5678")

	s.table.Unassign("a", "1234")

	code, ok := s.table.RoomOf("a")
	s.True(ok)
	s.Equal(model.RoomCode("5678"), code)
}

func (s *TableSuite) TestListIsOrderedByCode() {
	s.table.Insert(s.newRoom("9000", "a"))
	s.table.Insert(s.newRoom("1000", "b"))
	s.table.Insert(s.newRoom("5000", "c"))

	list := s.table.List()

	s.Require().Len(list, 3)
	s.Equal(model.RoomCode("1000"), list[0].Code)
	s.Equal(model.RoomCode("5000"), list[1].Code)
	s.Equal(model.RoomCode("9000"), list[2].Code)
	s.Equal(3, s.table.Len())
}
