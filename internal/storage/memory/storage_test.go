package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Room code tests

func (s *StorageSuite) TestReserveRoomCodeOnlyOnce() {
	ok, err := s.storage.ReserveRoomCode(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.storage.ReserveRoomCode(s.ctx, "1234")
	s.Require().NoError(err)
	s.False(ok)

	reserved, err := s.storage.RoomCodeReserved(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(reserved)
}

func (s *StorageSuite) TestReleaseRoomCode() {
	_, _ = s.storage.ReserveRoomCode(s.ctx, "1234")

	err := s.storage.ReleaseRoomCode(s.ctx, "1234")
	s.Require().NoError(err)

	reserved, err := s.storage.RoomCodeReserved(s.ctx, "1234")
	s.Require().NoError(err)
	s.False(reserved)

	ok, err := s.storage.ReserveRoomCode(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(ok)
}

// Round history tests

func (s *StorageSuite) TestRoundHistoryKeepsOrder() {
	for round := 1; round <= 3; round++ {
		err := s.storage.SaveRoundSummary(s.ctx, &model.RoundSummary{
			RoomCode:    "1234",
			Round:       round,
			Outcome:     model.OutcomeSingleLoser,
			CompletedAt: time.Now(),
		})
		s.Require().NoError(err)
	}

	history, err := s.storage.GetRoundSummaries(s.ctx, "1234")
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(1, history[0].Round)
	s.Equal(3, history[2].Round)
}

func (s *StorageSuite) TestRoundHistoryIsBounded() {
	for round := 1; round <= storage.DefaultHistoryLimit+5; round++ {
		_ = s.storage.SaveRoundSummary(s.ctx, &model.RoundSummary{RoomCode: "1234", Round: round})
	}

	history, err := s.storage.GetRoundSummaries(s.ctx, "1234")
	s.Require().NoError(err)
	s.Len(history, storage.DefaultHistoryLimit)
	s.Equal(6, history[0].Round)
}

func (s *StorageSuite) TestDeleteRoundSummaries() {
	_ = s.storage.SaveRoundSummary(s.ctx, &model.RoundSummary{RoomCode: "1234", Round: 1})
	_ = s.storage.SaveRoundSummary(s.ctx, &model.RoundSummary{RoomCode: "5678", Round: 1})

	err := s.storage.DeleteRoundSummaries(s.ctx, "1234")
	s.Require().NoError(err)

	history, err := s.storage.GetRoundSummaries(s.ctx, "1234")
	s.Require().NoError(err)
	s.Empty(history)

	other, err := s.storage.GetRoundSummaries(s.ctx, "5678")
	s.Require().NoError(err)
	s.Len(other, 1)
}
