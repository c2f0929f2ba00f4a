package storage

import (
	"context"

	"github.com/mcoot/cutgame/internal/model"
)

// DefaultHistoryLimit is the number of round summaries kept per room
const DefaultHistoryLimit = 50

// Storage defines the interface for the small amount of data kept outside
// the live rooms
type Storage interface {
	// Room code reservations
	ReserveRoomCode(ctx context.Context, code model.RoomCode) (bool, error)
	ReleaseRoomCode(ctx context.Context, code model.RoomCode) error
	RoomCodeReserved(ctx context.Context, code model.RoomCode) (bool, error)

	// Round history, oldest first
	SaveRoundSummary(ctx context.Context, summary *model.RoundSummary) error
	GetRoundSummaries(ctx context.Context, code model.RoomCode) ([]model.RoundSummary, error)
	DeleteRoundSummaries(ctx context.Context, code model.RoomCode) error
}
