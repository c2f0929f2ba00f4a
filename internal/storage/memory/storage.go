package memory

import (
	"context"
	"sync"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	reserved     map[model.RoomCode]struct{}
	history      map[model.RoomCode][]model.RoundSummary
	historyLimit int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		reserved:     make(map[model.RoomCode]struct{}),
		history:      make(map[model.RoomCode][]model.RoundSummary),
		historyLimit: storage.DefaultHistoryLimit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room code operations

func (s *Storage) ReserveRoomCode(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.reserved[code]; taken {
		return false, nil
	}
	s.reserved[code] = struct{}{}
	return true, nil
}

func (s *Storage) ReleaseRoomCode(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, code)
	return nil
}

func (s *Storage) RoomCodeReserved(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.reserved[code]
	return taken, nil
}

// Round history operations

func (s *Storage) SaveRoundSummary(ctx context.Context, summary *model.RoundSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.history[summary.RoomCode], *summary)
	if len(list) > s.historyLimit {
		list = list[len(list)-s.historyLimit:]
	}
	s.history[summary.RoomCode] = list
	return nil
}

func (s *Storage) GetRoundSummaries(ctx context.Context, code model.RoomCode) ([]model.RoundSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.history[code]
	out := make([]model.RoundSummary, len(list))
	copy(out, list)
	return out, nil
}

func (s *Storage) DeleteRoundSummaries(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, code)
	return nil
}
