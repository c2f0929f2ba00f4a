package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room code operations

func (s *Storage) ReserveRoomCode(ctx context.Context, code model.RoomCode) (bool, error) {
	return s.client.SetNX(ctx, roomCodeKey(code), time.Now().Unix(), s.cfg.RoomCodeTTL).Result()
}

func (s *Storage) ReleaseRoomCode(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, roomCodeKey(code)).Err()
}

func (s *Storage) RoomCodeReserved(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomCodeKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Round history operations

func (s *Storage) SaveRoundSummary(ctx context.Context, summary *model.RoundSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := historyKey(summary.RoomCode)

	// Append, trim and refresh TTL together
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.cfg.HistoryLimit > 0 {
		pipe.LTrim(ctx, key, int64(-s.cfg.HistoryLimit), -1)
	}
	if s.cfg.HistoryTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.HistoryTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoundSummaries(ctx context.Context, code model.RoomCode) ([]model.RoundSummary, error) {
	values, err := s.client.LRange(ctx, historyKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.RoundSummary, 0, len(values))
	for _, val := range values {
		var summary model.RoundSummary
		if err := json.Unmarshal([]byte(val), &summary); err != nil {
			return nil, fmt.Errorf("decode round summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Storage) DeleteRoundSummaries(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, historyKey(code)).Err()
}
