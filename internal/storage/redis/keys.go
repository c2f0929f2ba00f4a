package redis

import (
	"fmt"

	"github.com/mcoot/cutgame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "cutgame"

// roomCodeKey returns the Redis key reserving a room code
func roomCodeKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room_code:%s", keyPrefix, code)
}

// historyKey returns the Redis key for the LIST of round summaries of a room
func historyKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, code)
}
