// Package rooms holds the index of live rooms shared by the registry and the
// round controller.
package rooms

import (
	"sort"
	"sync"

	"github.com/mcoot/cutgame/internal/model"
)

// Table maps room codes to live rooms and participants to their room.
// The lock guards only the indexes; each room guards its own state.
type Table struct {
	mu           sync.RWMutex
	rooms        map[model.RoomCode]*model.Room
	participants map[model.PlayerID]model.RoomCode
}

// NewTable creates an empty Table
func NewTable() *Table {
	return &Table{
		rooms:        make(map[model.RoomCode]*model.Room),
		participants: make(map[model.PlayerID]model.RoomCode),
	}
}

// Insert adds a room. Returns false if the code is already live.
func (t *Table) Insert(room *model.Room) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rooms[room.Code]; exists {
		return false
	}
	t.rooms[room.Code] = room
	return true
}

// Get looks up a live room by code
func (t *Table) Get(code model.RoomCode) (*model.Room, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	room, ok := t.rooms[code]
	return room, ok
}

// Has reports whether a code is currently live
func (t *Table) Has(code model.RoomCode) bool {
	_, ok := t.Get(code)
	return ok
}

// Delete removes a room and any participant entries pointing at it
func (t *Table) Delete(code model.RoomCode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, code)
	for pid, c := range t.participants {
		if c == code {
			delete(t.participants, pid)
		}
	}
}

// RoomOf returns the code of the room a participant belongs to
func (t *Table) RoomOf(participant model.PlayerID) (model.RoomCode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	code, ok := t.participants[participant]
	return code, ok
}

// Assign records that a participant belongs to a room
func (t *Table) Assign(participant model.PlayerID, code model.RoomCode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.participants[participant] = code
}

// Unassign forgets a participant's room if it is still the given one
func (t *Table) Unassign(participant model.PlayerID, code model.RoomCode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.participants[participant] == code {
		delete(t.participants, participant)
	}
}

// List returns all live rooms ordered by code
func (t *Table) List() []*model.Room {
	t.mu.RLock()
	list := make([]*model.Room, 0, len(t.rooms))
	for _, room := range t.rooms {
		list = append(list, room)
	}
	t.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list
}

// Len returns the number of live rooms
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms)
}
