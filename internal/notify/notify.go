// Package notify defines how the game core pushes notifications to participants
package notify

import "github.com/mcoot/cutgame/internal/model"

// Notifier delivers outbound notifications. Implementations must not block:
// the core calls them while holding a room's lock.
type Notifier interface {
	// Send delivers a notification to one participant
	Send(to model.PlayerID, n model.Notification)

	// Broadcast delivers a notification to every member of a room group
	Broadcast(code model.RoomCode, n model.Notification)

	// Subscribe adds a participant to a room group
	Subscribe(code model.RoomCode, participant model.PlayerID)

	// Unsubscribe removes a participant from a room group
	Unsubscribe(code model.RoomCode, participant model.PlayerID)

	// CloseGroup drops a room group once the room is torn down
	CloseGroup(code model.RoomCode)
}

// Discard is a Notifier that drops everything
type Discard struct{}

var _ Notifier = Discard{}

func (Discard) Send(model.PlayerID, model.Notification)      {}
func (Discard) Broadcast(model.RoomCode, model.Notification) {}
func (Discard) Subscribe(model.RoomCode, model.PlayerID)     {}
func (Discard) Unsubscribe(model.RoomCode, model.PlayerID)   {}
func (Discard) CloseGroup(model.RoomCode)                    {}
