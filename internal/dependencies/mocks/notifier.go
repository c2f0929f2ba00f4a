package mocks

import (
	"sync"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
)

// Delivery is one recorded notification
type Delivery struct {
	To           model.PlayerID // set for Send
	Room         model.RoomCode // set for Broadcast
	Notification model.Notification
}

// RecordingNotifier records everything sent through it
type RecordingNotifier struct {
	mu         sync.Mutex
	sent       []Delivery
	broadcasts []Delivery
	groups     map[model.RoomCode]map[model.PlayerID]bool
	closed     []model.RoomCode
}

var _ notify.Notifier = (*RecordingNotifier)(nil)

// NewRecordingNotifier creates an empty RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{
		groups: make(map[model.RoomCode]map[model.PlayerID]bool),
	}
}

func (r *RecordingNotifier) Send(to model.PlayerID, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Delivery{To: to, Notification: n})
}

func (r *RecordingNotifier) Broadcast(code model.RoomCode, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, Delivery{Room: code, Notification: n})
}

func (r *RecordingNotifier) Subscribe(code model.RoomCode, participant model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups[code] == nil {
		r.groups[code] = make(map[model.PlayerID]bool)
	}
	r.groups[code][participant] = true
}

func (r *RecordingNotifier) Unsubscribe(code model.RoomCode, participant model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups[code], participant)
}

func (r *RecordingNotifier) CloseGroup(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, code)
	r.closed = append(r.closed, code)
}

// SentTo returns notifications sent directly to a participant, in order
func (r *RecordingNotifier) SentTo(to model.PlayerID) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, d := range r.sent {
		if d.To == to {
			out = append(out, d.Notification)
		}
	}
	return out
}

// BroadcastTo returns notifications broadcast to a room, in order
func (r *RecordingNotifier) BroadcastTo(code model.RoomCode) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, d := range r.broadcasts {
		if d.Room == code {
			out = append(out, d.Notification)
		}
	}
	return out
}

// LastBroadcast returns the most recent broadcast of the given type to a room
func (r *RecordingNotifier) LastBroadcast(code model.RoomCode, typ model.NotificationType) (model.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.broadcasts) - 1; i >= 0; i-- {
		d := r.broadcasts[i]
		if d.Room == code && d.Notification.Type == typ {
			return d.Notification, true
		}
	}
	return model.Notification{}, false
}

// CountBroadcasts returns how many broadcasts of a type reached a room
func (r *RecordingNotifier) CountBroadcasts(code model.RoomCode, typ model.NotificationType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.broadcasts {
		if d.Room == code && d.Notification.Type == typ {
			n++
		}
	}
	return n
}

// Members returns whether a participant is subscribed to a room group
func (r *RecordingNotifier) Members(code model.RoomCode, participant model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[code][participant]
}

// Closed returns the room groups that have been closed, in order
func (r *RecordingNotifier) Closed() []model.RoomCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RoomCode(nil), r.closed...)
}

// Reset clears all recorded deliveries
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.broadcasts = nil
	r.closed = nil
}
