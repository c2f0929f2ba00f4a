package realtime

import (
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/model"
)

// Buffer size for outgoing frames
const sendBufferSize = 256

// Frame is one encoded notification ready to write
type Frame struct {
	Event string
	Data  []byte
}

// Client is one connected receiver: a participant's websocket or a
// spectator's event stream
type Client struct {
	id          model.PlayerID
	spectator   bool
	send        chan Frame
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewClient creates a participant client
func NewClient(id model.PlayerID) *Client {
	return newClient(id, false)
}

func newClient(id model.PlayerID, spectator bool) *Client {
	return &Client{
		id:          id,
		spectator:   spectator,
		send:        make(chan Frame, sendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the identity the client receives notifications for
func (c *Client) ID() model.PlayerID {
	return c.id
}

// Frames returns the channel of frames to write to the connection
func (c *Client) Frames() <-chan Frame {
	return c.send
}

// Done is closed once the client is shut down
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts the client down; safe to call more than once
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// deliver queues a frame without blocking. Returns false if the client is
// closed or its buffer is full.
func (c *Client) deliver(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}
