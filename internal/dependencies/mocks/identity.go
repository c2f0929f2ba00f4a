package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/cutgame/internal/dependencies/identity"
)

// MockIdentity hands out predictable participant IDs
type MockIdentity struct {
	mu     sync.Mutex
	queued []string
	next   int
}

var _ identity.Provider = (*MockIdentity)(nil)

// NewMockIdentity creates a new MockIdentity
func NewMockIdentity() *MockIdentity {
	return &MockIdentity{}
}

// NewID returns the next queued ID, or participant-1, participant-2, ...
func (m *MockIdentity) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queued) > 0 {
		id := m.queued[0]
		m.queued = m.queued[1:]
		return id
	}
	m.next++
	return fmt.Sprintf("participant-%d", m.next)
}

// QueueID adds IDs to be returned before the generated sequence
func (m *MockIdentity) QueueID(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, ids...)
}
