package identity

import "github.com/google/uuid"

// Provider hands out opaque participant identities
type Provider interface {
	NewID() string
}

// UUIDProvider implements Provider with random (v4) UUIDs
type UUIDProvider struct{}

// New creates a new UUIDProvider
func New() *UUIDProvider {
	return &UUIDProvider{}
}

// NewID returns a fresh UUID string
func (p *UUIDProvider) NewID() string {
	return uuid.New().String()
}
