package identity

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/servesync/backend/internal/domain/providers"
)

// UUIDProvider generates random UUIDs for new records
type UUIDProvider struct{}

// NewUUIDProvider creates a new UUID-based ID provider
func NewUUIDProvider() providers.IDProvider {
	return &UUIDProvider{}
}

// NewID returns a fresh UUID string
func (p *UUIDProvider) NewID() string {
	return uuid.New().String()
}

// SequenceProvider generates deterministic, monotonically increasing IDs.
// Intended for tests and local tooling.
type SequenceProvider struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequenceProvider creates a sequential ID provider with the given prefix
func NewSequenceProvider(prefix string) *SequenceProvider {
	return &SequenceProvider{prefix: prefix}
}

// NewID returns the next ID in the sequence
func (p *SequenceProvider) NewID() string {
	return fmt.Sprintf("%s-%d", p.prefix, p.counter.Add(1))
}
