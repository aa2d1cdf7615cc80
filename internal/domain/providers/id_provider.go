package providers

// IDProvider generates identifiers for newly created records. It is
// injected so creation stays deterministic under test.
type IDProvider interface {
	// NewID returns a fresh unique identifier
	NewID() string
}
