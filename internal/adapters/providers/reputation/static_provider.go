package reputation

import (
	"context"

	"github.com/servesync/backend/internal/domain/providers"
)

// StaticProvider always returns the same rating. Intended for local
// development and tests where review data does not exist.
type StaticProvider struct {
	rating float64
}

// NewStaticProvider creates a static reputation provider
func NewStaticProvider(rating float64) providers.ReputationProvider {
	return &StaticProvider{rating: rating}
}

// RecomputeRating returns the configured rating regardless of input
func (p *StaticProvider) RecomputeRating(ctx context.Context, providerID string, completedJobs int) (float64, error) {
	return p.rating, nil
}
