package reputation

import (
	"context"
	"fmt"

	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
)

// ReviewBackedProvider derives a provider's rating from the reviews left
// on their services. Providers without any reviews keep the default rating
// until the first one lands.
type ReviewBackedProvider struct {
	reviews       repositories.ReviewRepository
	defaultRating float64
}

// NewReviewBackedProvider creates a review-backed reputation provider
func NewReviewBackedProvider(reviews repositories.ReviewRepository, defaultRating float64) providers.ReputationProvider {
	return &ReviewBackedProvider{
		reviews:       reviews,
		defaultRating: defaultRating,
	}
}

// RecomputeRating returns the average review rating across the provider's
// services
func (p *ReviewBackedProvider) RecomputeRating(ctx context.Context, providerID string, completedJobs int) (float64, error) {
	average, count, err := p.reviews.AverageForProvider(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate provider reviews: %w", err)
	}

	if count == 0 {
		return p.defaultRating, nil
	}

	return average, nil
}
