package reputation

import (
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/pkg/config"
)

// NewReputationProvider selects a reputation strategy from configuration.
// Unknown strategies fall back to the static provider so a bad env var
// never breaks booking completion.
func NewReputationProvider(cfg config.ReputationConfig, reviews repositories.ReviewRepository) providers.ReputationProvider {
	switch cfg.Strategy {
	case "reviews":
		if reviews != nil {
			return NewReviewBackedProvider(reviews, cfg.DefaultRating)
		}
		return NewStaticProvider(cfg.DefaultRating)
	default:
		return NewStaticProvider(cfg.DefaultRating)
	}
}
