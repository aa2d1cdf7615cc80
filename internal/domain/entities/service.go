package entities

import (
	"time"

	apperrors "github.com/servesync/backend/pkg/errors"
)

// Service represents a bookable service offered by a provider. A service
// is owned by exactly one provider; a provider may own many services.
type Service struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Duration    string    `json:"duration" db:"duration"`
	Category    string    `json:"category" db:"category"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	ProviderID  string    `json:"provider_id" db:"provider_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BelongsToProvider reports whether the service is owned by the given provider
func (s *Service) BelongsToProvider(providerID string) bool {
	return s.ProviderID == providerID
}

// Validate checks structural invariants on the service
func (s *Service) Validate() error {
	if s.Name == "" {
		return apperrors.NewValidationError("name", "name is required")
	}
	if s.Price <= 0 {
		return apperrors.NewValidationError("price", "price must be positive")
	}
	if s.ProviderID == "" {
		return apperrors.NewValidationError("provider_id", "provider is required")
	}
	return nil
}
