package repositories

import (
	"context"

	"github.com/servesync/backend/internal/domain/entities"
)

// ServiceFilter defines filters for listing services. A zero filter
// lists the whole catalog.
type ServiceFilter struct {
	ProviderID string
	Category   string
	Limit      int
	Offset     int
}

// ServiceRepository defines the interface for service catalog operations
type ServiceRepository interface {
	// Create creates a new service
	Create(ctx context.Context, service *entities.Service) error

	// GetByID retrieves a service by ID
	GetByID(ctx context.Context, id string) (*entities.Service, error)

	// List retrieves services matching the filter
	List(ctx context.Context, filter ServiceFilter) ([]*entities.Service, error)

	// UpdateRating replaces the service's denormalized review aggregate
	UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error
}
