package repositories

import (
	"context"

	"github.com/servesync/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *entities.Review) error

	// GetByBooking retrieves the review written for a booking, if any
	GetByBooking(ctx context.Context, bookingID string) (*entities.Review, error)

	// ListByService retrieves reviews for a service
	ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entities.Review, error)

	// AggregateByService returns the review count and average rating for a service
	AggregateByService(ctx context.Context, serviceID string) (count int, average float64, err error)

	// AverageForProvider returns the average review rating across all of a
	// provider's services and the number of reviews behind it
	AverageForProvider(ctx context.Context, providerID string) (average float64, count int, err error)
}
