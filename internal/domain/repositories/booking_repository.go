package repositories

import (
	"context"

	"github.com/servesync/backend/internal/domain/entities"
)

// BookingFilter defines filters for listing bookings. Access scoping is
// expressed through CustomerID/ProviderID so out-of-scope rows never leave
// the store.
type BookingFilter struct {
	CustomerID string
	ProviderID string
	Status     entities.BookingStatus
	Limit      int
	Offset     int
}

// CompletionEffect is invoked inside the same atomic unit as a transition
// into completed. It receives the owning provider's current state and
// returns the reputation values to persist. Returning an error aborts the
// whole transition, leaving the booking untouched.
type CompletionEffect func(provider *entities.User) (completedJobs int, rating float64, err error)

// BookingRepository defines the interface for booking data operations.
// Bookings are never deleted; terminal statuses end their lifecycle but
// the records persist for history and statistics.
type BookingRepository interface {
	// Create creates a new booking
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// List retrieves bookings matching the filter
	List(ctx context.Context, filter BookingFilter) ([]*entities.Booking, error)

	// Transition atomically moves a booking from one status to another.
	// The write is conditional on the stored status still being from; a
	// concurrent transition that won the race surfaces as a conflict
	// error. When to is completed, effect runs against the owning
	// provider within the same unit of work, and the status change and
	// the reputation update commit together or not at all.
	Transition(ctx context.Context, id string, from, to entities.BookingStatus, effect CompletionEffect) (*entities.Booking, error)
}
