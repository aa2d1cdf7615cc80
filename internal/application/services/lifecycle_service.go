package services

import (
	"context"
	"fmt"

	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/observability"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// LifecycleService enforces the booking status state machine. A transition
// and its reputation side effect commit atomically through the repository;
// concurrent attempts on the same booking serialize there, and the loser
// gets a fresh current-state check instead of overwriting stale status.
type LifecycleService struct {
	bookings   repositories.BookingRepository
	reputation providers.ReputationProvider
	events     providers.EventBus
	metrics    *observability.Metrics
}

// NewLifecycleService creates a new lifecycle service. The event bus is
// optional; without one, transitions simply are not broadcast.
func NewLifecycleService(
	bookings repositories.BookingRepository,
	reputation providers.ReputationProvider,
	events providers.EventBus,
) *LifecycleService {
	return &LifecycleService{
		bookings:   bookings,
		reputation: reputation,
		events:     events,
	}
}

// SetMetrics enables transition counters on the service
func (s *LifecycleService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Transition moves a booking to the target status on behalf of the
// caller. Re-attempting an already-applied transition fails with an
// IllegalTransitionError whose AttemptedTo equals the current status;
// callers may treat that case as "already there".
func (s *LifecycleService) Transition(ctx context.Context, bookingID string, caller entities.Identity, target entities.BookingStatus) (*entities.Booking, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown booking status")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Ownership before legality: a caller outside the booking's scope
	// must not learn its current status from the transition error.
	if caller.Role != entities.RoleAdmin && !booking.IsOwnedBy(caller.UserID, caller.Role) {
		return nil, apperrors.NewUnauthorizedRoleError(string(caller.Role), "caller does not own this booking")
	}

	if !booking.Status.CanTransitionTo(target) {
		return nil, apperrors.NewIllegalTransitionError(bookingID, string(booking.Status), string(target))
	}

	if err := s.authorize(caller, target); err != nil {
		return nil, err
	}

	updated, err := s.bookings.Transition(ctx, bookingID, booking.Status, target, s.completionEffect(ctx))
	if apperrors.IsConflict(err) {
		observability.RecordTransitionMetric(ctx, s.metrics, string(booking.Status), string(target), false)
		// Lost the race: re-read and report against the fresh status.
		fresh, readErr := s.bookings.GetByID(ctx, bookingID)
		if readErr != nil {
			return nil, readErr
		}
		return nil, apperrors.NewIllegalTransitionError(bookingID, string(fresh.Status), string(target))
	}
	if err != nil {
		return nil, err
	}

	observability.RecordTransitionMetric(ctx, s.metrics, string(booking.Status), string(target), true)
	s.publish(ctx, updated, booking.Status, target)
	return updated, nil
}

// authorize applies the per-transition permission matrix to an owner.
// Admins may do everything; customers may only cancel. Ownership itself
// is checked by the caller before the legality check.
func (s *LifecycleService) authorize(caller entities.Identity, target entities.BookingStatus) error {
	if caller.Role == entities.RoleAdmin {
		return nil
	}

	switch target {
	case entities.BookingStatusConfirmed, entities.BookingStatusRejected, entities.BookingStatusCompleted:
		if caller.Role != entities.RoleProvider {
			return apperrors.NewUnauthorizedRoleError(string(caller.Role), fmt.Sprintf("only the provider may mark a booking %s", target))
		}
	case entities.BookingStatusCancelled:
		// Either side of a confirmed booking may cancel it.
		if caller.Role != entities.RoleProvider && caller.Role != entities.RoleUser {
			return apperrors.NewUnauthorizedRoleError(string(caller.Role), "unknown role")
		}
	}

	return nil
}

// completionEffect returns the atomic side effect applied when a booking
// completes: the provider's job counter increments and the reputation
// collaborator recomputes their rating. It runs exactly once per
// completion, inside the repository's unit of work.
func (s *LifecycleService) completionEffect(ctx context.Context) repositories.CompletionEffect {
	return func(provider *entities.User) (int, float64, error) {
		jobs := provider.CompletedJobs + 1
		rating, err := s.reputation.RecomputeRating(ctx, provider.ID, jobs)
		if err != nil {
			return 0, 0, apperrors.NewExternalError("failed to recompute provider rating", err)
		}
		return jobs, rating, nil
	}
}

// publish broadcasts a committed transition. Delivery is best effort and
// never fails the transition itself.
func (s *LifecycleService) publish(ctx context.Context, booking *entities.Booking, from, to entities.BookingStatus) {
	if s.events == nil {
		return
	}

	event := entities.NewBookingEvent(booking, entities.BookingEventTypeStatusChanged, from, to)
	for _, channel := range []string{
		providers.EventChannelBookingUpdates,
		providers.GetProviderChannel(booking.ProviderID),
		providers.GetCustomerChannel(booking.CustomerID),
	} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("channel", channel).
				Str("booking_id", booking.ID).
				Msg("failed to publish booking event")
		}
	}
}
