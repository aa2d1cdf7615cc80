package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/observability"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// MarketplaceService is the single entry point for external collaborators.
// It composes validation, access scoping, the booking lifecycle and stats
// aggregation, in that order, and rejects any caller whose role is not one
// of the three known roles before delegating further. Inner errors are
// wrapped with operation context and surfaced verbatim, never discarded.
type MarketplaceService struct {
	users     repositories.UserRepository
	services  repositories.ServiceRepository
	bookings  repositories.BookingRepository
	scope     *ScopeService
	lifecycle *LifecycleService
	stats     *StatsService
	ids       providers.IDProvider
	events    providers.EventBus
}

// NewMarketplaceService creates a new marketplace service
func NewMarketplaceService(
	users repositories.UserRepository,
	services repositories.ServiceRepository,
	bookings repositories.BookingRepository,
	scope *ScopeService,
	lifecycle *LifecycleService,
	stats *StatsService,
	ids providers.IDProvider,
	events providers.EventBus,
) *MarketplaceService {
	return &MarketplaceService{
		users:     users,
		services:  services,
		bookings:  bookings,
		scope:     scope,
		lifecycle: lifecycle,
		stats:     stats,
		ids:       ids,
		events:    events,
	}
}

// CreateBooking books a service on behalf of a customer. The booking
// starts pending, its amount is captured from the service price at this
// moment and its provider is denormalized from the service, so later
// service edits never rewrite it.
func (s *MarketplaceService) CreateBooking(ctx context.Context, customerID, serviceID, date, bookingTime, address string) (*entities.Booking, error) {
	ctx, span := observability.StartSpan(ctx, "MarketplaceService.CreateBooking")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", serviceID))

	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if customer.Role != entities.RoleUser {
		return nil, apperrors.NewValidationError("customer_id", "bookings can only be created for customers")
	}

	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	now := time.Now()
	booking := &entities.Booking{
		ID:         s.ids.NewID(),
		ServiceID:  service.ID,
		CustomerID: customer.ID,
		ProviderID: service.ProviderID,
		Date:       date,
		Time:       bookingTime,
		Status:     entities.BookingStatusPending,
		Amount:     service.Price,
		Address:    address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := booking.Validate(); err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publishCreated(ctx, booking)
	return booking, nil
}

// TransitionBooking moves a booking to the target status on behalf of
// the caller
func (s *MarketplaceService) TransitionBooking(ctx context.Context, bookingID string, caller entities.Identity, target entities.BookingStatus) (*entities.Booking, error) {
	ctx, span := observability.StartSpan(ctx, "MarketplaceService.TransitionBooking")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.id", bookingID),
		attribute.String("caller.role", string(caller.Role)),
	)

	if err := s.checkIdentity(caller); err != nil {
		return nil, err
	}

	booking, err := s.lifecycle.Transition(ctx, bookingID, caller, target)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("transition booking %s for %s %s: %w", bookingID, caller.Role, caller.UserID, err)
	}

	return booking, nil
}

// ListServices returns the services visible to the caller. The catalog is
// public to customers; providers see their own listings only.
func (s *MarketplaceService) ListServices(ctx context.Context, caller entities.Identity) ([]*entities.Service, error) {
	ctx, span := observability.StartSpan(ctx, "MarketplaceService.ListServices")
	defer span.End()

	filter, err := s.scope.ServiceFilter(caller)
	if err != nil {
		return nil, err
	}

	services, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list services for %s %s: %w", caller.Role, caller.UserID, err)
	}

	return services, nil
}

// ListBookings returns the bookings visible to the caller
func (s *MarketplaceService) ListBookings(ctx context.Context, caller entities.Identity) ([]*entities.Booking, error) {
	ctx, span := observability.StartSpan(ctx, "MarketplaceService.ListBookings")
	defer span.End()

	filter, err := s.scope.BookingFilter(caller)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s %s: %w", caller.Role, caller.UserID, err)
	}

	return bookings, nil
}

// GetStats returns the caller's role-specific dashboard, computed on
// demand over their scoped booking set
func (s *MarketplaceService) GetStats(ctx context.Context, caller entities.Identity) (*entities.Stats, error) {
	ctx, span := observability.StartSpan(ctx, "MarketplaceService.GetStats")
	defer span.End()
	span.SetAttributes(attribute.String("caller.role", string(caller.Role)))

	filter, err := s.scope.BookingFilter(caller)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stats for %s %s: %w", caller.Role, caller.UserID, err)
	}

	switch caller.Role {
	case entities.RoleAdmin:
		totalUsers, err := s.users.CountByRole(ctx, entities.RoleUser)
		if err != nil {
			return nil, fmt.Errorf("get stats: %w", err)
		}
		totalProviders, err := s.users.CountByRole(ctx, entities.RoleProvider)
		if err != nil {
			return nil, fmt.Errorf("get stats: %w", err)
		}
		return &entities.Stats{
			Role:  entities.RoleAdmin,
			Admin: s.stats.ComputeAdminStats(totalUsers, totalProviders, bookings),
		}, nil

	case entities.RoleProvider:
		provider, err := s.users.GetByID(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("get stats: %w", err)
		}
		return &entities.Stats{
			Role:     entities.RoleProvider,
			Provider: s.stats.ComputeProviderStats(provider, bookings),
		}, nil

	case entities.RoleUser:
		return &entities.Stats{
			Role: entities.RoleUser,
			User: s.stats.ComputeUserStats(bookings),
		}, nil
	}

	return nil, apperrors.NewUnauthorizedRoleError(string(caller.Role), "unknown role")
}

func (s *MarketplaceService) checkIdentity(caller entities.Identity) error {
	if caller.UserID == "" {
		return apperrors.NewValidationError("user_id", "caller identity is required")
	}
	if !caller.Role.Valid() {
		return apperrors.NewUnauthorizedRoleError(string(caller.Role), "unknown role")
	}
	return nil
}

func (s *MarketplaceService) publishCreated(ctx context.Context, booking *entities.Booking) {
	if s.events == nil {
		return
	}

	event := entities.NewBookingEvent(booking, entities.BookingEventTypeCreated, "", booking.Status)
	if err := s.events.Publish(ctx, providers.GetProviderChannel(booking.ProviderID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("booking_id", booking.ID).
			Msg("failed to publish booking created event")
	}
}
