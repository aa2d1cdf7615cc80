package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/observability"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// ReviewService handles review submission and keeps the reviewed
// service's denormalized rating in step with the review set.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	bookings repositories.BookingRepository
	services repositories.ServiceRepository
	ids      providers.IDProvider
}

// NewReviewService creates a new review service
func NewReviewService(
	reviews repositories.ReviewRepository,
	bookings repositories.BookingRepository,
	services repositories.ServiceRepository,
	ids providers.IDProvider,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		services: services,
		ids:      ids,
	}
}

// SubmitReview records a review for a completed booking. Only the
// booking's customer may review it, only once, and only after the work
// is done. The reviewed service's aggregate rating is recomputed from
// the full review set afterwards.
func (s *ReviewService) SubmitReview(ctx context.Context, caller entities.Identity, bookingID string, rating int, comment string) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.SubmitReview")
	defer span.End()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	if booking.CustomerID != caller.UserID {
		return nil, apperrors.NewUnauthorizedRoleError(string(caller.Role), "only the booking customer can review it")
	}
	if booking.Status != entities.BookingStatusCompleted {
		return nil, apperrors.NewValidationError("booking_id", "only completed bookings can be reviewed")
	}

	if existing, err := s.reviews.GetByBooking(ctx, bookingID); err == nil && existing != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("booking %s already has a review", bookingID))
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	review := &entities.Review{
		ID:         s.ids.NewID(),
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		CustomerID: booking.CustomerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	if err := s.refreshServiceRating(ctx, booking.ServiceID); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("service_id", booking.ServiceID).
			Msg("failed to refresh service rating after review")
	}

	return review, nil
}

// ListServiceReviews returns reviews for a service, newest first
func (s *ReviewService) ListServiceReviews(ctx context.Context, serviceID string, limit, offset int) ([]*entities.Review, error) {
	reviews, err := s.reviews.ListByService(ctx, serviceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews for service %s: %w", serviceID, err)
	}
	return reviews, nil
}

func (s *ReviewService) refreshServiceRating(ctx context.Context, serviceID string) error {
	count, average, err := s.reviews.AggregateByService(ctx, serviceID)
	if err != nil {
		return err
	}
	rounded := math.Round(average*10) / 10
	return s.services.UpdateRating(ctx, serviceID, rounded, count)
}
