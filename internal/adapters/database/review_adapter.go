package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var reviewColumns = []interface{}{
	"id", "booking_id", "service_id", "customer_id", "rating", "comment",
	"created_at", "updated_at",
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":          review.ID,
		"booking_id":  review.BookingID,
		"service_id":  review.ServiceID,
		"customer_id": review.CustomerID,
		"rating":      review.Rating,
		"comment":     review.Comment,
		"created_at":  review.CreatedAt,
		"updated_at":  review.UpdatedAt,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("create review", err)
	}

	return nil
}

// GetByBooking retrieves the review written for a booking, if any
func (a *ReviewAdapter) GetByBooking(ctx context.Context, bookingID string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"booking_id": bookingID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no review for booking %s", bookingID))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get review", err)
	}

	return review, nil
}

// ListByService retrieves reviews for a service
func (a *ReviewAdapter) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entities.Review, error) {
	ds := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"service_id": serviceID}).
		Order(goqu.I("created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("list reviews", err)
	}
	defer rows.Close()

	var reviews []*entities.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan review", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

// AggregateByService returns the review count and average rating for a service
func (a *ReviewAdapter) AggregateByService(ctx context.Context, serviceID string) (int, float64, error) {
	query, args, err := a.db.Select(
		goqu.COUNT("*"),
		goqu.COALESCE(goqu.AVG("rating"), 0),
	).
		From("reviews").
		Where(goqu.Ex{"service_id": serviceID}).
		ToSQL()
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to build aggregate query", err)
	}

	var count int
	var average float64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count, &average); err != nil {
		return 0, 0, apperrors.NewStorageError("aggregate reviews", err)
	}

	return count, average, nil
}

// AverageForProvider returns the average review rating across all of a
// provider's services
func (a *ReviewAdapter) AverageForProvider(ctx context.Context, providerID string) (float64, int, error) {
	query, args, err := a.db.Select(
		goqu.COALESCE(goqu.AVG(goqu.I("reviews.rating")), 0),
		goqu.COUNT(goqu.I("reviews.id")),
	).
		From("reviews").
		Join(goqu.T("services"), goqu.On(goqu.Ex{"reviews.service_id": goqu.I("services.id")})).
		Where(goqu.Ex{"services.provider_id": providerID}).
		ToSQL()
	if err != nil {
		return 0, 0, apperrors.NewInternalError("failed to build aggregate query", err)
	}

	var average float64
	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&average, &count); err != nil {
		return 0, 0, apperrors.NewStorageError("aggregate provider reviews", err)
	}

	return average, count, nil
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	var comment sql.NullString

	err := row.Scan(
		&review.ID,
		&review.BookingID,
		&review.ServiceID,
		&review.CustomerID,
		&review.Rating,
		&comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	review.Comment = comment.String
	return review, nil
}
