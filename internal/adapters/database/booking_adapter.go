package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var bookingColumns = []interface{}{
	"id", "service_id", "customer_id", "provider_id", "date", "time",
	"status", "amount", "address", "completed_at", "created_at", "updated_at",
}

// Create creates a new booking
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"id":          booking.ID,
		"service_id":  booking.ServiceID,
		"customer_id": booking.CustomerID,
		"provider_id": booking.ProviderID,
		"date":        booking.Date,
		"time":        booking.Time,
		"status":      booking.Status,
		"amount":      booking.Amount,
		"address":     booking.Address,
		"created_at":  booking.CreatedAt,
		"updated_at":  booking.UpdatedAt,
	}

	query, args, err := a.db.Insert("bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("create booking", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get booking", err)
	}

	return booking, nil
}

// List retrieves bookings matching the filter
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	ds := a.db.Select(bookingColumns...).From("bookings")

	if filter.CustomerID != "" {
		ds = ds.Where(goqu.Ex{"customer_id": filter.CustomerID})
	}
	if filter.ProviderID != "" {
		ds = ds.Where(goqu.Ex{"provider_id": filter.ProviderID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("list bookings", err)
	}
	defer rows.Close()

	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan booking", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// Transition atomically moves a booking between statuses. The booking row
// is locked for the duration of the transaction, so concurrent attempts
// serialize and the loser sees a conflict against the fresh status. The
// completion effect runs against the locked provider row; its failure
// rolls the whole transition back.
func (a *BookingAdapter) Transition(ctx context.Context, id string, from, to entities.BookingStatus, effect repositories.CompletionEffect) (*entities.Booking, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("begin transition", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build lock query", err)
	}

	booking, err := scanBooking(tx.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("lock booking", err)
	}

	if booking.Status != from {
		return nil, apperrors.NewConflictError(fmt.Sprintf("booking %s is %s, expected %s", id, booking.Status, from))
	}

	now := time.Now()
	record := goqu.Record{
		"status":     to,
		"updated_at": now,
	}
	if to == entities.BookingStatusCompleted {
		record["completed_at"] = now
	}

	query, args, err = a.db.Update("bookings").
		Set(record).
		Where(goqu.Ex{"id": id, "status": from}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewStorageError("update booking status", err)
	}

	if to == entities.BookingStatusCompleted && effect != nil {
		if err := a.applyCompletionEffect(ctx, tx, booking.ProviderID, effect); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStorageError("commit transition", err)
	}

	booking.Status = to
	booking.UpdatedAt = now
	if to == entities.BookingStatusCompleted {
		booking.CompletedAt = &now
	}

	return booking, nil
}

// applyCompletionEffect locks the provider row, asks the reputation
// collaborator for the new values and persists them inside the caller's
// transaction.
func (a *BookingAdapter) applyCompletionEffect(ctx context.Context, tx *sql.Tx, providerID string, effect repositories.CompletionEffect) error {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(goqu.Ex{"id": providerID}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build provider lock query", err)
	}

	provider := &entities.User{}
	var phone sql.NullString
	var rating sql.NullFloat64
	var completedJobs sql.NullInt64

	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.Name,
		&provider.Email,
		&provider.Role,
		&phone,
		&rating,
		&completedJobs,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider %s not found", providerID))
	}
	if err != nil {
		return apperrors.NewStorageError("lock provider", err)
	}

	provider.Phone = phone.String
	provider.Rating = rating.Float64
	provider.CompletedJobs = int(completedJobs.Int64)

	jobs, newRating, err := effect(provider)
	if err != nil {
		return err
	}

	query, args, err = a.db.Update("users").
		Set(goqu.Record{
			"completed_jobs": jobs,
			"rating":         newRating,
			"updated_at":     time.Now(),
		}).
		Where(goqu.Ex{"id": providerID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build provider update query", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("update provider reputation", err)
	}

	return nil
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var address sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ServiceID,
		&booking.CustomerID,
		&booking.ProviderID,
		&booking.Date,
		&booking.Time,
		&booking.Status,
		&booking.Amount,
		&address,
		&completedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Address = address.String
	if completedAt.Valid {
		booking.CompletedAt = &completedAt.Time
	}

	return booking, nil
}
