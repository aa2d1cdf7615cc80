package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var serviceColumns = []interface{}{
	"id", "name", "description", "price", "duration", "category",
	"rating", "review_count", "provider_id", "created_at", "updated_at",
}

// Create creates a new service
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	record := goqu.Record{
		"id":           service.ID,
		"name":         service.Name,
		"description":  service.Description,
		"price":        service.Price,
		"duration":     service.Duration,
		"category":     service.Category,
		"rating":       service.Rating,
		"review_count": service.ReviewCount,
		"provider_id":  service.ProviderID,
		"created_at":   service.CreatedAt,
		"updated_at":   service.UpdatedAt,
	}

	query, args, err := a.db.Insert("services").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("create service", err)
	}

	return nil
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.db.Select(serviceColumns...).
		From("services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service, err := scanService(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get service", err)
	}

	return service, nil
}

// List retrieves services matching the filter
func (a *ServiceAdapter) List(ctx context.Context, filter repositories.ServiceFilter) ([]*entities.Service, error) {
	ds := a.db.Select(serviceColumns...).From("services")

	if filter.ProviderID != "" {
		ds = ds.Where(goqu.Ex{"provider_id": filter.ProviderID})
	}
	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": filter.Category})
	}

	ds = ds.Order(goqu.I("name").Asc())

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
		return nil, apperrors.NewStorageError("list services", err)
	}
	defer rows.Close()

	var services []*entities.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan service", err)
		}
		services = append(services, service)
	}

	return services, nil
}

// UpdateRating replaces the service's denormalized review aggregate
func (a *ServiceAdapter) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	query, args, err := a.db.Update("services").
		Set(goqu.Record{
			"rating":       rating,
			"review_count": reviewCount,
			"updated_at":   time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("update service rating", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("update service rating", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("service %s not found", id))
	}

	return nil
}

func scanService(row rowScanner) (*entities.Service, error) {
	service := &entities.Service{}
	var description, duration, category sql.NullString

	err := row.Scan(
		&service.ID,
		&service.Name,
		&description,
		&service.Price,
		&duration,
		&category,
		&service.Rating,
		&service.ReviewCount,
		&service.ProviderID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	service.Description = description.String
	service.Duration = duration.String
	service.Category = category.String

	return service, nil
}
