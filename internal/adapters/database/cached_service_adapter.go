package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/observability"
)

// CachedServiceAdapter wraps a ServiceRepository with caching. The catalog
// is public and read-heavy, so single services and list pages are cached;
// rating updates invalidate the affected entry.
type CachedServiceAdapter struct {
	adapter repositories.ServiceRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedServiceAdapter creates a new cached service adapter
func NewCachedServiceAdapter(adapter repositories.ServiceRepository, cache providers.CacheProvider) *CachedServiceAdapter {
	return &CachedServiceAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// SetMetrics enables cache hit/miss counters on the adapter
func (a *CachedServiceAdapter) SetMetrics(metrics *observability.Metrics) {
	a.metrics = metrics
}

// Cache TTLs (in seconds)
const (
	serviceByIDTTL  = 300 // 5 minutes for single services
	servicesListTTL = 180 // 3 minutes for catalog pages
)

func serviceCacheKey(id string) string {
	return fmt.Sprintf("service:%s", id)
}

func servicesListCacheKey(filter repositories.ServiceFilter) string {
	return fmt.Sprintf("services:list:%s:%s:%d:%d", filter.ProviderID, filter.Category, filter.Limit, filter.Offset)
}

// Create creates a new service, bypassing the cache
func (a *CachedServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	return a.adapter.Create(ctx, service)
}

// GetByID retrieves a service by ID with caching
func (a *CachedServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	cacheKey := serviceCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var service entities.Service
		if err := json.Unmarshal(cached, &service); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, cacheKey)
			return &service, nil
		}
		// If unmarshal fails, fall through to the database
		log.Warn().Str("service_id", id).Msg("failed to unmarshal cached service")
	}
	observability.RecordCacheMiss(ctx, a.metrics, cacheKey)

	service, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Fill the cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(service); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, serviceByIDTTL); err != nil {
				log.Warn().Err(err).Str("service_id", id).Msg("failed to cache service")
			}
		}
	}()

	return service, nil
}

// List retrieves services matching the filter with caching
func (a *CachedServiceAdapter) List(ctx context.Context, filter repositories.ServiceFilter) ([]*entities.Service, error) {
	cacheKey := servicesListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var services []*entities.Service
		if err := json.Unmarshal(cached, &services); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, cacheKey)
			return services, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, cacheKey)

	services, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(services); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, servicesListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache service list")
			}
		}
	}()

	return services, nil
}

// UpdateRating updates the review aggregate and invalidates the cached entry
func (a *CachedServiceAdapter) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	if err := a.adapter.UpdateRating(ctx, id, rating, reviewCount); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, serviceCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("service_id", id).Msg("failed to invalidate cached service")
	}

	return nil
}
