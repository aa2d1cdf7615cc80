package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/servesync/backend/internal/adapters/memory"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	apperrors "github.com/servesync/backend/pkg/errors"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Users().Create(ctx, &entities.User{
		ID: "provider-1", Name: "Jane Smith", Email: "provider@servesync.com",
		Role: entities.RoleProvider, Rating: 4.8, CompletedJobs: 156,
	}))
	require.NoError(t, store.Users().Create(ctx, &entities.User{
		ID: "user-1", Name: "John Doe", Email: "user@servesync.com",
		Role: entities.RoleUser,
	}))
	require.NoError(t, store.Services().Create(ctx, &entities.Service{
		ID: "service-1", Name: "Home Cleaning", Price: 89, ProviderID: "provider-1",
	}))
	require.NoError(t, store.Bookings().Create(ctx, &entities.Booking{
		ID: "booking-1", ServiceID: "service-1", CustomerID: "user-1",
		ProviderID: "provider-1", Date: "2026-09-02", Time: "10:00 AM",
		Status: entities.BookingStatusConfirmed, Amount: 89, Address: "123 Main St",
	}))

	return store
}

func TestStore_RecordsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	booking, err := store.Bookings().GetByID(ctx, "booking-1")
	require.NoError(t, err)

	// Mutating the returned record must not leak into the store.
	booking.Amount = 1

	again, err := store.Bookings().GetByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, float64(89), again.Amount)
}

func TestStore_Transition(t *testing.T) {
	t.Run("applies a legal transition", func(t *testing.T) {
		ctx := context.Background()
		store := seedStore(t)

		updated, err := store.Bookings().Transition(ctx, "booking-1",
			entities.BookingStatusConfirmed, entities.BookingStatusCancelled, nil)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCancelled, updated.Status)
	})

	t.Run("rejects a stale from status", func(t *testing.T) {
		ctx := context.Background()
		store := seedStore(t)

		_, err := store.Bookings().Transition(ctx, "booking-1",
			entities.BookingStatusPending, entities.BookingStatusConfirmed, nil)
		assert.True(t, apperrors.IsConflict(err))

		booking, err := store.Bookings().GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
	})

	t.Run("completion effect commits with the status", func(t *testing.T) {
		ctx := context.Background()
		store := seedStore(t)

		updated, err := store.Bookings().Transition(ctx, "booking-1",
			entities.BookingStatusConfirmed, entities.BookingStatusCompleted,
			func(provider *entities.User) (int, float64, error) {
				return provider.CompletedJobs + 1, 4.9, nil
			})
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.WithinDuration(t, time.Now(), *updated.CompletedAt, time.Minute)

		provider, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.Equal(t, 157, provider.CompletedJobs)
		assert.Equal(t, 4.9, provider.Rating)
	})

	t.Run("failing effect rolls everything back", func(t *testing.T) {
		ctx := context.Background()
		store := seedStore(t)

		_, err := store.Bookings().Transition(ctx, "booking-1",
			entities.BookingStatusConfirmed, entities.BookingStatusCompleted,
			func(provider *entities.User) (int, float64, error) {
				return 0, 0, errors.New("reputation service down")
			})
		assert.Error(t, err)

		booking, err := store.Bookings().GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		assert.Nil(t, booking.CompletedAt)

		provider, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.Equal(t, 156, provider.CompletedJobs)
	})

	t.Run("concurrent attempts serialize to one winner", func(t *testing.T) {
		ctx := context.Background()
		store := seedStore(t)

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, target := range []entities.BookingStatus{
			entities.BookingStatusCompleted,
			entities.BookingStatusCancelled,
		} {
			wg.Add(1)
			go func(to entities.BookingStatus) {
				defer wg.Done()
				_, err := store.Bookings().Transition(ctx, "booking-1",
					entities.BookingStatusConfirmed, to, nil)
				results <- err
			}(target)
		}
		wg.Wait()
		close(results)

		var failures int
		for err := range results {
			if err != nil {
				assert.True(t, apperrors.IsConflict(err))
				failures++
			}
		}
		assert.Equal(t, 1, failures)

		booking, err := store.Bookings().GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.True(t, booking.Status.IsTerminal())
	})
}

func TestStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	require.NoError(t, store.Bookings().Create(ctx, &entities.Booking{
		ID: "booking-2", ServiceID: "service-1", CustomerID: "user-2",
		ProviderID: "provider-1", Date: "2026-09-03", Time: "2:00 PM",
		Status: entities.BookingStatusPending, Amount: 89, Address: "9 Oak Ave",
	}))

	byCustomer, err := store.Bookings().List(ctx, repositories.BookingFilter{CustomerID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)
	assert.Equal(t, "booking-1", byCustomer[0].ID)

	byProvider, err := store.Bookings().List(ctx, repositories.BookingFilter{ProviderID: "provider-1"})
	require.NoError(t, err)
	assert.Len(t, byProvider, 2)
}

func TestStore_ReviewAggregates(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	require.NoError(t, store.Reviews().Create(ctx, &entities.Review{
		ID: "review-1", BookingID: "booking-1", ServiceID: "service-1",
		CustomerID: "user-1", Rating: 4,
	}))
	require.NoError(t, store.Reviews().Create(ctx, &entities.Review{
		ID: "review-2", BookingID: "booking-x", ServiceID: "service-1",
		CustomerID: "user-2", Rating: 5,
	}))

	count, average, err := store.Reviews().AggregateByService(ctx, "service-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 4.5, average)

	providerAvg, providerCount, err := store.Reviews().AverageForProvider(ctx, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, 2, providerCount)
	assert.Equal(t, 4.5, providerAvg)

	t.Run("one review per booking", func(t *testing.T) {
		err := store.Reviews().Create(ctx, &entities.Review{
			ID: "review-3", BookingID: "booking-1", ServiceID: "service-1",
			CustomerID: "user-1", Rating: 1,
		})
		assert.True(t, apperrors.IsConflict(err))
	})
}
