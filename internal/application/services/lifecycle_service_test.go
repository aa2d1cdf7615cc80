package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servesync/backend/internal/adapters/memory"
	"github.com/servesync/backend/internal/adapters/providers/reputation"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/pkg/config"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// countingReputation records every recompute call so tests can assert the
// side effect ran exactly once per completion.
type countingReputation struct {
	calls  int
	rating float64
	err    error
}

func (r *countingReputation) RecomputeRating(ctx context.Context, providerID string, completedJobs int) (float64, error) {
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return r.rating, nil
}

func seedLifecycleFixtures(t *testing.T, store *memory.Store, status entities.BookingStatus) *entities.Booking {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &entities.User{
		ID: "user-1", Name: "Ada", Email: "ada@example.com", Role: entities.RoleUser,
	}))
	require.NoError(t, store.Users().Create(ctx, &entities.User{
		ID: "provider-1", Name: "CleanPro", Email: "pro@example.com",
		Role: entities.RoleProvider, Rating: 4.8, CompletedJobs: 156,
	}))

	booking := &entities.Booking{
		ID:         "booking-1",
		ServiceID:  "service-1",
		CustomerID: "user-1",
		ProviderID: "provider-1",
		Date:       "2025-06-15",
		Time:       "10:00",
		Status:     status,
		Amount:     89,
		Address:    "12 Elm St",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.Bookings().Create(ctx, booking))
	return booking
}

func TestLifecycleService_Transition(t *testing.T) {
	ctx := context.Background()
	provider := entities.Identity{UserID: "provider-1", Role: entities.RoleProvider}
	customer := entities.Identity{UserID: "user-1", Role: entities.RoleUser}
	admin := entities.Identity{UserID: "admin-1", Role: entities.RoleAdmin}

	t.Run("provider confirms pending booking", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusPending)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		updated, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, updated.Status)
	})

	t.Run("customer cancels confirmed booking", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		updated, err := lifecycle.Transition(ctx, "booking-1", customer, entities.BookingStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCancelled, updated.Status)
	})

	t.Run("customer cannot confirm own booking", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusPending)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", customer, entities.BookingStatusConfirmed)
		var roleErr *apperrors.UnauthorizedRoleError
		require.True(t, errors.As(err, &roleErr))
		assert.Equal(t, string(entities.RoleUser), roleErr.Role)
	})

	t.Run("non-owner cannot complete", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		stranger := entities.Identity{UserID: "provider-2", Role: entities.RoleProvider}
		_, err := lifecycle.Transition(ctx, "booking-1", stranger, entities.BookingStatusCompleted)
		var roleErr *apperrors.UnauthorizedRoleError
		require.True(t, errors.As(err, &roleErr))

		fresh, err := store.Bookings().GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, fresh.Status)
	})

	t.Run("non-owner probing a terminal booking learns nothing", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusRejected)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		// An outsider must get the same authorization error regardless
		// of the booking's status; a transition error would leak it.
		stranger := entities.Identity{UserID: "provider-2", Role: entities.RoleProvider}
		_, err := lifecycle.Transition(ctx, "booking-1", stranger, entities.BookingStatusConfirmed)
		var roleErr *apperrors.UnauthorizedRoleError
		require.True(t, errors.As(err, &roleErr))
		var transErr *apperrors.IllegalTransitionError
		assert.False(t, errors.As(err, &transErr))
	})

	t.Run("admin may transition any booking", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusPending)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		updated, err := lifecycle.Transition(ctx, "booking-1", admin, entities.BookingStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusRejected, updated.Status)
	})

	t.Run("terminal state stays terminal", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusRejected)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusConfirmed)
		var transErr *apperrors.IllegalTransitionError
		require.True(t, errors.As(err, &transErr))
		assert.Equal(t, string(entities.BookingStatusRejected), transErr.From)
		assert.Equal(t, string(entities.BookingStatusConfirmed), transErr.AttemptedTo)
	})

	t.Run("re-applying current status is an illegal transition", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusConfirmed)
		var transErr *apperrors.IllegalTransitionError
		require.True(t, errors.As(err, &transErr))
		assert.Equal(t, transErr.From, transErr.AttemptedTo)
	})

	t.Run("unknown target status rejected", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusPending)
		lifecycle := NewLifecycleService(store.Bookings(), &countingReputation{rating: 4.8}, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", provider, "archived")
		var valErr *apperrors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})
}

func TestLifecycleService_Completion(t *testing.T) {
	ctx := context.Background()
	provider := entities.Identity{UserID: "provider-1", Role: entities.RoleProvider}

	t.Run("completion updates reputation exactly once", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		rep := &countingReputation{rating: 4.9}
		lifecycle := NewLifecycleService(store.Bookings(), rep, nil)

		updated, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, 1, rep.calls)

		pro, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.Equal(t, 157, pro.CompletedJobs)
		assert.Equal(t, 4.9, pro.Rating)
	})

	t.Run("reputation failure rolls the transition back", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		rep := &countingReputation{err: errors.New("reputation backend down")}
		lifecycle := NewLifecycleService(store.Bookings(), rep, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusCompleted)
		require.Error(t, err)

		fresh, err := store.Bookings().GetByID(ctx, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, fresh.Status)

		pro, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.Equal(t, 156, pro.CompletedJobs)
	})

	t.Run("confirm and cancel leave reputation untouched", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusPending)
		rep := &countingReputation{rating: 4.9}
		lifecycle := NewLifecycleService(store.Bookings(), rep, nil)

		_, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusConfirmed)
		require.NoError(t, err)
		_, err = lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusCancelled)
		require.NoError(t, err)

		assert.Zero(t, rep.calls)
	})
}

// The review-backed provider reads reviews back through the same store the
// transition runs against, so completion must not block on the store's own
// locks. Each subtest runs the transition under a watchdog.
func TestLifecycleService_ReviewBackedReputation(t *testing.T) {
	ctx := context.Background()
	provider := entities.Identity{UserID: "provider-1", Role: entities.RoleProvider}
	cfg := config.ReputationConfig{Strategy: "reviews", DefaultRating: 5.0}

	complete := func(t *testing.T, lifecycle *LifecycleService) *entities.Booking {
		t.Helper()
		type result struct {
			booking *entities.Booking
			err     error
		}
		done := make(chan result, 1)
		go func() {
			booking, err := lifecycle.Transition(ctx, "booking-1", provider, entities.BookingStatusCompleted)
			done <- result{booking, err}
		}()
		select {
		case res := <-done:
			require.NoError(t, res.err)
			return res.booking
		case <-time.After(3 * time.Second):
			t.Fatal("transition never returned; completion effect blocked on the store")
			return nil
		}
	}

	t.Run("completion pulls the rating from reviews", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		require.NoError(t, store.Services().Create(ctx, &entities.Service{
			ID: "service-1", Name: "Deep Home Cleaning", Price: 89, ProviderID: "provider-1",
		}))
		require.NoError(t, store.Reviews().Create(ctx, &entities.Review{
			ID: "review-1", BookingID: "booking-0", ServiceID: "service-1",
			CustomerID: "user-1", Rating: 4, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))
		lifecycle := NewLifecycleService(store.Bookings(), reputation.NewReputationProvider(cfg, store.Reviews()), nil)

		updated := complete(t, lifecycle)
		assert.Equal(t, entities.BookingStatusCompleted, updated.Status)

		pro, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.Equal(t, 157, pro.CompletedJobs)
		assert.InDelta(t, 4.0, pro.Rating, 0.001)
	})

	t.Run("no reviews falls back to the default rating", func(t *testing.T) {
		store := memory.NewStore()
		seedLifecycleFixtures(t, store, entities.BookingStatusConfirmed)
		lifecycle := NewLifecycleService(store.Bookings(), reputation.NewReputationProvider(cfg, store.Reviews()), nil)

		updated := complete(t, lifecycle)
		assert.Equal(t, entities.BookingStatusCompleted, updated.Status)

		pro, err := store.Users().GetByID(ctx, "provider-1")
		require.NoError(t, err)
		assert.InDelta(t, 5.0, pro.Rating, 0.001)
	})
}
