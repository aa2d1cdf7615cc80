package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// Store is an in-memory implementation of the user, service, booking and
// review repositories. It backs local development and tests; all methods
// copy records on the way in and out so callers never share memory with
// the store. Booking transitions serialize on their own mutex, which
// gives the same lost-update protection the SQL adapter gets from row
// locks while leaving the data lock free for the completion effect to
// read back through the store.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	users    map[string]*entities.User
	services map[string]*entities.Service
	bookings map[string]*entities.Booking
	reviews  map[string]*entities.Review
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entities.User),
		services: make(map[string]*entities.Service),
		bookings: make(map[string]*entities.Booking),
		reviews:  make(map[string]*entities.Review),
	}
}

// Users returns the store as a UserRepository
func (s *Store) Users() repositories.UserRepository { return (*userStore)(s) }

// Services returns the store as a ServiceRepository
func (s *Store) Services() repositories.ServiceRepository { return (*serviceStore)(s) }

// Bookings returns the store as a BookingRepository
func (s *Store) Bookings() repositories.BookingRepository { return (*bookingStore)(s) }

// Reviews returns the store as a ReviewRepository
func (s *Store) Reviews() repositories.ReviewRepository { return (*reviewStore)(s) }

type userStore Store

func (s *userStore) Create(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("user %s already exists", user.ID))
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperrors.NewConflictError(fmt.Sprintf("email %s already in use", user.Email))
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", id))
	}

	clone := *user
	return &clone, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", email))
}

func (s *userStore) CountByRole(ctx context.Context, role entities.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type serviceStore Store

func (s *serviceStore) Create(ctx context.Context, service *entities.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[service.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("service %s already exists", service.ID))
	}

	clone := *service
	s.services[service.ID] = &clone
	return nil
}

func (s *serviceStore) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service %s not found", id))
	}

	clone := *service
	return &clone, nil
}

func (s *serviceStore) List(ctx context.Context, filter repositories.ServiceFilter) ([]*entities.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var services []*entities.Service
	for _, service := range s.services {
		if filter.ProviderID != "" && service.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Category != "" && service.Category != filter.Category {
			continue
		}
		clone := *service
		services = append(services, &clone)
	}

	return paginate(services, filter.Limit, filter.Offset), nil
}

func (s *serviceStore) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	service, ok := s.services[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("service %s not found", id))
	}

	service.Rating = rating
	service.ReviewCount = reviewCount
	service.UpdatedAt = time.Now()
	return nil
}

type bookingStore Store

func (s *bookingStore) Create(ctx context.Context, booking *entities.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[booking.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("booking %s already exists", booking.ID))
	}

	clone := *booking
	s.bookings[booking.ID] = &clone
	return nil
}

func (s *bookingStore) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}

	clone := *booking
	return &clone, nil
}

func (s *bookingStore) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []*entities.Booking
	for _, booking := range s.bookings {
		if filter.CustomerID != "" && booking.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ProviderID != "" && booking.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Status != "" && booking.Status != filter.Status {
			continue
		}
		clone := *booking
		bookings = append(bookings, &clone)
	}

	return paginate(bookings, filter.Limit, filter.Offset), nil
}

func (s *bookingStore) Transition(ctx context.Context, id string, from, to entities.BookingStatus, effect repositories.CompletionEffect) (*entities.Booking, error) {
	// txMu serializes transitions end to end, like the SQL adapter's row
	// locks. The data lock is only held for the snapshot and the commit,
	// so an effect that reads back through the store (the review-backed
	// reputation provider does) never deadlocks. Bookings and provider
	// aggregates only change inside Transition, so the snapshot stays
	// valid until the commit.
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	booking, ok := s.bookings[id]
	if !ok {
		s.mu.RUnlock()
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	if booking.Status != from {
		status := booking.Status
		s.mu.RUnlock()
		return nil, apperrors.NewConflictError(fmt.Sprintf("booking %s is %s, expected %s", id, status, from))
	}

	var snapshot *entities.User
	if to == entities.BookingStatusCompleted && effect != nil {
		stored, ok := s.users[booking.ProviderID]
		if !ok {
			s.mu.RUnlock()
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider %s not found", booking.ProviderID))
		}
		clone := *stored
		snapshot = &clone
	}
	s.mu.RUnlock()

	// Run the completion effect before touching any state so a failing
	// reputation collaborator leaves the booking untouched.
	var jobs int
	var rating float64
	if snapshot != nil {
		var err error
		jobs, rating, err = effect(snapshot)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	booking.Status = to
	booking.UpdatedAt = now
	if to == entities.BookingStatusCompleted {
		booking.CompletedAt = &now
	}

	if snapshot != nil {
		provider := s.users[booking.ProviderID]
		provider.CompletedJobs = jobs
		provider.Rating = rating
		provider.UpdatedAt = now
	}

	clone := *booking
	return &clone, nil
}

type reviewStore Store

func (s *reviewStore) Create(ctx context.Context, review *entities.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.BookingID == review.BookingID {
			return apperrors.NewConflictError(fmt.Sprintf("booking %s already reviewed", review.BookingID))
		}
	}

	clone := *review
	s.reviews[review.ID] = &clone
	return nil
}

func (s *reviewStore) GetByBooking(ctx context.Context, bookingID string) (*entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, review := range s.reviews {
		if review.BookingID == bookingID {
			clone := *review
			return &clone, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no review for booking %s", bookingID))
}

func (s *reviewStore) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []*entities.Review
	for _, review := range s.reviews {
		if review.ServiceID == serviceID {
			clone := *review
			reviews = append(reviews, &clone)
		}
	}
	return paginate(reviews, limit, offset), nil
}

func (s *reviewStore) AggregateByService(ctx context.Context, serviceID string) (int, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	sum := 0
	for _, review := range s.reviews {
		if review.ServiceID == serviceID {
			count++
			sum += review.Rating
		}
	}

	if count == 0 {
		return 0, 0, nil
	}
	return count, float64(sum) / float64(count), nil
}

func (s *reviewStore) AverageForProvider(ctx context.Context, providerID string) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	sum := 0
	for _, review := range s.reviews {
		service, ok := s.services[review.ServiceID]
		if !ok || service.ProviderID != providerID {
			continue
		}
		count++
		sum += review.Rating
	}

	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
