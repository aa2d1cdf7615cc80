package services

import (
	"time"

	"github.com/servesync/backend/internal/domain/entities"
)

// StatsService computes role-specific dashboard statistics. It is a pure
// read-side projection over already-scoped booking sets: it never mutates
// its inputs and holds no cached counters of its own. The only derived
// state it reads back is the provider rating the lifecycle engine owns.
type StatsService struct {
	now func() time.Time
}

// NewStatsService creates a new stats service using the wall clock
func NewStatsService() *StatsService {
	return &StatsService{now: time.Now}
}

// NewStatsServiceWithClock creates a stats service with an injected clock,
// for deterministic completed-today counts under test
func NewStatsServiceWithClock(now func() time.Time) *StatsService {
	return &StatsService{now: now}
}

// ComputeAdminStats computes the platform-wide dashboard over the full
// booking set
func (s *StatsService) ComputeAdminStats(totalUsers, totalProviders int, bookings []*entities.Booking) *entities.AdminStats {
	stats := &entities.AdminStats{
		TotalUsers:     totalUsers,
		TotalProviders: totalProviders,
		TotalBookings:  len(bookings),
	}

	today := s.now().Format("2006-01-02")
	for _, booking := range bookings {
		switch {
		case booking.Status == entities.BookingStatusCompleted:
			stats.Revenue += booking.Amount
			if booking.CompletedAt != nil && booking.CompletedAt.Format("2006-01-02") == today {
				stats.CompletedToday++
			}
		case booking.IsActive():
			stats.ActiveBookings++
		}
	}

	return stats
}

// ComputeProviderStats computes a provider's dashboard over their scoped
// booking set
func (s *StatsService) ComputeProviderStats(provider *entities.User, bookings []*entities.Booking) *entities.ProviderStats {
	stats := &entities.ProviderStats{
		TotalBookings: len(bookings),
		Rating:        provider.Rating,
	}

	for _, booking := range bookings {
		switch booking.Status {
		case entities.BookingStatusCompleted:
			stats.Earnings += booking.Amount
		case entities.BookingStatusPending:
			stats.ActiveRequests++
		}
	}

	return stats
}

// ComputeUserStats computes a customer's dashboard over their scoped
// booking set
func (s *StatsService) ComputeUserStats(bookings []*entities.Booking) *entities.UserStats {
	stats := &entities.UserStats{}

	for _, booking := range bookings {
		switch {
		case booking.Status == entities.BookingStatusCompleted:
			stats.CompletedBookings++
			stats.TotalSpent += booking.Amount
		case booking.IsActive():
			stats.ActiveBookings++
		}
	}

	return stats
}
