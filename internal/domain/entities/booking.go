package entities

import (
	"time"

	apperrors "github.com/servesync/backend/pkg/errors"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRejected  BookingStatus = "rejected"
)

// bookingTransitions enumerates every legal status change.
// pending -> confirmed | rejected, confirmed -> completed | cancelled.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// Valid reports whether the status is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is legal from this status
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether moving from s to target is a legal
// state machine step
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Booking represents a reservation of a service by a customer. Amount is
// copied from the service price at creation time and never changes after,
// so later price edits do not rewrite history. ProviderID is denormalized
// from the service and must stay consistent with it. Bookings are never
// deleted; a terminal status ends their life but the record persists.
type Booking struct {
	ID          string        `json:"id" db:"id"`
	ServiceID   string        `json:"service_id" db:"service_id"`
	CustomerID  string        `json:"customer_id" db:"customer_id"`
	ProviderID  string        `json:"provider_id" db:"provider_id"`
	Date        string        `json:"date" db:"date"`
	Time        string        `json:"time" db:"time"`
	Status      BookingStatus `json:"status" db:"status"`
	Amount      float64       `json:"amount" db:"amount"`
	Address     string        `json:"address" db:"address"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether the caller owns the booking: customers own the
// bookings they made, providers own the bookings placed against them, and
// admins own everything.
func (b *Booking) IsOwnedBy(userID string, role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return b.CustomerID == userID
	case RoleProvider:
		return b.ProviderID == userID
	}
	return false
}

// IsActive reports whether the booking still needs attention from either side
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// Validate checks structural invariants on the booking
func (b *Booking) Validate() error {
	if b.ServiceID == "" {
		return apperrors.NewValidationError("service_id", "service is required")
	}
	if b.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer is required")
	}
	if b.ProviderID == "" {
		return apperrors.NewValidationError("provider_id", "provider is required")
	}
	if b.Date == "" {
		return apperrors.NewValidationError("date", "date is required")
	}
	if b.Time == "" {
		return apperrors.NewValidationError("time", "time is required")
	}
	if b.Address == "" {
		return apperrors.NewValidationError("address", "address is required")
	}
	if b.Amount <= 0 {
		return apperrors.NewValidationError("amount", "amount must be positive")
	}
	if !b.Status.Valid() {
		return apperrors.NewValidationError("status", "unknown booking status")
	}
	return nil
}
