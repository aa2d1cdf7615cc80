package entities

import (
	"time"

	apperrors "github.com/servesync/backend/pkg/errors"
)

// Review represents a customer review of a service, written after the
// underlying booking completed
type Review struct {
	ID         string    `json:"id" db:"id"`
	BookingID  string    `json:"booking_id" db:"booking_id"`
	ServiceID  string    `json:"service_id" db:"service_id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	Rating     int       `json:"rating" db:"rating"` // 1-5
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks structural invariants on the review
func (r *Review) Validate() error {
	if r.BookingID == "" {
		return apperrors.NewValidationError("booking_id", "booking is required")
	}
	if r.ServiceID == "" {
		return apperrors.NewValidationError("service_id", "service is required")
	}
	if r.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.NewValidationError("rating", "rating must be between 1 and 5")
	}
	return nil
}
