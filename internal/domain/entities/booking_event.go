package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// BookingEventType represents the type of booking event
type BookingEventType string

const (
	BookingEventTypeCreated       BookingEventType = "booking_created"
	BookingEventTypeStatusChanged BookingEventType = "booking_status_changed"
)

// BookingEvent is a real-time notification emitted after a booking is
// created or moves through its lifecycle. It is published after the
// transition commits; delivery is best effort.
type BookingEvent struct {
	ID         string           `json:"id"`
	BookingID  string           `json:"booking_id"`
	ProviderID string           `json:"provider_id"`
	CustomerID string           `json:"customer_id"`
	EventType  BookingEventType `json:"event_type"`
	From       BookingStatus    `json:"from,omitempty"`
	To         BookingStatus    `json:"to"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event
func NewBookingEvent(booking *Booking, eventType BookingEventType, from, to BookingStatus) *BookingEvent {
	return &BookingEvent{
		ID:         generateEventID(),
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		EventType:  eventType,
		From:       from,
		To:         to,
		Timestamp:  time.Now(),
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
