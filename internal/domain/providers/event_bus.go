package providers

import (
	"context"

	"github.com/servesync/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// booking events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for booking event routing
const (
	// EventChannelBookingUpdates is the channel for all booking updates
	EventChannelBookingUpdates = "booking:updates"

	// EventChannelProviderPrefix is the prefix for provider-specific channels
	EventChannelProviderPrefix = "provider:"

	// EventChannelCustomerPrefix is the prefix for customer-specific channels
	EventChannelCustomerPrefix = "customer:"
)

// GetProviderChannel returns the channel name for a specific provider
func GetProviderChannel(providerID string) string {
	return EventChannelProviderPrefix + providerID
}

// GetCustomerChannel returns the channel name for a specific customer
func GetCustomerChannel(customerID string) string {
	return EventChannelCustomerPrefix + customerID
}
