package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/infrastructure/observability"
)

// SSEHandler handles Server-Sent Events for real-time booking updates
type SSEHandler struct {
	eventBus providers.EventBus
	clients  map[string]map[chan *entities.BookingEvent]bool // channel -> clients
	mu       sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		clients:  make(map[string]map[chan *entities.BookingEvent]bool),
	}
}

// StreamBookingUpdates handles SSE connections for booking updates.
// GET /api/bookings/stream
//
// The stream is scoped by the caller identity: providers receive events
// for bookings placed against them, customers for bookings they made,
// and admins the platform-wide update feed.
func (h *SSEHandler) StreamBookingUpdates(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	var channel string
	switch caller.Role {
	case entities.RoleProvider:
		channel = providers.GetProviderChannel(caller.UserID)
	case entities.RoleUser:
		channel = providers.GetCustomerChannel(caller.UserID)
	case entities.RoleAdmin:
		channel = providers.EventChannelBookingUpdates
	default:
		respondWithError(w, http.StatusForbidden, "unknown role")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.BookingEvent, 10)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		observability.GetLogger().Error().
			Err(err).
			Str("channel", channel).
			Msg("failed to subscribe to booking events")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to updates")
		return
	}

	// Send initial connection event
	h.sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			// Heartbeat keeps intermediaries from dropping idle connections.
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) registerClient(channel string, client chan *entities.BookingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.BookingEvent]bool)
	}
	h.clients[channel][client] = true
}

func (h *SSEHandler) unregisterClient(channel string, client chan *entities.BookingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[channel], client)
	if len(h.clients[channel]) == 0 {
		delete(h.clients, channel)
	}
}

func (h *SSEHandler) forwardEvents(ctx context.Context, from <-chan *entities.BookingEvent, to chan *entities.BookingEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-from:
			if !ok {
				return
			}
			select {
			case to <- event:
			default:
				// Client buffer full; drop rather than block the bus.
			}
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
}
