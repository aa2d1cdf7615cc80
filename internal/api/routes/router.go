package routes

import (
	"net/http"

	"github.com/servesync/backend/internal/api/handlers"
	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	bookingHandler *handlers.BookingHandler
	serviceHandler *handlers.ServiceHandler
	statsHandler   *handlers.StatsHandler
	reviewHandler  *handlers.ReviewHandler
	sseHandler     *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	bookingHandler *handlers.BookingHandler,
	serviceHandler *handlers.ServiceHandler,
	statsHandler *handlers.StatsHandler,
	reviewHandler *handlers.ReviewHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		bookingHandler: bookingHandler,
		serviceHandler: serviceHandler,
		statsHandler:   statsHandler,
		reviewHandler:  reviewHandler,
		sseHandler:     sseHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Service catalog endpoints
	r.mux.HandleFunc("GET /api/services", r.serviceHandler.ListServices)
	r.mux.HandleFunc("GET /api/services/{id}/reviews", r.reviewHandler.ListServiceReviews)

	// Booking endpoints
	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("GET /api/bookings", r.bookingHandler.ListBookings)
	r.mux.HandleFunc("PATCH /api/bookings/{id}/status", r.bookingHandler.TransitionBooking)

	// Dashboard endpoints
	r.mux.HandleFunc("GET /api/stats", r.statsHandler.GetStats)

	// Review endpoints
	r.mux.HandleFunc("POST /api/reviews", r.reviewHandler.SubmitReview)

	// Real-time booking updates
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/bookings/stream", r.sseHandler.StreamBookingUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.IdentityMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on errors
	handler = middleware.CORSMiddleware(handler)

	return handler
}
