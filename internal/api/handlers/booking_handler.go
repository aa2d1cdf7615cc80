package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
)

// BookingService defines the interface for booking operations
type BookingService interface {
	CreateBooking(ctx context.Context, customerID, serviceID, date, bookingTime, address string) (*entities.Booking, error)
	TransitionBooking(ctx context.Context, bookingID string, caller entities.Identity, target entities.BookingStatus) (*entities.Booking, error)
	ListBookings(ctx context.Context, caller entities.Identity) ([]*entities.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

type createBookingRequest struct {
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Address   string `json:"address"`
}

type transitionBookingRequest struct {
	Status string `json:"status"`
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), caller.UserID, req.ServiceID, req.Date, req.Time, req.Address)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

// TransitionBooking handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("id")
	if bookingID == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	var req transitionBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.TransitionBooking(r.Context(), bookingID, caller, entities.BookingStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /api/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
