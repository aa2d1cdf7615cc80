package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
)

// ReviewSubmitter defines the interface for review operations
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, caller entities.Identity, bookingID string, rating int, comment string) (*entities.Review, error)
	ListServiceReviews(ctx context.Context, serviceID string, limit, offset int) ([]*entities.Review, error)
}

// ReviewHandler handles review requests
type ReviewHandler struct {
	service ReviewSubmitter
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewSubmitter) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

type submitReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// SubmitReview handles POST /api/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	review, err := h.service.SubmitReview(r.Context(), caller, req.BookingID, req.Rating, req.Comment)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

// ListServiceReviews handles GET /api/services/{id}/reviews
func (h *ReviewHandler) ListServiceReviews(w http.ResponseWriter, r *http.Request) {
	serviceID := r.PathValue("id")
	if serviceID == "" {
		respondWithError(w, http.StatusBadRequest, "service ID is required")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	reviews, err := h.service.ListServiceReviews(r.Context(), serviceID, limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
