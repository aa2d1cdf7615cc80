package handlers

import (
	"context"
	"net/http"

	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
)

// DashboardService defines the interface for dashboard statistics
type DashboardService interface {
	GetStats(ctx context.Context, caller entities.Identity) (*entities.Stats, error)
}

// StatsHandler handles dashboard statistics requests
type StatsHandler struct {
	service DashboardService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service DashboardService) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	stats, err := h.service.GetStats(r.Context(), caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
