package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// CatalogService defines the interface for service catalog operations
type CatalogService interface {
	ListServices(ctx context.Context, caller entities.Identity) ([]*entities.Service, error)
}

// ServiceHandler handles service catalog requests
type ServiceHandler struct {
	service CatalogService
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(service CatalogService) *ServiceHandler {
	return &ServiceHandler{
		service: service,
	}
}

// ListServices handles GET /api/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if caller.UserID == "" {
		respondWithError(w, http.StatusUnauthorized, "caller identity is required")
		return
	}

	services, err := h.service.ListServices(r.Context(), caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithServiceError maps domain errors onto HTTP status codes.
// Wrapped errors are unwrapped, so service layers may add operation
// context without losing the mapping.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		respondWithError(w, http.StatusBadRequest, valErr.Error())
		return
	}

	var transErr *apperrors.IllegalTransitionError
	if errors.As(err, &transErr) {
		respondWithError(w, http.StatusConflict, transErr.Error())
		return
	}

	var roleErr *apperrors.UnauthorizedRoleError
	if errors.As(err, &roleErr) {
		respondWithError(w, http.StatusForbidden, roleErr.Error())
		return
	}

	// Storage failures are retryable per the error contract, so signal
	// callers to back off and retry rather than treat it as a dead end.
	var storageErr *apperrors.StorageError
	if errors.As(err, &storageErr) {
		if storageErr.Retryable() {
			respondWithError(w, http.StatusServiceUnavailable, storageErr.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, storageErr.Error())
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusForbidden, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}

	respondWithError(w, http.StatusInternalServerError, err.Error())
}
