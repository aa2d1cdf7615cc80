package services

import (
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/domain/repositories"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// ScopeService translates a caller identity into repository filters so
// that out-of-scope records never leave the store. Scoping runs before
// any aggregation or pagination; an unrecognized role is rejected here
// rather than defaulting to the widest scope.
type ScopeService struct{}

// NewScopeService creates a new scope service
func NewScopeService() *ScopeService {
	return &ScopeService{}
}

// BookingFilter returns the booking visibility filter for the caller.
// Admins see everything, providers the bookings placed against them,
// customers the bookings they made.
func (s *ScopeService) BookingFilter(identity entities.Identity) (repositories.BookingFilter, error) {
	switch identity.Role {
	case entities.RoleAdmin:
		return repositories.BookingFilter{}, nil
	case entities.RoleProvider:
		return repositories.BookingFilter{ProviderID: identity.UserID}, nil
	case entities.RoleUser:
		return repositories.BookingFilter{CustomerID: identity.UserID}, nil
	}
	return repositories.BookingFilter{}, apperrors.NewUnauthorizedRoleError(string(identity.Role), "unknown role")
}

// ServiceFilter returns the catalog visibility filter for the caller.
// The catalog is public to customers and admins; providers see only
// their own services.
func (s *ScopeService) ServiceFilter(identity entities.Identity) (repositories.ServiceFilter, error) {
	switch identity.Role {
	case entities.RoleAdmin, entities.RoleUser:
		return repositories.ServiceFilter{}, nil
	case entities.RoleProvider:
		return repositories.ServiceFilter{ProviderID: identity.UserID}, nil
	}
	return repositories.ServiceFilter{}, apperrors.NewUnauthorizedRoleError(string(identity.Role), "unknown role")
}
