package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/servesync/backend/internal/api/handlers"
	"github.com/servesync/backend/internal/api/middleware"
	"github.com/servesync/backend/internal/domain/entities"
	apperrors "github.com/servesync/backend/pkg/errors"
)

// MockBookingService defines the mock service
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, customerID, serviceID, date, bookingTime, address string) (*entities.Booking, error) {
	args := m.Called(ctx, customerID, serviceID, date, bookingTime, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingService) TransitionBooking(ctx context.Context, bookingID string, caller entities.Identity, target entities.BookingStatus) (*entities.Booking, error) {
	args := m.Called(ctx, bookingID, caller, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, caller entities.Identity) ([]*entities.Booking, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

// serveAs routes a request through the identity middleware with the given
// caller headers, the way the router does in production.
func serveAs(handler http.HandlerFunc, req *http.Request, userID string, role entities.Role) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", string(role))
	}
	w := httptest.NewRecorder()
	middleware.IdentityMiddleware(handler).ServeHTTP(w, req)
	return w
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	t.Run("successfully creates booking", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		payload := map[string]interface{}{
			"service_id": "service-1",
			"date":       "2025-06-15",
			"time":       "10:00",
			"address":    "12 Elm St",
		}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))

		mockService.On("CreateBooking", mock.Anything, "user-1", "service-1", "2025-06-15", "10:00", "12 Elm St").
			Return(&entities.Booking{ID: "booking-1", Status: entities.BookingStatusPending, Amount: 89}, nil)

		w := serveAs(handler.CreateBooking, req, "user-1", entities.RoleUser)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got entities.Booking
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, entities.BookingStatusPending, got.Status)
		assert.Equal(t, 89.0, got.Amount)
		mockService.AssertExpectations(t)
	})

	t.Run("returns unauthorized without identity", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString("{}"))
		w := serveAs(handler.CreateBooking, req, "", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns bad request for invalid payload", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString("invalid-json"))
		w := serveAs(handler.CreateBooking, req, "user-1", entities.RoleUser)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps validation errors to bad request", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		body, _ := json.Marshal(map[string]interface{}{"service_id": "service-1"})
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))

		mockService.On("CreateBooking", mock.Anything, "user-1", "service-1", "", "", "").
			Return(nil, apperrors.NewValidationError("date", "date is required"))

		w := serveAs(handler.CreateBooking, req, "user-1", entities.RoleUser)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_TransitionBooking(t *testing.T) {
	provider := entities.Identity{UserID: "provider-1", Role: entities.RoleProvider}

	newRequest := func(status string) *http.Request {
		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest("PATCH", "/api/bookings/booking-1/status", bytes.NewBuffer(body))
		req.SetPathValue("id", "booking-1")
		return req
	}

	t.Run("successfully transitions booking", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		mockService.On("TransitionBooking", mock.Anything, "booking-1", provider, entities.BookingStatusConfirmed).
			Return(&entities.Booking{ID: "booking-1", Status: entities.BookingStatusConfirmed}, nil)

		w := serveAs(handler.TransitionBooking, newRequest("confirmed"), "provider-1", entities.RoleProvider)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("maps illegal transitions to conflict", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		mockService.On("TransitionBooking", mock.Anything, "booking-1", provider, entities.BookingStatusConfirmed).
			Return(nil, apperrors.NewIllegalTransitionError("booking-1", "rejected", "confirmed"))

		w := serveAs(handler.TransitionBooking, newRequest("confirmed"), "provider-1", entities.RoleProvider)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("maps authorization errors to forbidden", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		caller := entities.Identity{UserID: "user-2", Role: entities.RoleUser}
		mockService.On("TransitionBooking", mock.Anything, "booking-1", caller, entities.BookingStatusCompleted).
			Return(nil, apperrors.NewUnauthorizedRoleError("user", "caller does not own this booking"))

		w := serveAs(handler.TransitionBooking, newRequest("completed"), "user-2", entities.RoleUser)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("maps missing bookings to not found", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		mockService.On("TransitionBooking", mock.Anything, "booking-1", provider, entities.BookingStatusConfirmed).
			Return(nil, apperrors.NewNotFoundError("booking booking-1 not found"))

		w := serveAs(handler.TransitionBooking, newRequest("confirmed"), "provider-1", entities.RoleProvider)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingHandler_ListBookings(t *testing.T) {
	t.Run("lists caller bookings", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		caller := entities.Identity{UserID: "user-1", Role: entities.RoleUser}
		mockService.On("ListBookings", mock.Anything, caller).
			Return([]*entities.Booking{{ID: "booking-1"}, {ID: "booking-2"}}, nil)

		req := httptest.NewRequest("GET", "/api/bookings", nil)
		w := serveAs(handler.ListBookings, req, "user-1", entities.RoleUser)

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.JSONEq(t, `2`, string(got["count"]))
	})

	t.Run("maps storage failures to service unavailable", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := handlers.NewBookingHandler(mockService)

		caller := entities.Identity{UserID: "user-1", Role: entities.RoleUser}
		mockService.On("ListBookings", mock.Anything, caller).
			Return(nil, apperrors.NewStorageError("list bookings", errors.New("connection reset")))

		req := httptest.NewRequest("GET", "/api/bookings", nil)
		w := serveAs(handler.ListBookings, req, "user-1", entities.RoleUser)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
