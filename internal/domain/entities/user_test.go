package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/servesync/backend/internal/domain/entities"
	apperrors "github.com/servesync/backend/pkg/errors"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, entities.RoleUser.Valid())
	assert.True(t, entities.RoleProvider.Valid())
	assert.True(t, entities.RoleAdmin.Valid())
	assert.False(t, entities.Role("superuser").Valid())
	assert.False(t, entities.Role("").Valid())
}

func TestUser_Validate(t *testing.T) {
	valid := func() *entities.User {
		return &entities.User{
			ID:    "user-1",
			Name:  "John Doe",
			Email: "user@servesync.com",
			Role:  entities.RoleUser,
			Phone: "+1234567890",
		}
	}

	t.Run("valid user passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		user := valid()
		user.Email = "not-an-email"

		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, user.Validate(), &vErr)
		assert.Equal(t, "email", vErr.Field)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		user := valid()
		user.Role = "manager"

		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, user.Validate(), &vErr)
		assert.Equal(t, "role", vErr.Field)
	})
}

func TestService_BelongsToProvider(t *testing.T) {
	service := &entities.Service{ID: "service-1", ProviderID: "provider-1"}

	assert.True(t, service.BelongsToProvider("provider-1"))
	assert.False(t, service.BelongsToProvider("provider-2"))
}

func TestService_Validate(t *testing.T) {
	t.Run("price must be positive", func(t *testing.T) {
		service := &entities.Service{
			Name:       "Home Cleaning",
			Price:      -1,
			ProviderID: "provider-1",
		}

		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, service.Validate(), &vErr)
		assert.Equal(t, "price", vErr.Field)
	})
}
