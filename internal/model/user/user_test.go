package user_test

import (
	"encoding/json"
	"files-manager/internal/model/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModel(t *testing.T) {
	t.Run("User struct fields", func(t *testing.T) {
		user := user.User{
			ID:       1,
			Email:    "test@example.com",
			Password: "hashedpassword",
		}

		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "hashedpassword", user.Password)
	})

	t.Run("password hash is never serialized", func(t *testing.T) {
		raw, err := json.Marshal(user.User{ID: 7, Email: "bob@x.com", Password: "$2a$10$hash"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":7,"email":"bob@x.com"}`, string(raw))
	})
}
