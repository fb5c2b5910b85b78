package services

import (
	"os"
	"testing"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUserFirstAccountIsAdmin(t *testing.T) {
	setupTestDB()

	first, err := RegisterUser("first", "first@example.com", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "admin", first.Role)
	assert.Equal(t, models.UserStatusActive, first.Status)

	second, err := RegisterUser("second", "second@example.com", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "user", second.Role)

	// Passwords are stored hashed.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Password), []byte("secret123")))
}

func TestRegisterUserDuplicate(t *testing.T) {
	setupTestDB()

	_, err := RegisterUser("taken", "taken@example.com", "secret123")
	assert.NoError(t, err)

	_, err = RegisterUser("taken", "other@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = RegisterUser("other", "taken@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginUser(t *testing.T) {
	setupTestDB()
	os.Setenv("JWT_SECRET", "test_secret")

	_, err := RegisterUser("login", "login@example.com", "secret123")
	assert.NoError(t, err)

	token, user, err := LoginUser("login", "secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "login", user.Username)

	_, _, err = LoginUser("login", "wrongpass")
	assert.Error(t, err)

	_, _, err = LoginUser("ghost", "secret123")
	assert.Error(t, err)
}

func TestLoginUserInactiveAccount(t *testing.T) {
	setupTestDB()
	os.Setenv("JWT_SECRET", "test_secret")

	u, err := RegisterUser("frozen", "frozen@example.com", "secret123")
	assert.NoError(t, err)
	database.DB.Model(u).Update("status", models.UserStatusSuspended)

	_, _, err = LoginUser("frozen", "secret123")
	assert.Error(t, err)
}
