package services

import (
	"testing"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFindUserByIDUsesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTestUser("cache")

	found, err := FindUserByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)

	// Direct DB writes are invisible while the cache entry lives.
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("username", "renamed")

	cached, err := FindUserByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, cached.Username)

	mr.FlushAll()

	fresh, err := FindUserByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "renamed", fresh.Username)
}

func TestUpdateUserOptimisticLock(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTestUser("lock")

	updated, err := UpdateUser(user.ID, map[string]interface{}{"role": "admin"})
	assert.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, user.Version+1, updated.Version)

	_, err = UpdateUser(99999, map[string]interface{}{"role": "user"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserInvalidatesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	user := createTestUser("invalidate")

	_, err := FindUserByID(user.ID)
	assert.NoError(t, err)

	_, err = UpdateUser(user.ID, map[string]interface{}{"username": "fresh_name"})
	assert.NoError(t, err)

	found, err := FindUserByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "fresh_name", found.Username)
}

func TestFindUsersPagination(t *testing.T) {
	setupTestDB()

	for i := 0; i < 5; i++ {
		createTestUser("page_" + string(rune('a'+i)))
	}

	users, total, err := FindUsers(1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, users, 2)

	users, _, err = FindUsers(3, 2)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}
