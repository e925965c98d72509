package routes

import (
	"net/http"
	"testing"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	_, token := createTestUser(t, "student@example.com", "student")
	neighborhood := createTestNeighborhood(t, "Downtown")
	apartment := createTestApartment(t, owner.ID, neighborhood.ID, "Nice flat")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/favorites/add", map[string]interface{}{
		"apartment_id": apartment.UUID,
	}, token)
	assert.Equal(t, http.StatusCreated, resp.Code)

	// Same apartment again is a conflict, not a second row.
	resp2 := doJSON(t, app, http.MethodPost, "/api/v1/favorites/add", map[string]interface{}{
		"apartment_id": apartment.UUID,
	}, token)
	assert.Equal(t, http.StatusConflict, resp2.Code)
	assert.Equal(t, "Apartment is already in favorites", decodeBody(t, resp2)["message"])

	var count int64
	storage.DB.Model(&models.Favorite{}).Where("apartment_id = ?", apartment.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddFavoriteUnknownApartment(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t, "student@example.com", "student")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/favorites/add", map[string]interface{}{
		"apartment_id": "no-such-uuid",
	}, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRemoveFavorite(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	student, token := createTestUser(t, "student@example.com", "student")
	neighborhood := createTestNeighborhood(t, "Downtown")
	apartment := createTestApartment(t, owner.ID, neighborhood.ID, "Nice flat")

	require.NoError(t, storage.DB.Create(&models.Favorite{UserID: student.ID, ApartmentID: apartment.ID}).Error)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/favorites/remove/"+apartment.UUID, nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Removing again reports not found.
	resp2 := doJSON(t, app, http.MethodDelete, "/api/v1/favorites/remove/"+apartment.UUID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp2.Code)
}

func TestGetFavoritesListsOwnOnly(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	student, token := createTestUser(t, "student@example.com", "student")
	other, _ := createTestUser(t, "other@example.com", "student")
	neighborhood := createTestNeighborhood(t, "Downtown")
	mine := createTestApartment(t, owner.ID, neighborhood.ID, "Mine")
	theirs := createTestApartment(t, owner.ID, neighborhood.ID, "Theirs")

	require.NoError(t, storage.DB.Create(&models.Favorite{UserID: student.ID, ApartmentID: mine.ID}).Error)
	require.NoError(t, storage.DB.Create(&models.Favorite{UserID: other.ID, ApartmentID: theirs.ID}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/favorites/list", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	apartments, ok := body["apartments"].([]interface{})
	require.True(t, ok)
	require.Len(t, apartments, 1)
	entry := apartments[0].(map[string]interface{})
	assert.Equal(t, "Mine", entry["title"])
}

func TestFavoritesRequireAuth(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/favorites/list", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
