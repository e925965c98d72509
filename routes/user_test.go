package routes

import (
	"net/http"
	"testing"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIssuesSessionCookie(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"fullName": "Sara Ahmed",
		"email":    "sara@example.com",
		"password": "password123",
		"userType": "student",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	cookieSet := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "access_token_cookie" && cookie.Value != "" {
			cookieSet = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, cookieSet, "expected identity cookie on register")

	var user models.User
	require.NoError(t, storage.DB.Where("email = ?", "sara@example.com").First(&user).Error)
	assert.NotEmpty(t, user.UUID)
	assert.NotEqual(t, "password123", user.Password)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	app := setupTestApp(t)
	createTestUser(t, "taken@example.com", "student")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"fullName": "Another",
		"email":    "taken@example.com",
		"password": "password123",
		"userType": "student",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestLoginWrongPasswordIsGeneric401(t *testing.T) {
	app := setupTestApp(t)
	createTestUser(t, "login@example.com", "student")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "login@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	// Unknown email answers the same way as a bad password.
	resp2 := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, resp.Body.String(), resp2.Body.String())
}

func TestLoginSuccess(t *testing.T) {
	app := setupTestApp(t)
	createTestUser(t, "ok@example.com", "owner")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "ok@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
}

func TestProfileRequiresAuth(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProfileReturnsCurrentUser(t *testing.T) {
	app := setupTestApp(t)
	user, token := createTestUser(t, "me@example.com", "student")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	assert.Equal(t, user.UUID, body["uuid"])
	assert.Equal(t, "me@example.com", body["email"])
	_, leaked := body["password"]
	assert.False(t, leaked)
}

func TestGetUserSelfOnly(t *testing.T) {
	app := setupTestApp(t)
	me, token := createTestUser(t, "a@example.com", "student")
	other, _ := createTestUser(t, "b@example.com", "student")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/users/"+other.UUID, nil, token)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp2 := doJSON(t, app, http.MethodGet, "/api/v1/auth/users/"+me.UUID, nil, token)
	require.Equal(t, http.StatusOK, resp2.Code)
	body := decodeBody(t, resp2)
	assert.Equal(t, me.UUID, body["uuid"])
	assert.Equal(t, me.FullName, body["fullName"])
}

func TestRefreshTokenRotatesPair(t *testing.T) {
	app := setupTestApp(t)
	user, _ := createTestUser(t, "refresh@example.com", "student")

	pair, err := utils.CreateTokenPair(user)
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
		"refreshToken": string(pair.RefreshToken),
	}, "")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	access, _ := body["accessToken"].(string)
	require.NotEmpty(t, access)
	assert.NotEmpty(t, body["refreshToken"])

	claims, err := utils.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.UUID, claims.UUID)

	var sessionSet bool
	for _, c := range resp.Result().Cookies() {
		if c.Name == utils.AccessTokenCookie && c.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
		"refreshToken": "not-a-token",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdatePasswordChecksOldPassword(t *testing.T) {
	app := setupTestApp(t)
	_, token := createTestUser(t, "pw@example.com", "student")

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/auth/password", map[string]interface{}{
		"oldPassword": "not-the-password",
		"newPassword": "brand-new-pass",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp2 := doJSON(t, app, http.MethodPatch, "/api/v1/auth/password", map[string]interface{}{
		"oldPassword": "password123",
		"newPassword": "brand-new-pass",
	}, token)
	assert.Equal(t, http.StatusOK, resp2.Code)
}
