package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp wires the full route tree against a fresh sqlite database,
// mirroring the production router so handler tests exercise the real
// middleware chain.
func setupTestApp(t *testing.T) *iris.Application {
	t.Helper()

	os.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	os.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
	os.Setenv("ADMIN_TOKEN_SECRET", "test-admin-secret")
	os.Setenv("UPLOAD_DIR", t.TempDir())
	os.Unsetenv("CLOUDINARY_CLOUD_NAME")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(db))
	storage.DB = db
	storage.Redis = nil

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, utils.AccessTokenFromCookie)
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	auth := app.Party("/api/v1/auth")
	{
		auth.Post("/register", Register)
		auth.Post("/login", Login)
		auth.Post("/logout", Logout)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		auth.Get("/check", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, CheckAuth)
		auth.Get("/profile", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, Profile)
		auth.Patch("/profile", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, UpdateProfile)
		auth.Patch("/password", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, UpdatePassword)
		auth.Get("/users/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, GetUser)
	}

	apartments := app.Party("/api/v1/apartments")
	{
		apartments.Get("/", GetAllApartments)
		apartments.Get("/featured", GetFeaturedApartments)
		apartments.Get("/verified", GetVerifiedApartments)
		apartments.Get("/filter", FilterApartments)
		apartments.Get("/search", SearchApartments)
		apartments.Get("/my", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, GetMyApartments)
		apartments.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, CreateApartment)
		apartments.Get("/{uuid}", GetApartmentDetails)
		apartments.Patch("/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, UpdateApartment)
		apartments.Delete("/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, DeleteApartment)
		apartments.Post("/{uuid}/images", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, UploadApartmentImages)
		apartments.Get("/{uuid}/images", GetApartmentImages)
		apartments.Get("/{uuid}/reviews", GetApartmentReviews)
	}

	favorites := app.Party("/api/v1/favorites", accessTokenVerifierMiddleware, utils.RequireUserMiddleware)
	{
		favorites.Post("/add", AddFavorite)
		favorites.Delete("/remove/{uuid}", RemoveFavorite)
		favorites.Get("/list", GetFavorites)
	}

	reviews := app.Party("/api/v1/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, CreateReview)
		reviews.Get("/my", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, GetMyReviews)
		reviews.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, UpdateReview)
		reviews.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, DeleteReview)
	}

	views := app.Party("/api/views")
	{
		views.Post("/track/{uuid}", TrackApartmentView)
		views.Get("/owner/details", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, GetOwnerViewDetails)
	}

	chat := app.Party("/api/v1/chat", accessTokenVerifierMiddleware, utils.RequireUserMiddleware)
	{
		chat.Get("/check/{ownerID:uint}", CheckConversation)
		chat.Post("/start", StartConversation)
		chat.Get("/conversations", GetConversations)
		chat.Get("/{id:uint}/messages", GetMessages)
		chat.Post("/{id:uint}/messages", SendMessage)
		chat.Post("/{id:uint}/read", MarkMessagesRead)
	}

	neighborhoods := app.Party("/api/v1/neighborhoods")
	{
		neighborhoods.Get("/", GetNeighborhoods)
		neighborhoods.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, utils.AdminRoleMiddleware, CreateNeighborhood)
		neighborhoods.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, utils.AdminRoleMiddleware, DeleteNeighborhood)
	}

	adminParty := app.Party("/api/admin")
	{
		adminParty.Post("/login", AdminLogin)

		panel := adminParty.Party("/", utils.AdminRealmMiddleware)
		panel.Get("/me", GetAdminProfile)
		panel.Get("/admins", GetAdmins)
		panel.Post("/admins", CreateAdmin)
		panel.Delete("/admins/{id}", DeleteAdmin)
		panel.Get("/users", AdminGetUsers)
		panel.Delete("/users/{uuid}", AdminDeleteUser)
		panel.Get("/apartments", AdminGetApartments)
		panel.Patch("/apartments/{uuid}/verify", AdminVerifyApartment)
		panel.Delete("/apartments/{uuid}", AdminDeleteApartment)
		panel.Get("/reviews", AdminGetReviews)
		panel.Delete("/reviews/{id:uint}", AdminDeleteReview)
		panel.Get("/stats", AdminGetStats)
		panel.Get("/activity", AdminGetActivity)
	}

	require.NoError(t, app.Build())
	return app
}

// createTestUser inserts a user directly and returns it with a signed
// access token.
func createTestUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		FullName: "Test " + role,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, storage.DB.Create(&user).Error)

	pair, err := utils.CreateTokenPair(&user)
	require.NoError(t, err)
	return &user, string(pair.AccessToken)
}

func createTestAdmin(t *testing.T, username string) (*models.Admin, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("adminpass123"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.Admin{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, storage.DB.Create(&admin).Error)

	token, err := utils.CreateAdminToken(admin.ID)
	require.NoError(t, err)
	return &admin, token
}

func createTestNeighborhood(t *testing.T, name string) *models.Neighborhood {
	t.Helper()
	neighborhood := models.Neighborhood{Name: name}
	require.NoError(t, storage.DB.Create(&neighborhood).Error)
	return &neighborhood
}

func createTestApartment(t *testing.T, ownerID, neighborhoodID uint, title string) *models.Apartment {
	t.Helper()
	apartment := models.Apartment{
		Title:          title,
		Address:        "12 Test Street",
		Price:          1500,
		Rooms:          3,
		Bathrooms:      1,
		Kitchens:       1,
		TotalBeds:      4,
		AvailableBeds:  2,
		ResidenceType:  "full apartment",
		OwnerID:        ownerID,
		NeighborhoodID: neighborhoodID,
	}
	require.NoError(t, storage.DB.Create(&apartment).Error)
	return &apartment
}

// doJSON performs a request with an optional JSON body and optional user
// access token carried in the identity cookie.
func doJSON(t *testing.T, app *iris.Application, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

// doAdmin performs a request with the admin token in the Authorization
// header, the only transport the panel realm accepts.
func doAdmin(t *testing.T, app *iris.Application, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}
