package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ali545454/backend/routes"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the web frontend; credentials because the identity token
	// rides an HTTP-only cookie.
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		origin := ctx.GetHeader("Origin")
		if allowed := os.Getenv("CORS_ORIGIN"); allowed != "" {
			origin = allowed
		}
		ctx.Header("Access-Control-Allow-Origin", origin)
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT verifiers. The access verifier also reads the identity cookie
	// so browser sessions work without an Authorization header.
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, utils.AccessTokenFromCookie)
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Locally stored listing photos; Cloudinary URLs bypass this.
	app.HandleDir("/uploads", iris.Dir(storage.UploadDir()))

	auth := app.Party("/api/v1/auth")
	{
		auth.Post("/register", routes.Register)
		auth.Post("/login", routes.Login)
		auth.Post("/logout", routes.Logout)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		auth.Get("/check", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.CheckAuth)
		auth.Get("/profile", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.Profile)
		auth.Patch("/profile", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.UpdateProfile)
		auth.Patch("/password", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.UpdatePassword)
		auth.Get("/users/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.GetUser)
	}

	apartments := app.Party("/api/v1/apartments")
	{
		apartments.Get("/", routes.GetAllApartments)
		apartments.Get("/featured", routes.GetFeaturedApartments)
		apartments.Get("/verified", routes.GetVerifiedApartments)
		apartments.Get("/filter", routes.FilterApartments)
		apartments.Get("/search", routes.SearchApartments)
		apartments.Get("/my", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.GetMyApartments)
		apartments.Get("/owner", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.GetOwnerApartments)
		apartments.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.CreateApartment)
		apartments.Get("/{id:uint}", routes.GetApartmentByID)
		apartments.Get("/{uuid}", routes.GetApartmentDetails)
		apartments.Patch("/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.UpdateApartment)
		apartments.Delete("/{uuid}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.DeleteApartment)
		apartments.Post("/{uuid}/images", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.UploadApartmentImages)
		apartments.Get("/{uuid}/images", routes.GetApartmentImages)
		apartments.Get("/{uuid}/reviews", routes.GetApartmentReviews)
	}

	favorites := app.Party("/api/v1/favorites", accessTokenVerifierMiddleware, utils.RequireUserMiddleware)
	{
		favorites.Post("/add", routes.AddFavorite)
		favorites.Delete("/remove/{uuid}", routes.RemoveFavorite)
		favorites.Get("/list", routes.GetFavorites)
	}

	reviews := app.Party("/api/v1/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.CreateReview)
		reviews.Get("/my", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.GetMyReviews)
		reviews.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.UpdateReview)
		reviews.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.DeleteReview)
	}

	views := app.Party("/api/views")
	{
		views.Post("/track/{uuid}", routes.TrackApartmentView)
		views.Get("/owner/details", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, routes.GetOwnerViewDetails)
	}

	chat := app.Party("/api/v1/chat", accessTokenVerifierMiddleware, utils.RequireUserMiddleware)
	{
		chat.Get("/check/{ownerID:uint}", routes.CheckConversation)
		chat.Post("/start", routes.StartConversation)
		chat.Get("/conversations", routes.GetConversations)
		chat.Get("/{id:uint}/messages", routes.GetMessages)
		chat.Post("/{id:uint}/messages", routes.SendMessage)
		chat.Post("/{id:uint}/read", routes.MarkMessagesRead)
		chat.Post("/{id:uint}/typing", routes.SetTyping)
		chat.Get("/{id:uint}/typing", routes.GetTyping)
	}

	neighborhoods := app.Party("/api/v1/neighborhoods")
	{
		neighborhoods.Get("/", routes.GetNeighborhoods)
		neighborhoods.Post("/", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, utils.AdminRoleMiddleware, routes.CreateNeighborhood)
		neighborhoods.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireUserMiddleware, utils.AdminRoleMiddleware, routes.DeleteNeighborhood)
	}

	// Panel realm: its own secret and login, token in the Authorization
	// header only, never the cookie.
	adminParty := app.Party("/api/admin")
	{
		adminParty.Post("/login", routes.AdminLogin)

		panel := adminParty.Party("/", utils.AdminRealmMiddleware)
		panel.Get("/me", routes.GetAdminProfile)
		panel.Get("/admins", routes.GetAdmins)
		panel.Post("/admins", routes.CreateAdmin)
		panel.Delete("/admins/{id}", routes.DeleteAdmin)
		panel.Get("/users", routes.AdminGetUsers)
		panel.Delete("/users/{uuid}", routes.AdminDeleteUser)
		panel.Get("/apartments", routes.AdminGetApartments)
		panel.Patch("/apartments/{uuid}/verify", routes.AdminVerifyApartment)
		panel.Delete("/apartments/{uuid}", routes.AdminDeleteApartment)
		panel.Get("/reviews", routes.AdminGetReviews)
		panel.Delete("/reviews/{id:uint}", routes.AdminDeleteReview)
		panel.Get("/stats", routes.AdminGetStats)
		panel.Get("/activity", routes.AdminGetActivity)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
