package utils

import (
	"net/http"
	"strings"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// AccessTokenFromCookie lets the JWT verifier read the identity cookie; the
// default header extractor stays as a fallback for non-browser clients.
func AccessTokenFromCookie(ctx iris.Context) string {
	return ctx.GetCookie(AccessTokenCookie)
}

// CurrentUser resolves the verified token of the request to its user row.
func CurrentUser(ctx iris.Context) (*models.User, bool) {
	tok := jwt.Get(ctx)
	if tok == nil {
		return nil, false
	}
	claims, ok := tok.(*AccessToken)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := storage.DB.Where("uuid = ?", claims.UUID).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// RequireUserMiddleware loads the authenticated user once and stores it for
// downstream handlers. 401 when the token's user no longer exists.
func RequireUserMiddleware(ctx iris.Context) {
	user, ok := CurrentUser(ctx)
	if !ok {
		ctx.StopWithJSON(http.StatusUnauthorized, iris.Map{"error": "unauthorized", "message": "login required"})
		return
	}
	ctx.Values().Set("user", user)
	ctx.Next()
}

// UserFromContext returns the user stored by RequireUserMiddleware.
func UserFromContext(ctx iris.Context) *models.User {
	if v := ctx.Values().Get("user"); v != nil {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// AdminRoleMiddleware gates user-realm routes that need the admin role
// (neighborhood management).
func AdminRoleMiddleware(ctx iris.Context) {
	user := UserFromContext(ctx)
	if user == nil || !user.IsAdmin() {
		ctx.StopWithJSON(http.StatusForbidden, iris.Map{"error": "forbidden", "message": "admin access required"})
		return
	}
	ctx.Next()
}

// AdminRealmMiddleware verifies the separate admin token scheme, carried only
// in the Authorization header, and loads the admin row.
func AdminRealmMiddleware(ctx iris.Context) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		ctx.StopWithJSON(http.StatusUnauthorized, iris.Map{"error": "unauthorized", "message": "token is missing"})
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	adminID, err := VerifyAdminToken(token)
	if err != nil {
		ctx.StopWithJSON(http.StatusUnauthorized, iris.Map{"error": "unauthorized", "message": "invalid token"})
		return
	}

	var admin models.Admin
	if err := storage.DB.First(&admin, "id = ?", adminID).Error; err != nil {
		ctx.StopWithJSON(http.StatusUnauthorized, iris.Map{"error": "unauthorized", "message": "invalid token"})
		return
	}

	ctx.Values().Set("admin", &admin)
	ctx.Next()
}

// AdminFromContext returns the admin stored by AdminRealmMiddleware.
func AdminFromContext(ctx iris.Context) *models.Admin {
	if v := ctx.Values().Get("admin"); v != nil {
		if admin, ok := v.(*models.Admin); ok {
			return admin
		}
	}
	return nil
}

// OptionalUser resolves a user when a valid token is present in the cookie or
// header, without rejecting the request otherwise.
func OptionalUser(ctx iris.Context) *models.User {
	token := AccessTokenFromCookie(ctx)
	if token == "" {
		header := ctx.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return nil
	}
	claims, err := ParseAccessToken(token)
	if err != nil {
		return nil
	}
	var user models.User
	if err := storage.DB.Where("uuid = ?", claims.UUID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

// ClientIP prefers the proxy header the deployment sets.
func ClientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i > 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	return ctx.RemoteAddr()
}
